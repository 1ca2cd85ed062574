package main

import (
	"log"
	"os"
	"time"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/external"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/usecase/token"
	"app/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envはローカル開発用。無くてもenvから読めれば動く
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal(err)
	}
	if err := db.Seed(gormDB); err != nil {
		log.Fatal(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	roleRepo := infraRepo.NewRoleGormRepository(gormDB)
	credRepo := infraRepo.NewRefreshCredentialGormRepository(gormDB)
	menuRepo := infraRepo.NewMenuGormRepository(gormDB)
	accessRepo := infraRepo.NewRoleAccessGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()
	authValidator := validator.NewAuthValidator(userRepo)
	googleVerifier := external.NewGoogleVerifier(os.Getenv("GOOGLE_CLIENT_ID"))

	minter := token.NewMinter([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(
		userRepo, roleRepo, credRepo, txm,
		minter, hasher, verifier, googleVerifier, authValidator,
		idGen, clock, cfg.RefreshTokenTTL,
	)
	menuUC := usecase.NewMenuUsecase(roleRepo, menuRepo, accessRepo)
	adminUC := usecase.NewMenuAdminUsecase(roleRepo, menuRepo, accessRepo, idGen, clock)

	//Handler生成
	handlers := server.Handlers{
		Auth:      handler.NewAuthHandler(authUC, cfg.CookieSecure),
		Menu:      handler.NewMenuHandler(menuUC),
		AdminMenu: handler.NewAdminMenuHandler(adminUC),
		AdminUser: handler.NewAdminUserHandler(authUC),
	}

	//Server起動
	e := server.New(minter, handlers)
	if err := server.Start(e, ":"+cfg.Port); err != nil {
		log.Fatal(err)
	}
}
