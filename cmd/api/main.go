package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/logger"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/metrics"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	//.envがあれば読む（本番は環境変数のみ）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.GoEnv, cfg.LogLevel)
	ctx := log.WithContext(context.Background())

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect db")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartItemGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(reg)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(txm, cartRepo)
	orderUC := usecase.NewOrderUsecase(txm, cartRepo, productRepo, m)

	if cfg.SeedProducts {
		n, err := productUC.SeedSampleProducts(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("seed products")
		}
		if n > 0 {
			log.Info().Int("count", n).Msg("sample products seeded")
		}
	}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	clock := auth.SystemClock{}

	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, issuer, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	logoutUC := auth.NewLogoutUsecase(userRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:    handler.NewAuthHandler(registerUC, loginUC, logoutUC),
		Product: handler.NewProductHandler(productUC, cfg.CurrencySymbol),
		Cart:    handler.NewCartHandler(cartUC, cfg.CurrencySymbol),
		Order:   handler.NewOrderHandler(orderUC, cfg.CurrencySymbol),
	}

	e := server.New(cfg, log, userRepo, m, handlers)

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(sigCtx, e, cfg.Addr(), log); err != nil {
		log.Error().Err(err).Msg("server error")
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
