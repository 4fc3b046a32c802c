package main

import (
	"toko/internal/config"
	"toko/internal/domain/model"
	"toko/internal/handler"
	"toko/internal/infra/db"
	"toko/internal/infra/payment"
	infraRepo "toko/internal/infra/repository"
	"toko/internal/server"
	"toko/internal/usecase"
	"toko/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//logger
	var logger *zap.Logger
	if cfg.GoEnv == "dev" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.PaymentNotification{},
		&model.OrderEvent{},
	); err != nil {
		logger.Fatal("auto migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	notificationRepo := infraRepo.NewPaymentNotificationGormRepository(gormDB)

	//決済ゲートウェイ
	gateway := payment.NewMidtransGateway(cfg, logger.With(zap.String("component", "midtrans")))

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(txManager, gateway, validator.NewOrderValidator(),
		logger.With(zap.String("component", "order")))
	paymentUC := usecase.NewPaymentUsecase(txManager, notificationRepo, gateway,
		logger.With(zap.String("component", "payment")))
	adminUC := usecase.NewAdminOrderUsecase(txManager, notificationRepo,
		logger.With(zap.String("component", "admin_order")))
	authUC := usecase.NewAuthUsecase(userRepo, validator.NewAuthValidator(userRepo), cfg,
		logger.With(zap.String("component", "auth")))

	//Handler生成
	authH := handler.NewAuthHandler(authUC)
	orderH := handler.NewOrderHandler(orderUC, paymentUC, adminUC)

	//Server起動
	logger.Info("starting http server", zap.String("port", cfg.Port))
	if err := server.Start(cfg, authH, orderH); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
