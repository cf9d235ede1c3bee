package main

import (
	"log"
	"time"

	"go.uber.org/zap"

	"escrowd/config"
	"escrowd/internal/api"
	"escrowd/internal/db"
	"escrowd/internal/escrow"
	"escrowd/internal/ledger"
	"escrowd/internal/mq"
	"escrowd/internal/mqhandler"
	"escrowd/internal/redis"
	"escrowd/internal/repository"
	"escrowd/internal/service"
	"escrowd/internal/util"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	logger := util.NewLogger()
	defer logger.Sync()

	// 2. Init Postgres (identity + event journal)
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 3. Init Redis (asset ledger + event dedup)
	rdb, err := redis.NewClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	// 4. Init RabbitMQ producer (event sink)
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		log.Fatalf("failed to init producer: %v", err)
	}
	defer producer.Close()

	// 5. Init repositories
	userRepo := repository.NewUserRepository(dbConn)
	journalRepo := repository.NewJournalRepository(dbConn, logger)

	// 6. Init the escrow engine and its collaborators
	registry := escrow.NewRegistry()
	assetLedger := ledger.NewRedisLedger(rdb)
	sink := mq.NewEventSink(producer)
	clock := escrow.NewSystemClock()
	engine := escrow.NewEngine(registry, assetLedger, sink, clock, logger)

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)

	// 7. Init the journal consumer for escrow.* events
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "escrow.journal.q", "escrow.*")
	if err != nil {
		log.Fatalf("failed to init consumer: %v", err)
	}
	defer consumer.Close()

	deduper := util.NewDeduper(rdb, 24*time.Hour, logger)
	journalHandler := mqhandler.NewEscrowEventHandler(journalRepo, deduper, logger)
	consumer.SetHandler(journalHandler.Handle)

	go func() {
		if err := consumer.StartConsuming(); err != nil {
			logger.Fatal("consumer start failed", zap.Error(err))
		}
	}()

	// 8. Init handlers and router
	authHandler := api.NewAuthHandler(authService)
	escrowHandler := api.NewEscrowHandler(engine, assetLedger, journalRepo, logger)
	router := api.NewRouter(authHandler, escrowHandler, cfg.JWT.Secret, logger, dbConn, consumer)

	// 9. Run server
	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
