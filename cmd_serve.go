package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/api"
	"github.com/Pridoh/Project-UKK-sub000/internal/api/handler"
	"github.com/Pridoh/Project-UKK-sub000/internal/cache"
	"github.com/Pridoh/Project-UKK-sub000/internal/clock"
	"github.com/Pridoh/Project-UKK-sub000/internal/config"
	"github.com/Pridoh/Project-UKK-sub000/internal/gate"
	"github.com/Pridoh/Project-UKK-sub000/internal/history"
	"github.com/Pridoh/Project-UKK-sub000/internal/jobs"
	"github.com/Pridoh/Project-UKK-sub000/internal/logging"
	"github.com/Pridoh/Project-UKK-sub000/internal/repository/postgresql"
	"github.com/Pridoh/Project-UKK-sub000/internal/service"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iotdataplane"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gate consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logCloser := logging.Setup(cfg.LogFile)
	defer logCloser.Close()
	log.Println("Configuration loaded.")

	db, err := postgresql.NewDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Println("Connected to database.")

	store := postgresql.NewStore(db)
	clk := clock.New(cfg.Timezone)
	ledger := service.NewCapacityLedger(store)

	wsManager := handler.NewWebSocketManager()
	go wsManager.Start(ctx)
	log.Println("WebSocket manager started.")

	publishers := service.Publishers{wsManager}
	var board handler.CapacityBoard = ledger

	var scheduler *jobs.Scheduler
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		capCache := cache.NewCapacityCache(rdb, ledger, cfg.CapacityCacheTTL)
		publishers = append(publishers, capCache)
		board = capCache

		if scheduler, err = jobs.NewScheduler(); err != nil {
			return err
		}
		if err := scheduler.ScheduleCapacityReconcile(ctx, capCache, cfg.CapacityRefreshInterval); err != nil {
			return err
		}
		scheduler.Start()
		log.Printf("Capacity cache enabled, reconciling every %s.", cfg.CapacityRefreshInterval)
	} else {
		log.Println("REDIS_URL not set, capacity board is read from the database.")
	}

	var (
		lprService *service.LPRService
		sqsClient  *sqs.Client
	)
	if cfg.AWSEnabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return err
		}
		log.Println("Loaded AWS SDK config for region:", cfg.AWSRegion)

		sqsClient = sqs.NewFromConfig(awsCfg)
		iotClient := iotdataplane.NewFromConfig(awsCfg, func(o *iotdataplane.Options) {
			if cfg.IoTMQTTEndpoint != "" {
				endpoint := cfg.IoTMQTTEndpoint
				if !strings.HasPrefix(endpoint, "https://") && !strings.HasPrefix(endpoint, "http://") {
					endpoint = "https://" + endpoint
				}
				o.BaseEndpoint = aws.String(endpoint)
			}
		})
		lprService = service.NewLPRService(rekognition.NewFromConfig(awsCfg))
		publishers = append(publishers, gate.NewBarrierCommander(iotClient))
	}

	trxService := service.NewTransactionService(store, clk, publishers)

	gdb, err := history.OpenPostgres(db)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	if sqsClient != nil && cfg.SQSGateQueueURL != "" {
		consumer := gate.NewSQSConsumer(sqsClient, cfg.SQSGateQueueURL, gate.NewProcessor(trxService))
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Println("Gate consumer listening on queue:", cfg.SQSGateQueueURL)
			consumer.Start(ctx)
			log.Println("Gate consumer stopped.")
		}()
	} else {
		log.Println("WARNING: gate queue not configured, gate reads are not consumed.")
	}

	router := api.SetupRouter(api.Dependencies{
		Auth:           service.NewAuthService(store.Repos().Users, cfg.JWTSecret, cfg.JWTExpirationHours),
		Transactions:   trxService,
		MasterData:     service.NewMasterDataService(store),
		Tariffs:        service.NewTariffService(store),
		Discounts:      service.NewDiscountService(store, clk),
		Capacity:       ledger,
		LPR:            lprService,
		History:        history.NewService(gdb, clk, board),
		Board:          board,
		WebSockets:     wsManager,
		Location:       cfg.Timezone,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")
	stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			log.Printf("Scheduler shutdown: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("Gate consumer did not stop in time.")
	}

	log.Println("Server stopped.")
	return nil
}
