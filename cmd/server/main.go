package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/malexstudio/site_api/internal/config"
	"github.com/malexstudio/site_api/internal/es"
	"github.com/malexstudio/site_api/internal/events"
	"github.com/malexstudio/site_api/internal/guard"
	"github.com/malexstudio/site_api/internal/handlers"
	"github.com/malexstudio/site_api/internal/ledger"
	"github.com/malexstudio/site_api/internal/logging"
	"github.com/malexstudio/site_api/internal/service"
	"github.com/malexstudio/site_api/internal/token"
	httpserver "github.com/malexstudio/site_api/internal/transport/http"
	"github.com/malexstudio/site_api/internal/upload"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL, configuration.LOG_FORMAT)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	producer := events.NewProducer(configuration.KAFKA_ADDRESS)

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch init: %v", err)
	}

	codec := token.NewCodec([]byte(configuration.API_SECRET))
	tokenLedger := ledger.New(db)
	authService := service.NewAuthService(
		codec,
		tokenLedger,
		db,
		time.Duration(configuration.ACCESS_TOKEN_EXPIRATION_DELAY)*time.Hour,
		time.Duration(configuration.REFRESH_TOKEN_EXPIRATION_DELAY)*time.Hour,
		configuration.BACKEND_IP,
	)

	assets := upload.NewClient(
		configuration.ASSET_API_URL,
		configuration.ASSET_ACCOUNT_ID,
		configuration.ASSET_API_TOKEN,
	)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), httpserver.RequestLogger(logger))

	deps := httpserver.Deps{
		Guard: guard.New(codec),
		Auth: &handlers.AuthResolver{
			Service:  authService,
			Producer: producer,
		},
		Appointment: &handlers.AppointmentResolver{
			DB:       db,
			Producer: producer,
			Limit:    configuration.OBJECTS_PER_REQUEST_LIMIT,
		},
		Work: &handlers.WorkResolver{
			DB:       db,
			ES:       esClient,
			Producer: producer,
			Limit:    configuration.OBJECTS_PER_REQUEST_LIMIT,
		},
		SiteConfig: &handlers.SiteConfigResolver{DB: db},
		Upload:     &handlers.UploadResolver{Assets: assets},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()
	log.Printf("server started at :%s", configuration.PORT)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
