package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nimasrn/verse-gateway/internal/bible"
	"github.com/nimasrn/verse-gateway/internal/config"
	"github.com/nimasrn/verse-gateway/internal/handlers"
	"github.com/nimasrn/verse-gateway/internal/repository"
	"github.com/nimasrn/verse-gateway/internal/services"
	xhttp "github.com/nimasrn/verse-gateway/pkg/http"
	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/nimasrn/verse-gateway/pkg/pg"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 15))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	verseClient, err := bible.NewClient(&bible.ClientConfig{
		BaseURL:    config.Get().BibleApiBaseUrl,
		Timeout:    config.Get().BibleApiTimeout,
		MaxRetries: config.Get().BibleApiMaxRetries,
	})
	if err != nil {
		logger.Error("failed to create verse client", "error", err)
		return
	}
	resolver := bible.NewResolver(verseClient, config.Get().VerseDefaultReference)

	preferenceRepo := repository.NewPreferenceRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)

	// services
	preferenceService := services.NewPreferenceService(preferenceRepo)
	deliveryService := services.NewDeliveryService(deliveryRepo)

	// v1 handlers
	preferenceHandler := handlers.NewPreferenceHandler(preferenceService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	readerHandler := handlers.NewReaderHandler(resolver)
	healthHandler := handlers.NewHealthHandler(nil)

	g := s.Router.Group("/api/v1")
	handlers.RegisterPreferenceRoutes(g, preferenceHandler)
	handlers.RegisterDeliveryRoutes(g, deliveryHandler)
	handlers.RegisterReaderRoutes(g, readerHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
