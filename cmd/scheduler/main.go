package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nimasrn/verse-gateway/internal/bible"
	"github.com/nimasrn/verse-gateway/internal/config"
	"github.com/nimasrn/verse-gateway/internal/dispatch"
	"github.com/nimasrn/verse-gateway/internal/publish"
	"github.com/nimasrn/verse-gateway/internal/render"
	"github.com/nimasrn/verse-gateway/internal/repository"
	"github.com/nimasrn/verse-gateway/internal/scheduler"
	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/nimasrn/verse-gateway/pkg/pg"
	"github.com/nimasrn/verse-gateway/pkg/prom"
	"github.com/nimasrn/verse-gateway/pkg/redis"
	"github.com/nimasrn/verse-gateway/pkg/worker"
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

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
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

	synthesizer, err := render.NewVoiceSynthesizer(&render.VoiceConfig{
		BaseURL:     config.Get().TTSBaseUrl,
		Language:    config.Get().TTSLanguage,
		Timeout:     config.Get().TTSTimeout,
		FfmpegPath:  config.Get().FfmpegPath,
		ArtifactDir: config.Get().ArtifactDir,
	})
	if err != nil {
		logger.Error("failed to create voice synthesizer", "error", err)
		return
	}

	publisher, err := publish.NewPublisher(&publish.Config{
		RepoPath:      config.Get().PublishRepoPath,
		RemoteName:    config.Get().PublishRemoteName,
		AccessToken:   config.Get().PublishAccessToken,
		PublicBaseURL: config.Get().PublishPublicBaseUrl,
		Timeout:       config.Get().PublishTimeout,
		MaxRetries:    config.Get().PublishMaxRetries,
	})
	if err != nil {
		logger.Error("failed to create publisher", "error", err)
		return
	}

	twilioClient, err := dispatch.NewTwilioClient(&dispatch.TwilioConfig{
		BaseURL:        config.Get().TwilioBaseUrl,
		AccountSID:     config.Get().TwilioAccountSID,
		AuthToken:      config.Get().TwilioAuthToken,
		PhoneNumber:    config.Get().TwilioPhoneNumber,
		WhatsAppNumber: config.Get().TwilioWhatsAppNumber,
		Timeout:        config.Get().TwilioTimeout,
	})
	if err != nil {
		logger.Error("failed to create twilio client", "error", err)
		return
	}

	preferenceRepo := repository.NewPreferenceRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)

	pipeline := scheduler.NewPipeline(
		resolver,
		render.NewRenderer(synthesizer),
		publisher,
		dispatch.NewDispatcher(twilioClient),
		deliveryRepo,
		scheduler.NewDeduper(redisAdap),
		config.Get().DeliveryTimeout,
	)

	pool := worker.NewWorkerManager(config.Get().SchedulerQueueSize, config.Get().SchedulerWorkers, nil)

	registry, err := scheduler.NewRegistry(preferenceRepo, pipeline, pool, config.Get().SchedulerReloadInterval)
	if err != nil {
		logger.Error("failed to create job registry", "error", err)
		return
	}

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := registry.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case <-c:
		cancel()
		if err := registry.Stop(); err != nil {
			logger.Error("error while stopping scheduler", "error", err)
		}
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
