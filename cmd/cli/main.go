package main

import (
	"context"
	"os"
	"strings"

	"github.com/nimasrn/verse-gateway/internal/bible"
	"github.com/nimasrn/verse-gateway/internal/config"
	"github.com/nimasrn/verse-gateway/internal/dispatch"
	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/nimasrn/verse-gateway/internal/publish"
	"github.com/nimasrn/verse-gateway/internal/render"
	"github.com/nimasrn/verse-gateway/internal/repository"
	"github.com/nimasrn/verse-gateway/internal/scheduler"
	"github.com/nimasrn/verse-gateway/internal/services"
	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/nimasrn/verse-gateway/pkg/pg"
	"github.com/nimasrn/verse-gateway/pkg/redis"
)

// Commands:
//
//	cli migrate [--dir=./migrations] [--env=.env]
//	cli add --phone=+15551234567 --method=sms --time=08:00 --translations=kjv,web --reference="john 3:16"
//	cli deliver --phone=+15551234567
func main() {
	err := config.Load(argValue("env", getDefaultEnvPath()))
	if err != nil {
		logger.Error("failed to load config", "error", err)
	}

	switch command() {
	case "migrate":
		runMigrate()
	case "add":
		runAdd()
	case "deliver":
		runDeliver()
	default:
		logger.Error("unknown command, expected one of: migrate, add, deliver")
	}
}

func runMigrate() {
	pgConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}
	if err := pg.Migrate(pgConf, argValue("dir", "./migrations")); err != nil {
		logger.Error("migration: error running migrations", "error", err)
	}
}

func runAdd() {
	db, err := openDB()
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	svc := services.NewPreferenceService(repository.NewPreferenceRepository(db))
	pref, err := svc.Create(context.Background(), model.PreferenceCreateRequest{
		PhoneNumber:    argValue("phone", ""),
		Method:         model.DeliveryMethod(argValue("method", "sms")),
		DeliveryTime:   argValue("time", "08:00"),
		Translations:   strings.Split(argValue("translations", "web"), ","),
		VerseReference: argValue("reference", config.Get().VerseDefaultReference),
	})
	if err != nil {
		logger.Error("failed to add preference", "error", err)
		return
	}
	logger.Info("preference added", "phone", pref.PhoneNumber, "method", string(pref.Method), "delivery_time", pref.DeliveryTime)
}

// runDeliver triggers one delivery immediately, outside the daily schedule.
// The dedup claim still applies, so it will not double-send a day that
// already went out.
func runDeliver() {
	phone := argValue("phone", "")
	if phone == "" {
		logger.Error("deliver: --phone is required")
		return
	}

	db, err := openDB()
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
	pref, err := preferenceRepo.GetByPhone(context.Background(), phone)
	if err != nil {
		logger.Error("failed to load preference", "error", err, "phone", phone)
		return
	}

	pipeline := scheduler.NewPipeline(
		bible.NewResolver(verseClient, config.Get().VerseDefaultReference),
		render.NewRenderer(synthesizer),
		publisher,
		dispatch.NewDispatcher(twilioClient),
		repository.NewDeliveryRepository(db),
		scheduler.NewDeduper(redisAdap),
		config.Get().DeliveryTimeout,
	)

	if err := pipeline.Deliver(context.Background(), pref); err != nil {
		logger.Error("delivery failed", "error", err, "phone", phone)
		return
	}
	logger.Info("delivery finished", "phone", phone, "method", string(pref.Method))
}

func openDB() (*pg.DB, error) {
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}
	return pg.CreateReadWrite(writeConf, writeConf, config.Get().AppEnv == "dev")
}

func command() string {
	for _, v := range os.Args[1:] {
		if !strings.HasPrefix(v, "--") {
			return v
		}
	}
	return "migrate"
}

func argValue(name, fallback string) string {
	prefix := "--" + name + "="
	for _, v := range os.Args {
		if strings.HasPrefix(v, prefix) {
			return strings.TrimPrefix(v, prefix)
		}
	}
	return fallback
}

func getDefaultEnvPath() string {
	if _, err := os.Open(".env"); err != nil {
		return ""
	}
	return ".env"
}
