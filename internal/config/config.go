package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/pkg/errors"
)

const ConfigTagName = "env"
const ConfigDefaultTagName = "default"

var config *Config

// Config holds every env-sourced value used by the service. Only this
// struct must be used to hold configuration values, no direct access to
// env, ini or any other config source should be made.
type Config struct {
	AppEnv   string `env:"APP_ENV" default:"dev"`
	AppName  string `env:"APP_NAME" default:"verse_gateway"`
	AppDebug bool   `env:"APP_DEBUG" default:"1"`

	HttpListenAddr string `env:"HTTP_LISTEN_ADDR"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE"`

	LogLevel []string `env:"LOG_LEVEL"`

	// Verse content provider (bible-api.com compatible).
	BibleApiBaseUrl       string        `env:"BIBLE_API_BASE_URL" default:"https://bible-api.com"`
	BibleApiTimeout       time.Duration `env:"BIBLE_API_TIMEOUT" default:"10s"`
	BibleApiMaxRetries    int           `env:"BIBLE_API_MAX_RETRIES" default:"3"`
	VerseDefaultReference string        `env:"VERSE_DEFAULT_REFERENCE" default:"john 3:16"`

	// Speech synthesis for WhatsApp voice notes.
	TTSBaseUrl  string        `env:"TTS_BASE_URL" default:"https://translate.google.com/translate_tts"`
	TTSLanguage string        `env:"TTS_LANGUAGE" default:"en"`
	TTSTimeout  time.Duration `env:"TTS_TIMEOUT" default:"15s"`
	FfmpegPath  string        `env:"FFMPEG_PATH" default:"ffmpeg"`

	// Artifact workspace and its publishing repository. Artifacts pushed to
	// the repository become reachable under PublishPublicBaseUrl when the
	// repository backs a pages-style static host.
	ArtifactDir          string        `env:"ARTIFACT_DIR" default:"."`
	PublishRepoPath      string        `env:"PUBLISH_REPO_PATH" default:"."`
	PublishRemoteName    string        `env:"PUBLISH_REMOTE_NAME" default:"origin"`
	PublishAccessToken   string        `env:"PUBLISH_ACCESS_TOKEN"`
	PublishPublicBaseUrl string        `env:"PUBLISH_PUBLIC_BASE_URL"`
	PublishTimeout       time.Duration `env:"PUBLISH_TIMEOUT" default:"30s"`
	PublishMaxRetries    int           `env:"PUBLISH_MAX_RETRIES" default:"3"`

	// Messaging provider (Twilio compatible REST endpoint).
	TwilioBaseUrl        string        `env:"TWILIO_BASE_URL" default:"https://api.twilio.com"`
	TwilioAccountSID     string        `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string        `env:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber    string        `env:"TWILIO_PHONE_NUMBER"`
	TwilioWhatsAppNumber string        `env:"TWILIO_WHATSAPP_NUMBER"`
	TwilioTimeout        time.Duration `env:"TWILIO_TIMEOUT" default:"10s"`

	SchedulerReloadInterval time.Duration `env:"SCHEDULER_RELOAD_INTERVAL" default:"5m"`
	SchedulerWorkers        int           `env:"SCHEDULER_WORKERS" default:"4"`
	SchedulerQueueSize      int           `env:"SCHEDULER_QUEUE_SIZE" default:"256"`
	DeliveryTimeout         time.Duration `env:"DELIVERY_TIMEOUT" default:"60s"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to load env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)

	if err != nil {
		return errors.New("failed to map env variables to Configuration object " + " error: " + err.Error())
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Config) {
	config = c
}
