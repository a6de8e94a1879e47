package config

import (
	"soundsocial/internal/logger"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion   string `mapstructure:"GENERAL_VERSION"`
	Environment      string `mapstructure:"ENVIRONMENT"`
	ServerPort       int    `mapstructure:"SERVER_PORT"`
	DatabaseHost     string `mapstructure:"DB_HOST"`
	DatabasePort     int    `mapstructure:"DB_PORT"`
	DatabaseName     string `mapstructure:"DB_NAME"`
	DatabaseUser     string `mapstructure:"DB_USER"`
	DatabasePassword string `mapstructure:"DB_PASSWORD"`
	CorsAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret        string `mapstructure:"JWT_SECRET"`

	// MusicBrainz requires a descriptive client identifier on anonymous
	// requests and roughly one request per second.
	MusicBrainzURL       string `mapstructure:"MUSICBRAINZ_URL"`
	CoverArtURL          string `mapstructure:"COVERART_URL"`
	MusicBrainzUserAgent string `mapstructure:"MUSICBRAINZ_USER_AGENT"`
	MusicBrainzDelayMs   int    `mapstructure:"MUSICBRAINZ_DELAY_MS"`
	CatalogCacheTTLMin   int    `mapstructure:"CATALOG_CACHE_TTL_MIN"`
	CatalogCacheSize     int    `mapstructure:"CATALOG_CACHE_SIZE"`
}

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"CORS_ALLOW_ORIGINS", "JWT_SECRET",
		"MUSICBRAINZ_URL", "COVERART_URL", "MUSICBRAINZ_USER_AGENT",
		"MUSICBRAINZ_DELAY_MS", "CATALOG_CACHE_TTL_MIN", "CATALOG_CACHE_SIZE",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	if viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST") {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config",
		"environment", config.Environment,
		"serverPort", config.ServerPort,
	)
	return config, nil
}

func setDefaults() {
	viper.SetDefault("MUSICBRAINZ_URL", "https://musicbrainz.org/ws/2")
	viper.SetDefault("COVERART_URL", "https://coverartarchive.org")
	viper.SetDefault("MUSICBRAINZ_USER_AGENT", "SoundSocial/1.0.0 (contact@soundsocial.app)")
	viper.SetDefault("MUSICBRAINZ_DELAY_MS", 1000)
	viper.SetDefault("CATALOG_CACHE_TTL_MIN", 10)
	viper.SetDefault("CATALOG_CACHE_SIZE", 1024)
}

func (c Config) RemoteDelay() time.Duration {
	return time.Duration(c.MusicBrainzDelayMs) * time.Millisecond
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTLMin) * time.Minute
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error("invalid server port", "port", config.ServerPort)
	}
	if config.DatabaseHost == "" {
		return log.ErrMsg("database host is required")
	}
	if config.DatabaseName == "" {
		return log.ErrMsg("database name is required")
	}
	if config.DatabaseUser == "" {
		return log.ErrMsg("database user is required")
	}
	if config.JWTSecret == "" {
		return log.ErrMsg("jwt secret is required")
	}
	if config.MusicBrainzDelayMs <= 0 {
		return log.Error("invalid remote delay", "delayMs", config.MusicBrainzDelayMs)
	}
	return nil
}
