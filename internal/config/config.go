package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BlobBackendDB   = "db"
	BlobBackendDisk = "disk"
)

type Config struct {
	Port                     string
	DatabaseURL              string
	AutoMigrate              bool
	SessionName              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	BlobBackend              string
	BlobDir                  string
	BlobBaseURL              string
	MaxPhotoBytes            int
	SubmitRatePerMinute      int
	SubmitBurst              int
	ScoringRetrySeconds      int
	ScoringBatchSize         int
	GinMode                  string
}

func Default() Config {
	return Config{
		Port:                     "8080",
		SessionName:              "Global Session",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		BlobBackend:              BlobBackendDB,
		BlobDir:                  "data/photos",
		BlobBaseURL:              "/blobs",
		MaxPhotoBytes:            8 * 1024 * 1024,
		SubmitRatePerMinute:      12,
		SubmitBurst:              4,
		ScoringRetrySeconds:      15,
		ScoringBatchSize:         50,
		GinMode:                  "release",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := os.Getenv("AUTO_MIGRATE"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.AutoMigrate = value
		}
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_NAME")); raw != "" {
		cfg.SessionName = raw
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := strings.ToLower(strings.TrimSpace(os.Getenv("BLOB_BACKEND"))); raw == BlobBackendDB || raw == BlobBackendDisk {
		cfg.BlobBackend = raw
	}
	if raw := os.Getenv("BLOB_DIR"); raw != "" {
		cfg.BlobDir = raw
	}
	if raw := os.Getenv("BLOB_BASE_URL"); raw != "" {
		cfg.BlobBaseURL = strings.TrimRight(raw, "/")
	}
	if raw := os.Getenv("MAX_PHOTO_BYTES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MaxPhotoBytes = value
		}
	}
	if raw := os.Getenv("SUBMIT_RATE_PER_MINUTE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.SubmitRatePerMinute = value
		}
	}
	if raw := os.Getenv("SUBMIT_BURST"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SubmitBurst = value
		}
	}
	if raw := os.Getenv("SCORING_RETRY_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ScoringRetrySeconds = value
		}
	}
	if raw := os.Getenv("SCORING_BATCH_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ScoringBatchSize = value
		}
	}
	if raw := os.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}
	return cfg
}

func (c Config) ScoringRetryInterval() time.Duration {
	return time.Duration(c.ScoringRetrySeconds) * time.Second
}
