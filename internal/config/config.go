package config

import (
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Storage strategy values. Exactly one is active per deployment.
const (
	StorageFilesystem = "filesystem"
	StorageDatabase   = "database"
)

// Config is read once at process start and treated as immutable.
type Config struct {
	Port string

	DBDriver string // sqlite or postgres
	DBDSN    string

	StorageStrategy string // filesystem or database
	StorageDir      string

	RedisAddr  string // empty disables the projection cache
	CORSOrigin string

	AutoBackupEnabled  bool
	AutoBackupSchedule string
	AutoBackupDir      string
	AutoBackupCodec    string // nop, gzip, brotli or lz4
	AutoBackupKeep     int
}

func LoadConfig() Config {
	cfg := Config{
		Port:               env("PORT", "3030"),
		DBDriver:           env("DB_DRIVER", "sqlite"),
		DBDSN:              env("DB_DSN", "pagekeep.db"),
		StorageStrategy:    env("FILE_STORAGE_STRATEGY", StorageFilesystem),
		StorageDir:         env("FILE_STORAGE_PATH", "./uploads"),
		RedisAddr:          env("REDIS_ADDR", ""),
		CORSOrigin:         env("CORS_ORIGIN", "*"),
		AutoBackupEnabled:  env("AUTO_BACKUP", "") == "true",
		AutoBackupSchedule: env("AUTO_BACKUP_SCHEDULE", "@every 5m"),
		AutoBackupDir:      env("AUTO_BACKUP_DIR", "./backups"),
		AutoBackupCodec:    env("AUTO_BACKUP_CODEC", "gzip"),
		AutoBackupKeep:     envInt("AUTO_BACKUP_KEEP", 10),
	}

	if cfg.StorageStrategy != StorageFilesystem && cfg.StorageStrategy != StorageDatabase {
		logrus.Fatalf("invalid FILE_STORAGE_STRATEGY: %q", cfg.StorageStrategy)
	}

	return cfg
}

func GetDb(cfg Config) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.DBDriver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	default:
		db, err = gorm.Open(sqlite.Open(cfg.DBDSN), &gorm.Config{})
	}

	if err != nil {
		logrus.Fatalf("error connecting to database: %v", err)
	}

	return db
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
