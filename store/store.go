package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	ThreatMalware           = "MALWARE"
	ThreatSocialEngineering = "SOCIAL_ENGINEERING"
	ThreatUnwantedSoftware  = "UNWANTED_SOFTWARE"
)

// ThreatTypes lists the threat-list feeds requested from every vendor.
var ThreatTypes = []string{ThreatMalware, ThreatSocialEngineering, ThreatUnwantedSoftware}

// StateKey is the redis key holding the last server-issued client state
// for one vendor's threat list.
func StateKey(vendor models.Vendor, threatType string) string {
	return fmt.Sprintf("state:%s:%s", vendor, threatType)
}

func Connect() (*gorm.DB, *redis.Client) {
	db := ConnectDB()
	rdb := ConnectRedis()

	return db, rdb
}

func ConnectDB() *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	switch os.Getenv("DB_DRIVER") {
	case "sqlite":
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "urls.db"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		db, err = gorm.Open(postgres.Open(os.Getenv("DB_URL")), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("error connecting to database: %s", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to access underlying DB: %s", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate schema: %s", err)
	}

	log.Println("database connected successfully ...")
	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SourceFile{},
		&models.URLRecord{},
		&models.HashPrefix{},
	)
}

func ConnectRedis() *redis.Client {
	opt, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %s", err)
	}
	rdb := redis.NewClient(opt)

	ctx := context.Background()
	for _, vendor := range models.Vendors() {
		for _, threatType := range ThreatTypes {
			rdb.SetNX(ctx, StateKey(vendor, threatType), "", 0)
		}
	}

	log.Println("redis connected successfully ...")
	return rdb
}

func GetEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	res, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid %s: %s", key, err)
	}
	return res
}
