package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/config"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/controllers"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/services"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/store"
	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

const (
	MAX_DB_CONNECTIONS   = 20
	MAX_IDLE_CONNECTIONS = 50
	MAX_CONN_LIFETIME    = 5
)

func main() {
	config.LoadConfig()
	db, rdb := store.Connect()

	sqlDB, err := db.DB()
	if err != nil {
		pterm.Fatal.Println("failed to configure database pooling: ", err)
	}

	sqlDB.SetMaxOpenConns(MAX_DB_CONNECTIONS)
	sqlDB.SetMaxIdleConns(MAX_IDLE_CONNECTIONS)
	sqlDB.SetConnMaxLifetime(MAX_CONN_LIFETIME * time.Minute)
	defer sqlDB.Close()

	if blocklists := os.Getenv("BLOCKLIST_FILES"); blocklists != "" {
		pterm.Info.Println("loading blocklist files ...")
		if err := services.LoadBlocklistFiles(db, strings.Split(blocklists, ",")); err != nil {
			pterm.Fatal.Println("failed to load blocklists: ", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pterm.Info.Println("fetch update service running in background ...")
	services.FetchUpdates(ctx, db, rdb)

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.POST("api/check-url", controllers.CheckURLSafety(db, rdb))
	router.POST("api/sources", controllers.RegisterSources(db))
	router.POST("api/urls", controllers.IngestURLs(db))
	router.GET("api/suspects", controllers.ListSuspects(db))
	router.POST("api/scan", controllers.StartScan(db, rdb))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	router.Run("0.0.0.0:" + port)
}
