package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/services"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegisterSources registers ingestion source names with the shard
// registry. Already-known names keep their shard ids.
func RegisterSources(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Names []string `json:"names" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.GenerateErrorResponse(400, err.Error()))
			return
		}

		if err := services.RegisterSources(db, req.Names); err != nil {
			c.JSON(http.StatusInternalServerError, utils.GenerateErrorResponse(500, err.Error()))
			return
		}

		names, err := services.ListShardNames(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.GenerateErrorResponse(500, err.Error()))
			return
		}

		c.JSON(http.StatusOK, gin.H{"shards": names})
	}
}

// IngestURLs records observed URLs for a registered source. A source
// that was never registered is the caller's mistake, reported before
// anything is written.
func IngestURLs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Source string   `json:"source" binding:"required"`
			URLs   []string `json:"urls" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.GenerateErrorResponse(400, err.Error()))
			return
		}

		shardID, err := services.ShardIDFor(db, req.Source)
		if errors.Is(err, services.ErrSourceNotRegistered) {
			c.JSON(http.StatusNotFound, utils.GenerateErrorResponse(404, err.Error()))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.GenerateErrorResponse(500, err.Error()))
			return
		}

		if err := services.UpsertURLs(db, shardID, req.URLs, time.Now().Unix()); err != nil {
			c.JSON(http.StatusInternalServerError, utils.GenerateErrorResponse(500, err.Error()))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"shard":    services.ShardName(shardID),
			"ingested": len(req.URLs),
		})
	}
}
