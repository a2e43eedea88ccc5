package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/services"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func parseVendor(c *gin.Context, raw string) (models.Vendor, bool) {
	for _, vendor := range models.Vendors() {
		if string(vendor) == raw {
			return vendor, true
		}
	}
	c.JSON(http.StatusBadRequest, utils.GenerateErrorResponse(400, "unknown vendor: "+raw))
	return "", false
}

// ListSuspects returns every stored URL matching the vendor's hash
// prefixes. When some shards failed, the partial result is returned
// with 206 and the failing shards listed, so a short list is never
// mistaken for a complete one.
func ListSuspects(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		vendor, ok := parseVendor(c, c.Query("vendor"))
		if !ok {
			return
		}

		suspects, err := services.FindSuspects(db, vendor)
		if err != nil {
			var fanOut *services.FanOutError
			if !errors.As(err, &fanOut) {
				c.JSON(http.StatusInternalServerError, utils.GenerateErrorResponse(500, err.Error()))
				return
			}

			failures := make([]utils.ShardFailure, len(fanOut.Errors))
			for i, se := range fanOut.Errors {
				failures[i] = utils.ShardFailure{Shard: se.Shard, Message: se.Err.Error()}
			}
			c.JSON(http.StatusPartialContent, gin.H{
				"suspects":      suspects,
				"failed_shards": failures,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"suspects": suspects})
	}
}

// StartScan kicks off a full vendor scan in the background and returns
// its id immediately; progress is tied to the id in the logs.
func StartScan(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Vendor string `json:"vendor" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.GenerateErrorResponse(400, err.Error()))
			return
		}

		vendor, ok := parseVendor(c, req.Vendor)
		if !ok {
			return
		}

		scanID := uuid.NewString()
		go func() {
			if err := services.RunVendorScan(context.Background(), db, rdb, vendor, scanID); err != nil {
				pterm.Error.Printfln("[%s] %s scan failed: %v", scanID, vendor, err)
			}
		}()

		c.JSON(http.StatusAccepted, gin.H{"scan_id": scanID, "vendor": vendor})
	}
}
