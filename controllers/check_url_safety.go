package controllers

import (
	"net/http"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/services"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/utils"
	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CheckURLSafety prefix-matches the submitted URLs against every
// vendor's hash-prefix index. URLs matching no prefix are safe without
// any network round trip; matches are verified through the vendor's
// full-hash service (backed by the redis threat cache) and come back
// unsafe when confirmed, suspect when the match did not verify.
func CheckURLSafety(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			URLs []string `json:"urls" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, utils.GenerateErrorResponse(400, err.Error()))
			return
		}

		response := make(map[string]utils.Response, len(req.URLs))

		for _, vendor := range models.Vendors() {
			suspects, err := services.FindSuspectsIn(db, vendor, req.URLs)
			if err != nil {
				c.JSON(http.StatusInternalServerError, utils.GenerateErrorResponse(500, err.Error()))
				return
			}
			if len(suspects) == 0 {
				continue
			}

			pterm.Warning.Printfln("%d urls match %s prefixes, verifying ...", len(suspects), vendor)
			confirmed, err := services.VerifyMaliciousURLs(c.Request.Context(), rdb, vendor, suspects)
			if err != nil {
				c.JSON(http.StatusInternalServerError, utils.GenerateErrorResponse(500, err.Error()))
				return
			}

			for _, u := range suspects {
				if threat, ok := confirmed[u]; ok {
					response[u] = utils.GenerateUnsafeResponse(u, threat)
				} else if response[u].Status != "unsafe" {
					response[u] = utils.GenerateSuspectResponse(u, string(vendor))
				}
			}
		}

		results := make([]utils.Response, len(req.URLs))
		for i, u := range req.URLs {
			if res, ok := response[u]; ok {
				results[i] = res
			} else {
				results[i] = utils.GenerateSafeResponse(u)
			}
		}

		pterm.Success.Println("url safety check successful ...")
		c.JSON(http.StatusOK, results)
	}
}
