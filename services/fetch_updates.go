package services

import (
	"context"
	"time"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/store"
	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const failureWaitDuration = 5 * time.Minute

// FetchUpdates runs the per-vendor scan pipeline on the configured
// interval in a background goroutine, until the context is cancelled.
// A failed pass is retried sooner than the regular interval.
func FetchUpdates(ctx context.Context, db *gorm.DB, rdb *redis.Client) {
	interval := time.Duration(store.GetEnvInt("UPDATE_INTERVAL_MINUTES", 30)) * time.Minute

	go func() {
		for {
			wait := interval
			for _, vendor := range models.Vendors() {
				if err := RunVendorScan(ctx, db, rdb, vendor, uuid.NewString()); err != nil {
					pterm.Error.Printfln("%s scan failed: %v", vendor, err)
					wait = failureWaitDuration
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()
}
