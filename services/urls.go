package services

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 100

// UpsertURLs records a batch of observed URLs in one shard. New URLs
// are inserted with their hash and lastListed set; re-observed URLs get
// only lastListed refreshed. Hash and the status columns are never
// touched on conflict.
func UpsertURLs(db *gorm.DB, shardID uint, urls []string, observedAt int64) error {
	if len(urls) == 0 {
		return nil
	}

	// Postgres rejects a multi-row INSERT whose conflict target is hit
	// twice in one statement, and blocklists repeat urls after
	// canonicalization.
	seen := make(map[string]struct{}, len(urls))
	records := make([]models.URLRecord, 0, len(urls))
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		records = append(records, models.URLRecord{
			ShardID:    shardID,
			URL:        u,
			LastListed: &observedAt,
			Hash:       ComputeURLHash(u),
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shard_id"}, {Name: "url"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"last_listed": observedAt}),
		}).CreateInBatches(records, batchSize).Error
	})
	if err != nil {
		return fmt.Errorf("upserting %d urls into shard %s: %w", len(urls), ShardName(shardID), err)
	}

	slog.Debug("upserted urls", "shard", ShardName(shardID), "count", len(urls))
	return nil
}

// maliciousColumn maps a vendor to its status column. Unknown vendors
// are rejected here, before anything is written.
func maliciousColumn(vendor models.Vendor) (string, error) {
	switch vendor {
	case models.VendorGoogle:
		return "last_google_malicious", nil
	case models.VendorYandex:
		return "last_yandex_malicious", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVendor, vendor)
	}
}

// SetVendorMaliciousTimestamp stamps the vendor's malicious column for
// exactly the given URLs within one shard. URLs absent from the shard
// are skipped, never inserted.
func SetVendorMaliciousTimestamp(db *gorm.DB, shardID uint, urls []string, vendor models.Vendor, at int64) error {
	column, err := maliciousColumn(vendor)
	if err != nil {
		return err
	}
	return setStatusTimestamp(db, shardID, urls, column, at)
}

// SetReachableTimestamp stamps the reachability column for exactly the
// given URLs within one shard.
func SetReachableTimestamp(db *gorm.DB, shardID uint, urls []string, at int64) error {
	return setStatusTimestamp(db, shardID, urls, "last_reachable", at)
}

func setStatusTimestamp(db *gorm.DB, shardID uint, urls []string, column string, at int64) error {
	// An empty set must not reach the engine as a zero-placeholder IN.
	if len(urls) == 0 {
		return nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.URLRecord{}).
			Where("shard_id = ? AND url IN ?", shardID, urls).
			Update(column, at).Error
	})
	if err != nil {
		return fmt.Errorf("updating %s in shard %s: %w", column, ShardName(shardID), err)
	}
	return nil
}

// VerifyShardHashes recomputes the hash of every URL stored in a shard
// and reports rows whose stored hash drifted. The store is left
// untouched either way: corruption is surfaced, never papered over.
func VerifyShardHashes(db *gorm.DB, shardID uint) error {
	var records []models.URLRecord
	if err := db.Select("url", "hash").
		Where("shard_id = ?", shardID).
		Find(&records).Error; err != nil {
		return fmt.Errorf("reading shard %s for audit: %w", ShardName(shardID), err)
	}

	var corrupted []string
	for _, rec := range records {
		if !bytes.Equal(rec.Hash, ComputeURLHash(rec.URL)) {
			corrupted = append(corrupted, rec.URL)
		}
	}
	if len(corrupted) > 0 {
		return &IntegrityError{ShardID: shardID, URLs: corrupted}
	}
	return nil
}
