package services

import (
	"log/slog"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"gorm.io/gorm"
)

// UpdateMaliciousURLs stamps the vendor's malicious column for a
// confirmed URL batch across every shard. The vendor is validated
// before any shard is written. Each shard update is an independent
// transaction; a failure in one shard is collected into a *FanOutError
// and the remaining shards are still updated, so the caller can retry
// just the shards that failed.
func UpdateMaliciousURLs(db *gorm.DB, urls []string, vendor models.Vendor, at int64) error {
	column, err := maliciousColumn(vendor)
	if err != nil {
		return err
	}
	return updateAllShards(db, urls, column, at, "update malicious urls")
}

// UpdateReachableURLs stamps the reachability column for a confirmed
// URL batch across every shard, with the same fan-out semantics.
func UpdateReachableURLs(db *gorm.DB, urls []string, at int64) error {
	return updateAllShards(db, urls, "last_reachable", at, "update reachable urls")
}

func updateAllShards(db *gorm.DB, urls []string, column string, at int64, op string) error {
	if len(urls) == 0 {
		return nil
	}

	shardIDs, err := ListShardIDs(db)
	if err != nil {
		return err
	}

	var shardErrs []*ShardError
	for _, shardID := range shardIDs {
		if err := setStatusTimestamp(db, shardID, urls, column, at); err != nil {
			shardErrs = append(shardErrs, &ShardError{
				ShardID: shardID,
				Shard:   ShardName(shardID),
				Err:     err,
			})
			continue
		}
		slog.Debug("updated shard status", "op", op, "shard", ShardName(shardID), "urls", len(urls))
	}

	return fanOutError(op, len(shardIDs), shardErrs)
}
