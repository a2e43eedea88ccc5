package services

import (
	"fmt"
	"log/slog"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"gorm.io/gorm"
)

// suspectJoinSQL matches stored hashes truncated to a given length
// against the vendor's prefixes of exactly that length. substr over a
// blob behaves the same on sqlite and postgres bytea.
const suspectJoinSQL = `
SELECT u.url FROM url_records u
INNER JOIN hash_prefixes p ON substr(u.hash, 1, ?) = p.prefix
WHERE u.shard_id = ? AND p.vendor = ? AND p.prefix_size = ?`

// FindSuspects returns every stored URL whose hash, truncated to some
// prefix length the vendor publishes, matches one of that vendor's
// prefixes. Shards are visited in registry order and each distinct
// length is matched separately, so mixed-length feeds cannot miss
// short prefixes or falsely reject long ones. A URL stored in several
// shards appears once per matching shard.
//
// A failing shard does not abort the fan-out: its error is collected
// and the remaining shards are still queried. The returned error is a
// *FanOutError when any shard failed, so an empty result with a nil
// error always means "no matches", never "the query failed".
func FindSuspects(db *gorm.DB, vendor models.Vendor) ([]string, error) {
	if _, err := maliciousColumn(vendor); err != nil {
		return nil, err
	}

	shardIDs, err := ListShardIDs(db)
	if err != nil {
		return nil, err
	}
	sizes, err := DistinctPrefixSizesFor(db, vendor)
	if err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		return nil, nil
	}

	var (
		suspects  []string
		shardErrs []*ShardError
	)
	for _, shardID := range shardIDs {
		var matched []string
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, size := range sizes {
				var urls []string
				if err := tx.Raw(suspectJoinSQL, size, shardID, string(vendor), size).
					Scan(&urls).Error; err != nil {
					return fmt.Errorf("matching %d-byte prefixes: %w", size, err)
				}
				matched = append(matched, urls...)
			}
			return nil
		})
		if err != nil {
			shardErrs = append(shardErrs, &ShardError{
				ShardID: shardID,
				Shard:   ShardName(shardID),
				Err:     err,
			})
			continue
		}
		suspects = append(suspects, matched...)
		slog.Debug("scanned shard for suspects",
			"vendor", vendor, "shard", ShardName(shardID), "matches", len(matched))
	}

	return suspects, fanOutError("find suspects", len(shardIDs), shardErrs)
}

// FindSuspectsIn prefix-matches ad-hoc URLs that need not be stored in
// any shard. Used by the check-url endpoint: each URL's hash is
// truncated to every length the vendor publishes and tested against
// the index. The result lists each input URL at most once.
func FindSuspectsIn(db *gorm.DB, vendor models.Vendor, urls []string) ([]string, error) {
	if _, err := maliciousColumn(vendor); err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, nil
	}

	sizes, err := DistinctPrefixSizesFor(db, vendor)
	if err != nil {
		return nil, err
	}

	hashes := make(map[string][]byte, len(urls))
	for _, u := range urls {
		hashes[u] = ComputeURLHash(u)
	}

	matchedPrefixes := make(map[string]struct{})
	for _, size := range sizes {
		truncated := make([][]byte, 0, len(urls))
		for _, u := range urls {
			truncated = append(truncated, hashes[u][:size])
		}

		var found [][]byte
		err := db.Model(&models.HashPrefix{}).
			Where("vendor = ? AND prefix_size = ? AND prefix IN ?", string(vendor), size, truncated).
			Pluck("prefix", &found).Error
		if err != nil {
			return nil, fmt.Errorf("matching %d-byte prefixes for %s: %w", size, vendor, err)
		}
		for _, prefix := range found {
			matchedPrefixes[string(prefix)] = struct{}{}
		}
	}

	var suspects []string
	for _, u := range urls {
		for _, size := range sizes {
			if _, ok := matchedPrefixes[string(hashes[u][:size])]; ok {
				suspects = append(suspects, u)
				break
			}
		}
	}
	return suspects, nil
}
