package services

import (
	"fmt"
	"log/slog"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"gorm.io/gorm"
)

// ReplaceVendorPrefixes swaps in a vendor's new hash-prefix snapshot.
// Every prefix is validated before the store is touched; the delete and
// insert run in one transaction so readers see the old set or the new
// set, never a mix. Other vendors' prefixes are untouched.
func ReplaceVendorPrefixes(db *gorm.DB, vendor models.Vendor, prefixes [][]byte) error {
	if _, err := maliciousColumn(vendor); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(prefixes))
	entries := make([]models.HashPrefix, 0, len(prefixes))
	for _, prefix := range prefixes {
		if len(prefix) == 0 || len(prefix) > URLHashSize {
			return fmt.Errorf("%w: %d bytes", ErrInvalidPrefix, len(prefix))
		}
		if _, dup := seen[string(prefix)]; dup {
			continue
		}
		seen[string(prefix)] = struct{}{}
		entries = append(entries, models.HashPrefix{
			Prefix:     prefix,
			PrefixSize: len(prefix),
			Vendor:     string(vendor),
		})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vendor = ?", string(vendor)).
			Delete(&models.HashPrefix{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.CreateInBatches(entries, batchSize).Error
	})
	if err != nil {
		return fmt.Errorf("replacing %s prefixes: %w", vendor, err)
	}

	slog.Debug("replaced vendor prefixes", "vendor", vendor, "count", len(entries))
	return nil
}

// DistinctPrefixSizesFor returns every prefix length present for a
// vendor, ascending. Vendors mix lengths within one feed, so matching
// has to consider each length separately.
func DistinctPrefixSizesFor(db *gorm.DB, vendor models.Vendor) ([]int, error) {
	var sizes []int
	err := db.Raw(
		"SELECT DISTINCT prefix_size FROM hash_prefixes WHERE vendor = ? ORDER BY prefix_size",
		string(vendor),
	).Scan(&sizes).Error
	if err != nil {
		return nil, fmt.Errorf("listing prefix sizes for %s: %w", vendor, err)
	}
	return sizes, nil
}
