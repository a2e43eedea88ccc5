package services

import (
	"errors"
	"fmt"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegisterSources records every given source name in the shard
// registry. Names already registered keep their shard id; re-running
// with the same names is a no-op for those names.
func RegisterSources(db *gorm.DB, names []string) error {
	if len(names) == 0 {
		return nil
	}

	sources := make([]models.SourceFile, len(names))
	for i, name := range names {
		sources[i] = models.SourceFile{Name: name}
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&sources).Error; err != nil {
		return fmt.Errorf("registering sources: %w", err)
	}
	return nil
}

// ListShardIDs returns every registered shard id in registry order.
func ListShardIDs(db *gorm.DB) ([]uint, error) {
	var ids []uint
	if err := db.Model(&models.SourceFile{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("listing shard ids: %w", err)
	}
	return ids, nil
}

// ShardIDFor resolves a source name to its shard id. An unregistered
// name is ErrSourceNotRegistered: ingestion callers must fail loudly
// rather than invent a shard.
func ShardIDFor(db *gorm.DB, name string) (uint, error) {
	var source models.SourceFile
	err := db.Where("name = ?", name).First(&source).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %q", ErrSourceNotRegistered, name)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving source %q: %w", name, err)
	}
	return source.ID, nil
}

// ShardName is the stable label for a shard, used in logs and
// fan-out failure reports.
func ShardName(shardID uint) string {
	return fmt.Sprintf("urls_%d", shardID)
}

// ListShardNames returns the shard labels in registry order.
func ListShardNames(db *gorm.DB) ([]string, error) {
	ids, err := ListShardIDs(db)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = ShardName(id)
	}
	return names, nil
}
