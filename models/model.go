package models

// Vendor identifies an external malicious-URL verification authority.
// The set is closed; anything else is a configuration error.
type Vendor string

const (
	VendorGoogle Vendor = "Google"
	VendorYandex Vendor = "Yandex"
)

// Vendors returns every known vendor in a stable order.
func Vendors() []Vendor {
	return []Vendor{VendorGoogle, VendorYandex}
}

// SourceFile maps an ingestion source name to its shard id. Rows are
// insert-only: a name keeps its first-assigned id forever.
type SourceFile struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// URLRecord is one observed URL within a shard. Hash is the codec
// output for URL, computed at insert and never rewritten on conflict.
// The three timestamp groups move independently of each other.
type URLRecord struct {
	ShardID             uint   `gorm:"primaryKey;autoIncrement:false;index:idx_url_records_shard_hash,priority:1" json:"shard_id"`
	URL                 string `gorm:"primaryKey" json:"url"`
	LastListed          *int64 `json:"last_listed"`
	LastGoogleMalicious *int64 `json:"last_google_malicious"`
	LastYandexMalicious *int64 `json:"last_yandex_malicious"`
	LastReachable       *int64 `json:"last_reachable"`
	Hash                []byte `gorm:"not null;index:idx_url_records_shard_hash,priority:2" json:"-"`
}

// HashPrefix is one vendor-supplied malicious hash prefix. A vendor's
// rows are replaced wholesale on every feed update.
type HashPrefix struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Prefix     []byte `gorm:"not null" json:"prefix"`
	PrefixSize int    `gorm:"not null;index:idx_hash_prefixes_vendor_size,priority:2" json:"prefix_size"`
	Vendor     string `gorm:"not null;index:idx_hash_prefixes_vendor_size,priority:1" json:"vendor"`
}
