package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"github.com/pterm/pterm"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RunVendorScan drives one full reputation pass for a vendor: download
// the prefix feed, swap it into the index, match the stored corpus,
// verify the suspects against the vendor's full-hash service, then
// stamp confirmed-malicious and still-reachable timestamps across the
// shards. Partial fan-out failures are logged with their shard labels
// and do not abort the scan; the untouched shards stay retriable on the
// next pass.
func RunVendorScan(ctx context.Context, db *gorm.DB, rdb *redis.Client, vendor models.Vendor, scanID string) error {
	logger := slog.With("scan_id", scanID, "vendor", string(vendor))
	pterm.Info.Printfln("[%s] %s scan: fetching hash-prefix feed ...", scanID, vendor)

	prefixes, err := FetchVendorPrefixes(ctx, rdb, vendor)
	if err != nil {
		return err
	}
	if err := ReplaceVendorPrefixes(db, vendor, prefixes); err != nil {
		return err
	}
	logger.Info("prefix index replaced", "prefixes", len(prefixes))

	pterm.Info.Printfln("[%s] %s scan: matching stored urls ...", scanID, vendor)
	suspects, err := FindSuspects(db, vendor)
	if err != nil {
		var fanOut *FanOutError
		if !errors.As(err, &fanOut) || fanOut.AllFailed() {
			return err
		}
		logger.Warn("suspect matching partially failed", "error", fanOut.Error())
	}

	unique := dedupe(suspects)
	logger.Info("suspects identified", "matches", len(suspects), "unique", len(unique))

	pterm.Info.Printfln("[%s] %s scan: verifying %d suspects ...", scanID, vendor, len(unique))
	confirmed, err := VerifyMaliciousURLs(ctx, rdb, vendor, unique)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	malicious := make([]string, 0, len(confirmed))
	for u := range confirmed {
		malicious = append(malicious, u)
	}
	if err := UpdateMaliciousURLs(db, malicious, vendor, now); err != nil {
		logger.Warn("malicious status update incomplete", "error", err)
	}

	pterm.Info.Printfln("[%s] %s scan: probing %d suspects for liveness ...", scanID, vendor, len(unique))
	alive := ProbeReachableURLs(ctx, nil, unique)
	if err := UpdateReachableURLs(db, alive, time.Now().Unix()); err != nil {
		logger.Warn("reachability status update incomplete", "error", err)
	}

	pterm.Success.Printfln("[%s] %s scan finished: %d suspects, %d confirmed malicious, %d reachable",
		scanID, vendor, len(unique), len(malicious), len(alive))
	return nil
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
