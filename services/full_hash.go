package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"github.com/pterm/pterm"
	"github.com/redis/go-redis/v9"
)

type ThreatInfo struct {
	ThreatTypes      []string      `json:"threatTypes"`
	PlatformTypes    []string      `json:"platformTypes"`
	ThreatEntryTypes []string      `json:"threatEntryTypes"`
	ThreatEntries    []ThreatEntry `json:"threatEntries"`
}

type ThreatEntry struct {
	Hash string `json:"hash"`
}

type FullHashesRequest struct {
	Client       Client     `json:"client"`
	ClientStates []string   `json:"clientStates"`
	ThreatInfo   ThreatInfo `json:"threatInfo"`
}

type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

type ThreatMetadata struct {
	Entries []MetadataEntry `json:"entries"`
}

type ThreatMatch struct {
	ThreatType          string         `json:"threatType"`
	PlatformType        string         `json:"platformType"`
	ThreatEntryType     string         `json:"threatEntryType"`
	Threat              ThreatEntry    `json:"threat"`
	ThreatEntryMetadata ThreatMetadata `json:"threatEntryMetadata"`
	CacheDuration       string         `json:"cacheDuration"`
}

type FullHashResponse struct {
	Matches               []ThreatMatch `json:"matches"`
	MinimumWaitDuration   string        `json:"minimumWaitDuration"`
	NegativeCacheDuration string        `json:"negativeCacheDuration"`
}

func threatCacheKey(encodedHash string) string {
	return "fullhash:" + encodedHash
}

// VerifyMaliciousURLs asks a vendor's fullHashes endpoint which of the
// given suspect URLs are actually listed, comparing full 32-byte hashes
// rather than prefixes. Verified threat types are cached in redis under
// the server's cache duration; cache failures degrade to misses with a
// warning, since a down cache must not fail verification. The result
// maps each confirmed URL to its threat type.
func VerifyMaliciousURLs(ctx context.Context, rdb *redis.Client, vendor models.Vendor, urls []string) (map[string]string, error) {
	api, ok := vendorAPIs[vendor]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVendor, vendor)
	}
	if len(urls) == 0 {
		return map[string]string{}, nil
	}

	encoded := make(map[string]string, len(urls))
	for _, u := range urls {
		encoded[u] = base64.StdEncoding.EncodeToString(ComputeURLHash(u))
	}

	confirmed := make(map[string]string)
	var unresolved []string
	for _, u := range urls {
		threat, err := rdb.Get(ctx, threatCacheKey(encoded[u])).Result()
		switch {
		case err == redis.Nil:
			unresolved = append(unresolved, u)
		case err != nil:
			pterm.Warning.Printfln("threat cache read failed, treating as miss: %v", err)
			unresolved = append(unresolved, u)
		default:
			confirmed[u] = threat
		}
	}

	if len(unresolved) == 0 {
		return confirmed, nil
	}

	threatEntries := make([]ThreatEntry, len(unresolved))
	for i, u := range unresolved {
		threatEntries[i] = ThreatEntry{Hash: encoded[u]}
	}

	payload := FullHashesRequest{
		Client:       Client{ClientID: CLIENT_ID, ClientVersion: CLIENT_VERSION},
		ClientStates: []string{},
		ThreatInfo: ThreatInfo{
			ThreatTypes:      []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"},
			PlatformTypes:    []string{PlatformTypes},
			ThreatEntryTypes: []string{ThreatEntryTypes},
			ThreatEntries:    threatEntries,
		},
	}

	endpoint := api.fullHashURL + "?key=" + os.Getenv(api.apiKeyEnv)
	var response FullHashResponse
	if err := postSafeBrowsing(ctx, endpoint, payload, &response); err != nil {
		return nil, fmt.Errorf("verifying full hashes with %s: %w", vendor, err)
	}

	matchedThreats := make(map[string]string, len(response.Matches))
	pipe := rdb.Pipeline()
	for _, match := range response.Matches {
		matchedThreats[match.Threat.Hash] = match.ThreatType
		if cacheDuration, err := time.ParseDuration(match.CacheDuration); err == nil {
			pipe.Set(ctx, threatCacheKey(match.Threat.Hash), match.ThreatType, cacheDuration)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		pterm.Warning.Printfln("threat cache write failed: %v", err)
	}

	for _, u := range unresolved {
		if threat, ok := matchedThreats[encoded[u]]; ok {
			confirmed[u] = threat
		}
	}
	return confirmed, nil
}
