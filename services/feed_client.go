package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/store"
	"github.com/pterm/pterm"
	"github.com/redis/go-redis/v9"
)

const (
	CLIENT_ID      = "url-reputation-tracker"
	CLIENT_VERSION = "1.0.0"

	PlatformTypes    = "ANY_PLATFORM"
	ThreatEntryTypes = "URL"

	fullUpdateResponseType = "FULL_UPDATE"
)

type vendorAPIConfig struct {
	updateURL   string
	fullHashURL string
	apiKeyEnv   string
}

var vendorAPIs = map[models.Vendor]vendorAPIConfig{
	models.VendorGoogle: {
		updateURL:   "https://safebrowsing.googleapis.com/v4/threatListUpdates:fetch",
		fullHashURL: "https://safebrowsing.googleapis.com/v4/fullHashes:find",
		apiKeyEnv:   "GOOGLE_API_KEY",
	},
	models.VendorYandex: {
		updateURL:   "https://sba.yandex.net/v4/threatListUpdates:fetch",
		fullHashURL: "https://sba.yandex.net/v4/fullHashes:find",
		apiKeyEnv:   "YANDEX_API_KEY",
	},
}

type Client struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type Constraints struct {
	MaxUpdateEntries      int      `json:"maxUpdateEntries"`
	MaxDatabaseEntries    int      `json:"maxDatabaseEntries"`
	SupportedCompressions []string `json:"supportedCompressions"`
}

type ListUpdateRequest struct {
	ThreatType      string      `json:"threatType"`
	PlatformType    string      `json:"platformType"`
	ThreatEntryType string      `json:"threatEntryType"`
	State           string      `json:"state"`
	Constraints     Constraints `json:"constraints"`
}

type PrefixHashRequest struct {
	Client             Client              `json:"client"`
	ListUpdateRequests []ListUpdateRequest `json:"listUpdateRequests"`
}

type RawHashes struct {
	PrefixSize int    `json:"prefixSize"`
	RawHashes  string `json:"rawHashes"`
}

type Additions struct {
	CompressionType string    `json:"compressionType"`
	RawHashes       RawHashes `json:"rawHashes"`
}

type CheckSum struct {
	Sha256 string `json:"sha256"`
}

type ListUpdateResponse struct {
	ThreatType      string      `json:"threatType"`
	ThreatEntryType string      `json:"threatEntryType"`
	PlatformType    string      `json:"platformType"`
	ResponseType    string      `json:"responseType"`
	Additions       []Additions `json:"additions"`
	NewClientState  string      `json:"newClientState"`
	CheckSum        CheckSum    `json:"checksum"`
}

type PrefixHashResponse struct {
	ListUpdateResponses []ListUpdateResponse `json:"listUpdateResponses"`
	MinimumWaitDuration string               `json:"minimumWaitDuration"`
}

// FetchVendorPrefixes downloads a full hash-prefix snapshot for every
// threat type of one vendor. The request always carries an empty client
// state because the local index is wholesale-replaced: partial updates
// would have nothing to diff against, so anything but a FULL_UPDATE
// response is an error. The server-issued client state is still
// recorded in redis per threat type for observability.
func FetchVendorPrefixes(ctx context.Context, rdb *redis.Client, vendor models.Vendor) ([][]byte, error) {
	api, ok := vendorAPIs[vendor]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVendor, vendor)
	}

	requests := make([]ListUpdateRequest, len(store.ThreatTypes))
	for i, threatType := range store.ThreatTypes {
		requests[i] = ListUpdateRequest{
			ThreatType:      threatType,
			PlatformType:    PlatformTypes,
			ThreatEntryType: ThreatEntryTypes,
			State:           "",
			Constraints: Constraints{
				MaxUpdateEntries:      2048,
				MaxDatabaseEntries:    4096,
				SupportedCompressions: []string{"RAW"},
			},
		}
	}

	payload := PrefixHashRequest{
		Client:             Client{ClientID: CLIENT_ID, ClientVersion: CLIENT_VERSION},
		ListUpdateRequests: requests,
	}

	endpoint := api.updateURL + "?key=" + os.Getenv(api.apiKeyEnv)
	var response PrefixHashResponse
	if err := postSafeBrowsing(ctx, endpoint, payload, &response); err != nil {
		return nil, fmt.Errorf("fetching %s threat lists: %w", vendor, err)
	}

	var prefixes [][]byte
	for _, res := range response.ListUpdateResponses {
		if res.ResponseType != fullUpdateResponseType {
			return nil, fmt.Errorf("%s %s feed: expected %s, got %q",
				vendor, res.ThreatType, fullUpdateResponseType, res.ResponseType)
		}

		for _, addition := range res.Additions {
			decoded, err := base64.StdEncoding.DecodeString(addition.RawHashes.RawHashes)
			if err != nil {
				return nil, fmt.Errorf("%s %s feed: decoding raw hashes: %w", vendor, res.ThreatType, err)
			}
			split, err := splitRawHashes(decoded, addition.RawHashes.PrefixSize)
			if err != nil {
				return nil, fmt.Errorf("%s %s feed: %w", vendor, res.ThreatType, err)
			}
			prefixes = append(prefixes, split...)
		}

		if err := rdb.Set(ctx, store.StateKey(vendor, res.ThreatType), res.NewClientState, 0).Err(); err != nil {
			pterm.Warning.Printfln("failed to record %s state for %s: %v", res.ThreatType, vendor, err)
		}
	}

	return prefixes, nil
}

// splitRawHashes cuts a vendor's concatenated raw-hash blob into
// fixed-size prefixes.
func splitRawHashes(raw []byte, prefixSize int) ([][]byte, error) {
	if prefixSize < 1 || prefixSize > URLHashSize {
		return nil, fmt.Errorf("%w: feed declares %d-byte prefixes", ErrInvalidPrefix, prefixSize)
	}
	if len(raw)%prefixSize != 0 {
		return nil, fmt.Errorf("%w: %d raw bytes not divisible by prefix size %d",
			ErrInvalidPrefix, len(raw), prefixSize)
	}

	prefixes := make([][]byte, 0, len(raw)/prefixSize)
	for i := 0; i < len(raw); i += prefixSize {
		prefixes = append(prefixes, raw[i:i+prefixSize])
	}
	return prefixes, nil
}

func postSafeBrowsing(ctx context.Context, url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request to Safe Browsing API: %w", err)
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response code: %d, body: %s", res.StatusCode, string(resBytes))
	}

	if err := json.Unmarshal(resBytes, out); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}
	return nil
}
