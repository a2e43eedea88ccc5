package services

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// LoadBlocklistFiles ingests every given blocklist file into its own
// shard, dispatching on extension. Each file is one ingestion source.
func LoadBlocklistFiles(db *gorm.DB, paths []string) error {
	for _, path := range paths {
		var err error
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			err = LoadCSVIntoShard(db, path)
		default:
			err = LoadTXTIntoShard(db, path)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadTXTIntoShard reads one URL per line from a text blocklist and
// upserts the batch into the file's shard, registering the file as a
// source first.
func LoadTXTIntoShard(db *gorm.DB, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		rawURL := strings.TrimSpace(scanner.Text())
		if rawURL == "" {
			continue
		}

		canonical, err := canonicalizeURL(rawURL)
		if err != nil {
			slog.Warn("skipping invalid url", "file", filename, "url", rawURL, "error", err)
			continue
		}
		urls = append(urls, canonical)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	return storeBlocklistURLs(db, filename, urls)
}

// LoadCSVIntoShard extracts everything URL-shaped from any cell of a
// CSV blocklist and upserts the batch into the file's shard.
func LoadCSVIntoShard(db *gorm.DB, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var urls []string
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}

		for _, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" || !isValidURL(cell) {
				continue
			}
			canonical, err := canonicalizeURL(cell)
			if err != nil {
				continue
			}
			urls = append(urls, canonical)
		}
	}

	return storeBlocklistURLs(db, filename, urls)
}

func storeBlocklistURLs(db *gorm.DB, filename string, urls []string) error {
	if err := RegisterSources(db, []string{filename}); err != nil {
		return err
	}
	shardID, err := ShardIDFor(db, filename)
	if err != nil {
		return err
	}
	if err := UpsertURLs(db, shardID, urls, time.Now().Unix()); err != nil {
		return err
	}

	slog.Info("blocklist loaded", "file", filename, "shard", ShardName(shardID), "urls", len(urls))
	return nil
}

// canonicalizeURL normalizes a raw blocklist entry: lowercased scheme
// and host, https default, fragment dropped, path forced to end in "/".
func canonicalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, ".")

	// Bare domains ("example.com") would otherwise parse as a path with
	// an empty host and render as "https:example.com/".
	if !strings.Contains(raw, "://") {
		raw = "//" + raw
	}

	parsedURL, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	parsedURL.Scheme = strings.ToLower(parsedURL.Scheme)
	if parsedURL.Scheme == "" {
		parsedURL.Scheme = "https"
	}

	parsedURL.Host = strings.ToLower(parsedURL.Host)
	parsedURL.Fragment = ""

	if parsedURL.Path == "" {
		parsedURL.Path = "/"
	} else if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path = parsedURL.Path + "/"
	}

	return parsedURL.String(), nil
}

var urlRegex = regexp.MustCompile(`https?://[^\s/$.?#].[^\s]*|[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}(/[^\s]*)?`)

func isValidURL(text string) bool {
	return urlRegex.MatchString(text)
}
