package services

import "crypto/sha256"

// URLHashSize is the size of a full content hash in bytes.
const URLHashSize = sha256.Size

// ComputeURLHash returns the content hash a vendor prefix is matched
// against: SHA-256 over the URL with a trailing "/" appended. The
// appended slash matches the convention vendor feeds hash with, so it
// must never change.
func ComputeURLHash(url string) []byte {
	sum := sha256.Sum256([]byte(url + "/"))
	return sum[:]
}
