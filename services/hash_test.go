package services

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeURLHashDeterministic(t *testing.T) {
	assert.Equal(t, ComputeURLHash("http://evil.com/"), ComputeURLHash("http://evil.com/"))
}

func TestComputeURLHashDistinguishesSimilarURLs(t *testing.T) {
	assert.NotEqual(t, ComputeURLHash("http://evil.com/"), ComputeURLHash("http://evil.com/x"))
	assert.NotEqual(t, ComputeURLHash("http://evil.com"), ComputeURLHash("http://evil.com/"))
}

func TestComputeURLHashAppendsSlashBeforeHashing(t *testing.T) {
	want := sha256.Sum256([]byte("http://evil.com//"))
	assert.Equal(t, want[:], ComputeURLHash("http://evil.com/"))
	assert.Len(t, ComputeURLHash("anything"), URLHashSize)
}
