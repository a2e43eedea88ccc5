package services

import (
	"bytes"
	"testing"

	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceVendorPrefixesIsWholesale(t *testing.T) {
	db := newTestDB(t)

	first := [][]byte{{0x01, 0x02, 0x03, 0x04}, {0xaa, 0xbb, 0xcc, 0xdd, 0xee}}
	require.NoError(t, ReplaceVendorPrefixes(db, models.VendorGoogle, first))

	sizes, err := DistinctPrefixSizesFor(db, models.VendorGoogle)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, sizes)

	second := [][]byte{{0x0f, 0x0e, 0x0d, 0x0c, 0x0b, 0x0a, 0x09, 0x08}}
	require.NoError(t, ReplaceVendorPrefixes(db, models.VendorGoogle, second))

	sizes, err = DistinctPrefixSizesFor(db, models.VendorGoogle)
	require.NoError(t, err)
	assert.Equal(t, []int{8}, sizes)

	var count int64
	require.NoError(t, db.Model(&models.HashPrefix{}).
		Where("vendor = ?", string(models.VendorGoogle)).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReplaceVendorPrefixesLeavesOtherVendorsAlone(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, ReplaceVendorPrefixes(db, models.VendorGoogle, [][]byte{{0x01, 0x02, 0x03, 0x04}}))
	require.NoError(t, ReplaceVendorPrefixes(db, models.VendorYandex, [][]byte{{0x05, 0x06, 0x07, 0x08, 0x09}}))

	require.NoError(t, ReplaceVendorPrefixes(db, models.VendorGoogle, [][]byte{{0x11, 0x12, 0x13, 0x14}}))

	sizes, err := DistinctPrefixSizesFor(db, models.VendorYandex)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, sizes)
}

func TestReplaceVendorPrefixesValidatesBeforeWriting(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, ReplaceVendorPrefixes(db, models.VendorGoogle, [][]byte{{0x01, 0x02, 0x03, 0x04}}))

	err := ReplaceVendorPrefixes(db, models.VendorGoogle, [][]byte{{0x0a, 0x0b, 0x0c, 0x0d}, {}})
	assert.ErrorIs(t, err, ErrInvalidPrefix)

	err = ReplaceVendorPrefixes(db, models.VendorGoogle, [][]byte{bytes.Repeat([]byte{0xff}, URLHashSize+1)})
	assert.ErrorIs(t, err, ErrInvalidPrefix)

	err = ReplaceVendorPrefixes(db, models.Vendor("Acme"), [][]byte{{0x01, 0x02, 0x03, 0x04}})
	assert.ErrorIs(t, err, ErrUnknownVendor)

	// A rejected snapshot must not have disturbed the current one.
	sizes, err := DistinctPrefixSizesFor(db, models.VendorGoogle)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, sizes)
}

func TestReplaceVendorPrefixesDeduplicates(t *testing.T) {
	db := newTestDB(t)

	prefix := []byte{0x01, 0x02, 0x03, 0x04}
	require.NoError(t, ReplaceVendorPrefixes(db, models.VendorGoogle, [][]byte{prefix, prefix, prefix}))

	var count int64
	require.NoError(t, db.Model(&models.HashPrefix{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReplaceVendorPrefixesEmptySnapshotClears(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, ReplaceVendorPrefixes(db, models.VendorGoogle, [][]byte{{0x01, 0x02, 0x03, 0x04}}))
	require.NoError(t, ReplaceVendorPrefixes(db, models.VendorGoogle, nil))

	sizes, err := DistinctPrefixSizesFor(db, models.VendorGoogle)
	require.NoError(t, err)
	assert.Empty(t, sizes)
}
