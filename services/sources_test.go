package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSourcesAssignsStableIDs(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, RegisterSources(db, []string{"list1", "list2"}))

	id1, err := ShardIDFor(db, "list1")
	require.NoError(t, err)
	id2, err := ShardIDFor(db, "list2")
	require.NoError(t, err)
	assert.Equal(t, uint(1), id1)
	assert.Equal(t, uint(2), id2)

	// Re-registering must be a no-op for known names.
	require.NoError(t, RegisterSources(db, []string{"list2", "list3"}))

	again, err := ShardIDFor(db, "list2")
	require.NoError(t, err)
	assert.Equal(t, id2, again)

	id3, err := ShardIDFor(db, "list3")
	require.NoError(t, err)
	assert.Greater(t, id3, id2)
}

func TestRegisterSourcesEmptyIsNoOp(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, RegisterSources(db, nil))

	ids, err := ListShardIDs(db)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestShardIDForUnregistered(t *testing.T) {
	db := newTestDB(t)

	_, err := ShardIDFor(db, "never-registered")
	assert.ErrorIs(t, err, ErrSourceNotRegistered)
}

func TestListShardIDsInRegistryOrder(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, RegisterSources(db, []string{"c", "a", "b"}))

	ids, err := ListShardIDs(db)
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, ids)
}

func TestListShardNames(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, RegisterSources(db, []string{"list1", "list2"}))

	names, err := ListShardNames(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"urls_1", "urls_2"}, names)
}
