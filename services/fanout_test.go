package services

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SSI-IT-Consulting/url-reputation-tracker.git/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

// A failing shard must surface as a per-shard error while the rest of
// the fan-out still runs, so partial results stay distinguishable from
// clean empty ones.
func TestFindSuspectsReportsFailedShardAndContinues(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT "id" FROM "source_files"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectQuery(`SELECT DISTINCT prefix_size FROM hash_prefixes`).
		WillReturnRows(sqlmock.NewRows([]string{"prefix_size"}).AddRow(4))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT u.url FROM url_records`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT u.url FROM url_records`).
		WillReturnRows(sqlmock.NewRows([]string{"url"}).AddRow("http://bad.example/"))
	mock.ExpectCommit()

	suspects, err := FindSuspects(db, models.VendorGoogle)

	assert.Equal(t, []string{"http://bad.example/"}, suspects)

	var fanOut *FanOutError
	require.ErrorAs(t, err, &fanOut)
	assert.Equal(t, 2, fanOut.Total)
	require.Len(t, fanOut.Errors, 1)
	assert.Equal(t, "urls_1", fanOut.Errors[0].Shard)
	assert.False(t, fanOut.AllFailed())
	assert.Contains(t, fanOut.Error(), "1/2 shards failed")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMaliciousURLsReportsFailedShardAndContinues(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT "id" FROM "source_files"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "url_records" SET "last_google_malicious"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "url_records" SET "last_google_malicious"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := UpdateMaliciousURLs(db, []string{"http://evil.com/"}, models.VendorGoogle, 200)

	var fanOut *FanOutError
	require.ErrorAs(t, err, &fanOut)
	assert.Equal(t, 2, fanOut.Total)
	require.Len(t, fanOut.Errors, 1)
	assert.Equal(t, uint(1), fanOut.Errors[0].ShardID)
	assert.False(t, fanOut.AllFailed())

	assert.NoError(t, mock.ExpectationsWereMet())
}
