package profile

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/common/logger"
)

func newTestPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, logger.NewTestLogger(t)), mock
}

func TestPostgresStore_LoadReturnsRow(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	rows := sqlmock.NewRows([]string{"business_name", "abn", "gst_registered", "logo_base64", "email"}).
		AddRow("Sparky's Electrical", "51 824 753 556", true, "", "jobs@sparkys.com.au")
	mock.ExpectQuery("SELECT business_name, abn, gst_registered").WillReturnRows(rows)

	p, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Sparky's Electrical", p.BusinessName)
	assert.True(t, p.GSTRegistered)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadNoRowReturnsDefaults(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectQuery("SELECT business_name, abn, gst_registered").WillReturnError(sql.ErrNoRows)

	p, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadQueryError(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectQuery("SELECT business_name, abn, gst_registered").
		WillReturnError(errors.New("connection refused"))

	_, err := store.Load(context.Background())

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, apperrors.ErrCodeStoreReadFailed, stdErr.Code)
}

func TestPostgresStore_SaveUpserts(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectExec("INSERT INTO business_profile").
		WithArgs("Pipeline Plumbing", "12 345 678 901", false, "", "office@pipeline.com.au").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Save(context.Background(), &BusinessProfile{
		BusinessName: "Pipeline Plumbing",
		ABN:          "12 345 678 901",
		Email:        "office@pipeline.com.au",
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveExecError(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectExec("INSERT INTO business_profile").
		WillReturnError(errors.New("disk full"))

	err := store.Save(context.Background(), DefaultProfile())

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, apperrors.ErrCodeStoreWriteFailed, stdErr.Code)
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS business_profile").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
