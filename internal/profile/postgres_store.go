package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/common/logger"
)

// PostgresStore keeps the profile as a single row with a fixed primary key.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "profile-store", "backend": "postgres"}),
	}
}

// EnsureSchema creates the single-row table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS business_profile (
			id             INTEGER PRIMARY KEY,
			business_name  TEXT NOT NULL DEFAULT '',
			abn            TEXT NOT NULL DEFAULT '',
			gst_registered BOOLEAN NOT NULL DEFAULT FALSE,
			logo_base64    TEXT NOT NULL DEFAULT '',
			email          TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("creating business_profile table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*BusinessProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT business_name, abn, gst_registered, logo_base64, email
		 FROM business_profile WHERE id = 1`)

	var p BusinessProfile
	err := row.Scan(&p.BusinessName, &p.ABN, &p.GSTRegistered, &p.LogoBase64, &p.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultProfile(), nil
	}
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}

	return &p, nil
}

func (s *PostgresStore) Save(ctx context.Context, p *BusinessProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO business_profile (id, business_name, abn, gst_registered, logo_base64, email)
		 VALUES (1, $1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			abn = EXCLUDED.abn,
			gst_registered = EXCLUDED.gst_registered,
			logo_base64 = EXCLUDED.logo_base64,
			email = EXCLUDED.email`,
		p.BusinessName, p.ABN, p.GSTRegistered, p.LogoBase64, p.Email)
	if err != nil {
		return apperrors.NewStoreWriteError(err)
	}

	return nil
}
