package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
)

// Put stores a statement's bytes under path, replacing any previous content.
func (s *Store) Put(ctx context.Context, path, contentType string, data []byte) error {
	ctx, span := tracer.Start(ctx, "SQLite.PutBlob")
	defer span.End()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_blobs (path, content_type, data) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET content_type = excluded.content_type, data = excluded.data`,
		path, contentType, data)
	return err
}

func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "SQLite.GetBlob")
	defer span.End()

	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM file_blobs WHERE path = ?`, path).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "file", ID: path}
	}
	return data, err
}
