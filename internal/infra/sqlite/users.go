package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser registers a local account. Emails are stored lowercased.
func (s *Store) CreateUser(ctx context.Context, email, password string) (*domain.Principal, error) {
	ctx, span := tracer.Start(ctx, "SQLite.CreateUser")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "required"}
	}
	if len(password) < 8 {
		return nil, &domain.ErrValidation{Field: "password", Message: "must be at least 8 characters"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p := &domain.Principal{ID: uuid.NewString(), Email: email}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Email, string(hash), now())
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// Authenticate checks email/password against the users table.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*domain.Principal, error) {
	ctx, span := tracer.Start(ctx, "SQLite.Authenticate")
	defer span.End()

	var (
		p    domain.Principal
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email))).Scan(&p.ID, &p.Email, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		s.logger.Debug("password mismatch", zap.String("user_id", p.ID))
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}
	return &p, nil
}

// FindUser looks a local account up by email.
func (s *Store) FindUser(ctx context.Context, email string) (*domain.Principal, error) {
	ctx, span := tracer.Start(ctx, "SQLite.FindUser")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	var p domain.Principal
	err := s.db.QueryRowContext(ctx, `SELECT id, email FROM users WHERE email = ?`, email).Scan(&p.ID, &p.Email)
	if err != nil {
		return nil, notFound(err, "user", email)
	}
	return &p, nil
}
