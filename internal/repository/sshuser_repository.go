package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"

	"stocksage/internal/domain"
)

const createSSHUsersTable = `
CREATE TABLE IF NOT EXISTS ssh_users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT        NOT NULL,
    fingerprint   TEXT        NOT NULL UNIQUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login_at TIMESTAMPTZ
);
`

// ErrSSHUserNotFound is returned when no user matches a fingerprint.
var ErrSSHUserNotFound = errors.New("ssh user not found")

type SSHUserRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSSHUserRepository(pool PgxPool, tracer trace.Tracer) *SSHUserRepository {
	return &SSHUserRepository{pool: pool, tracer: tracer}
}

func (r *SSHUserRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "sshuser-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createSSHUsersTable)
	return err
}

// GetByFingerprint looks up a user by public-key fingerprint.
func (r *SSHUserRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.SSHUser, error) {
	_, span := r.tracer.Start(ctx, "sshuser-repo.get-by-fingerprint")
	defer span.End()

	var u domain.SSHUser
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, fingerprint, created_at, last_login_at
		 FROM ssh_users
		 WHERE fingerprint = $1`,
		fingerprint,
	).Scan(&u.ID, &u.Username, &u.Fingerprint, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSSHUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Add registers a fingerprint; re-adding an existing one updates the username.
func (r *SSHUserRepository) Add(ctx context.Context, username, fingerprint string) error {
	_, span := r.tracer.Start(ctx, "sshuser-repo.add")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO ssh_users (username, fingerprint)
		 VALUES ($1, $2)
		 ON CONFLICT (fingerprint) DO UPDATE SET username = EXCLUDED.username`,
		username, fingerprint,
	)
	return err
}

// TouchLogin records a successful login.
func (r *SSHUserRepository) TouchLogin(ctx context.Context, fingerprint string) error {
	_, span := r.tracer.Start(ctx, "sshuser-repo.touch-login")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`UPDATE ssh_users SET last_login_at = NOW() WHERE fingerprint = $1`,
		fingerprint,
	)
	return err
}
