package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rillshop/internal/config"
	"rillshop/internal/models"
	"rillshop/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// DB is the part of *pgxpool.Pool the repository needs. Every call acquires
// a pooled connection and releases it before returning.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepo struct {
	db   DB
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.Postgres) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{db: pool, pool: pool}, nil
}

// NewWithDB wraps an existing connection source. Migrate and Close are
// no-ops unless db is a *pgxpool.Pool.
func NewWithDB(db DB) *PostgresRepo {
	pool, _ := db.(*pgxpool.Pool)

	return &PostgresRepo{db: db, pool: pool}
}

func (r *PostgresRepo) SaveUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (email, name, password_hash, verification_token)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	var id int64

	err := r.db.QueryRow(ctx, query, user.Email, user.Name, user.PassHash, user.VerificationToken).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.User"

	query := `
		SELECT id, email, name, password_hash, is_verified, role, banned
		FROM users
		WHERE email = $1;
	`

	var u models.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PassHash,
		&u.IsVerified,
		&u.Role,
		&u.Banned,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (r *PostgresRepo) UpdatePasswordHash(ctx context.Context, userID int64, passHash string) error {
	const op = "storage.postgres.UpdatePasswordHash"

	query := `UPDATE users SET password_hash = $1 WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, passHash, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

// VerifyEmail marks the owner of token as verified and clears the token, so
// a token works exactly once.
func (r *PostgresRepo) VerifyEmail(ctx context.Context, token string) (int64, error) {
	const op = "storage.postgres.VerifyEmail"

	query := `
		UPDATE users
		SET is_verified = TRUE, verification_token = NULL
		WHERE verification_token = $1
		RETURNING id;
	`

	var id int64

	err := r.db.QueryRow(ctx, query, token).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, storage.ErrTokenNotFound
		}

		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// SaveChatHistory appends entries in one statement, so a turn pair is
// either stored whole or not at all.
func (r *PostgresRepo) SaveChatHistory(ctx context.Context, entries []models.ChatHistoryEntry) error {
	const op = "storage.postgres.SaveChatHistory"

	if len(entries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ai_chat_history (user_email, chat_type, message, role) VALUES ")

	args := make([]any, 0, len(entries)*4)
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, e.UserEmail, e.ChatType, e.Message, e.Role)
	}

	if _, err := r.db.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}
