package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/forgetmenot/internal/domain"
	"github.com/phrazzld/forgetmenot/internal/platform/logger"
	"github.com/phrazzld/forgetmenot/internal/store"
)

const userColumns = `id, email, first_name, email_notifications, daily_reminder_time, created_at, updated_at`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil") // ALLOW-PANIC
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		nullString(user.FirstName),
		user.EmailNotifications,
		user.DailyReminderTime,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("user email already exists", slog.String("user_id", user.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return store.NewStoreError("user", "create", "failed to insert user", MapError(err))
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getOne(ctx, "get_by_id", query, id)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.getOne(ctx, "get_by_email", query, email)
}

func (s *PostgresUserStore) getOne(ctx context.Context, operation, query string, arg any) (*domain.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("error", err.Error()),
			slog.String("operation", operation))
		return nil, store.NewStoreError("user", operation, "failed to query user", MapError(err))
	}
	return user, nil
}

// ListReminderCandidates implements store.UserStore.ListReminderCandidates
func (s *PostgresUserStore) ListReminderCandidates(ctx context.Context, hour int) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("%w: reminder hour %d out of range", store.ErrInvalidEntity, hour)
	}

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email_notifications AND daily_reminder_time LIKE $1
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, fmt.Sprintf("%02d:%%", hour))
	if err != nil {
		log.Error("failed to list reminder candidates",
			slog.String("error", err.Error()),
			slog.Int("hour", hour))
		return nil, store.NewStoreError("user", "list_reminder_candidates", "failed to query users", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, store.NewStoreError("user", "list_reminder_candidates", "failed to scan user", MapError(err))
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("user", "list_reminder_candidates", "failed iterating users", MapError(err))
	}

	log.Debug("reminder candidates listed", slog.Int("hour", hour), slog.Int("count", len(users)))
	return users, nil
}

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		firstName sql.NullString
	)
	err := row.Scan(
		&u.ID,
		&u.Email,
		&firstName,
		&u.EmailNotifications,
		&u.DailyReminderTime,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.FirstName = stringPtr(firstName)
	return &u, nil
}
