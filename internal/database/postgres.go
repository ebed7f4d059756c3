// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yatube/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"
)

// PostgresDB represents a PostgreSQL database connection
type PostgresDB struct {
	DB     *sqlx.DB
	logger *slog.Logger
}

var _ DBAdapter = (*PostgresDB)(nil)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string, logger *slog.Logger) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Ping the database to verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	logger = logger.With("component", "PostgresDB")
	logger.Info("connected to PostgreSQL")

	return &PostgresDB{
		DB:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	p.logger.Info("closing PostgreSQL connection")
	return p.DB.Close()
}

// dbError translates driver errors into application errors. entity names the
// row kind for not-found and duplicate messages, op describes the failed action.
func dbError(err error, entity, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.NewAppError(utils.ErrNotFound, entity+" not found", err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return utils.NewAppError(utils.ErrDuplicate, fmt.Sprintf("%s already exists: %s", entity, pqErr.Constraint), err)
		case "check_violation":
			return utils.NewAppError(utils.ErrInvalidInput, fmt.Sprintf("%s violates %s", entity, pqErr.Constraint), err)
		case "foreign_key_violation":
			return utils.NewAppError(utils.ErrNotFound, fmt.Sprintf("%s references a missing row: %s", entity, pqErr.Constraint), err)
		}
	}

	return utils.NewAppError(utils.ErrDatabase, "failed to "+op, err)
}

// expectAffected turns a zero-row UPDATE or DELETE into a not-found error.
func expectAffected(result sql.Result, entity string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to get rows affected", err)
	}
	if rows == 0 {
		return utils.NewNotFoundError(entity)
	}
	return nil
}

// uuidArray binds a list of ids as a uuid[] parameter.
func uuidArray(ids []uuid.UUID) interface{} {
	return pq.Array(lo.Map(ids, func(id uuid.UUID, _ int) string { return id.String() }))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
