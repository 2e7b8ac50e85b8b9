package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolationCode = "23505"

	errUserNotFound    = "user not found"
	errPatientNotFound = "patient record not found"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode
}

func errFailedParseDatabaseConfig(err error) error {
	return fmt.Errorf("failed to parse database config: %w", err)
}

func errFailedCreateConnectionPool(err error) error {
	return fmt.Errorf("failed to create connection pool: %w", err)
}

func errFailedPingDatabase(err error) error {
	return fmt.Errorf("failed to ping database: %w", err)
}
