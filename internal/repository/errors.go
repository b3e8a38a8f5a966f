package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Sentinel errors returned by the repositories. Persistence errors always wrap
// the underlying driver error as well, so errors.Is/As still reach it.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("storefront: record not found")

	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("storefront: conflict")

	// ErrInvalidInput indicates a write referenced something that does not exist.
	ErrInvalidInput = errors.New("storefront: invalid input")

	// ErrPersistence indicates a statement failed; the surrounding transaction was rolled back.
	ErrPersistence = errors.New("storefront: persistence failure")

	// ErrClosed is returned by Default after Close.
	ErrClosed = errors.New("storefront: database closed")
)

const (
	mysqlErrDuplicateEntry = 1062
	pgErrUniqueViolation   = "23505"
)

// translateError classifies a GORM/driver error into one of the sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidInput), errors.Is(err, ErrPersistence):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case isDuplicateKey(err):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return true
	}
	return false
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
