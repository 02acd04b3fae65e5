package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrIntegrityViolation is returned for unique, primary-key and
	// foreign-key constraint failures.
	ErrIntegrityViolation = errors.New("integrity violation")

	// ErrInvalidKey is returned when a key cannot address a row.
	ErrInvalidKey = errors.New("invalid key")
)

// postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// classify maps driver and gorm errors onto the repository error kinds,
// keeping the original error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrIntegrityViolation) || errors.Is(err, ErrInvalidKey) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if isIntegrityError(err) {
		return fmt.Errorf("%w: %v", ErrIntegrityViolation, err)
	}
	return err
}

func isIntegrityError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation || pgErr.Code == pgForeignKeyViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintForeignKey:
			return true
		}
		return liteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

// IsIntegrityViolation reports whether err is a constraint failure.
func IsIntegrityViolation(err error) bool {
	return errors.Is(err, ErrIntegrityViolation)
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Classify applies the repository error kinds to errors of queries issued
// outside this package.
func Classify(err error) error {
	return classify(err)
}
