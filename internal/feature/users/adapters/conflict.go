package adapters

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"user_backend/internal/feature/users/usecase"
)

const (
	// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
	pgUniqueViolation = "23505"

	pgDuplicateKeyText = "duplicate key value violates unique constraint"
	pgDetailMarker     = "DETAIL:"
	sqliteUniqueMarker = "UNIQUE constraint failed: "
)

// classifyError converts engine-specific uniqueness violations into
// *usecase.DuplicateEntryError. Other errors are returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return err
		}
		detail := pgErr.Detail
		if detail == "" {
			detail, _ = parseConflictDetail(pgErr.Error())
		}
		return &usecase.DuplicateEntryError{Detail: detail, Err: err}
	}

	if detail, ok := parseConflictDetail(err.Error()); ok {
		return &usecase.DuplicateEntryError{Detail: detail, Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &usecase.DuplicateEntryError{Err: err}
	}
	return err
}

// parseConflictDetail extracts a short description from a raw uniqueness
// diagnostic. ok reports whether msg looks like a uniqueness violation at all;
// detail is empty when the format is not recognized.
//
//	ERROR: duplicate key value violates unique constraint "idx_users_password"
//	DETAIL:  Key (password)=($2a$10$...) already exists.
//	        -> Key (password)=($2a$10$...) already exists.
//	UNIQUE constraint failed: users.password
//	        -> Key (password) already exists.
func parseConflictDetail(msg string) (detail string, ok bool) {
	if strings.Contains(msg, pgDuplicateKeyText) {
		i := strings.Index(msg, pgDetailMarker)
		if i < 0 {
			return "", true
		}
		line := strings.TrimSpace(msg[i+len(pgDetailMarker):])
		if j := strings.IndexByte(line, '\n'); j >= 0 {
			line = strings.TrimSpace(line[:j])
		}
		return line, true
	}

	if i := strings.Index(msg, sqliteUniqueMarker); i >= 0 {
		var cols []string
		for _, c := range strings.Split(msg[i+len(sqliteUniqueMarker):], ",") {
			c = strings.TrimSpace(c)
			if dot := strings.LastIndexByte(c, '.'); dot >= 0 {
				c = c[dot+1:]
			}
			if c != "" {
				cols = append(cols, c)
			}
		}
		if len(cols) == 0 {
			return "", true
		}
		return fmt.Sprintf("Key (%s) already exists.", strings.Join(cols, ", ")), true
	}

	return "", false
}
