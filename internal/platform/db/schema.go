package db

import (
	"context"
	"fmt"
)

// Migrate creates the circulation tables if they do not exist yet.
// Books and members are owned by the catalog; only the columns the
// circulation core reads are declared here.
func Migrate(ctx context.Context, h *Handle) error {
	for _, stmt := range schemaFor(h.Dialect) {
		if _, err := h.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func schemaFor(d Dialect) []string {
	var pk, ts string
	switch d {
	case MySQL:
		pk, ts = "BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY", "DATETIME(6)"
	case Postgres:
		pk, ts = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	default:
		pk, ts = "INTEGER PRIMARY KEY AUTOINCREMENT", "DATETIME"
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS members (
			id %s,
			name VARCHAR(255) NOT NULL,
			credits INTEGER NOT NULL DEFAULT 0
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS books (
			id %s,
			title VARCHAR(255) NOT NULL,
			total_copies INTEGER NOT NULL DEFAULT 0,
			available_copies INTEGER NOT NULL DEFAULT 0,
			CONSTRAINT chk_books_copies CHECK (available_copies >= 0 AND available_copies <= total_copies)
		)`, pk),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS loans (
			id %[1]s,
			loan_ulid CHAR(26) NOT NULL UNIQUE,
			book_id BIGINT NOT NULL REFERENCES books(id),
			member_id BIGINT NOT NULL REFERENCES members(id),
			status VARCHAR(16) NOT NULL DEFAULT 'pending',
			issue_date %[2]s NOT NULL,
			due_date %[2]s NOT NULL,
			return_date %[2]s NULL,
			decided_by BIGINT NULL,
			decided_at %[2]s NULL,
			returned_by BIGINT NULL,
			CONSTRAINT chk_loans_status CHECK (status IN ('pending', 'issued', 'rejected', 'returned')),
			CONSTRAINT chk_loans_return_date CHECK ((status = 'returned') = (return_date IS NOT NULL))
		)`, pk, ts),
	}
}
