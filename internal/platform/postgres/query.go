package postgres

import (
	"database/sql"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
)

// psql builds statements with PostgreSQL's $n placeholders. Single UUIDs
// must be bound with "col = ?" rather than sq.Eq, which expands arrays
// (uuid.UUID is a [16]byte) into IN lists.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func closeRows(rows *sql.Rows, log *slog.Logger) {
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", err.Error()))
	}
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
