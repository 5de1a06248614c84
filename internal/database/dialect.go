package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sebasr/device-timeseries/internal/config"
)

// Dialect identifies the SQL flavour spoken by a DB
type Dialect string

// Supported dialects
const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// DialectFor maps a configured storage driver to its dialect
func DialectFor(driver string) Dialect {
	if driver == config.DriverSQLite {
		return DialectSQLite
	}
	return DialectPostgres
}

// Rebind converts ? placeholders to $1, $2, ... for postgres.
// Queries are written with ? and must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	result := make([]byte, 0, len(query)+8)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, fmt.Sprintf("$%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}

// TimeArg converts a timestamp into the value stored in the ts columns.
// Timestamps are kept at microsecond precision in both dialects.
func (d Dialect) TimeArg(t time.Time) any {
	t = t.UTC().Truncate(time.Microsecond)
	if d == DialectSQLite {
		return t.UnixMicro()
	}
	return t
}

// AnyInt64 returns a predicate matching column against a list parameter
// built by ListArg from []int64. The whole list is bound as one parameter,
// so the query stays within the drivers' bind variable limits.
func (d Dialect) AnyInt64(column string) string {
	if d == DialectSQLite {
		return column + " IN (SELECT value FROM json_each(?))"
	}
	return column + " = ANY(CAST(? AS bigint[]))"
}

// AnyUUID is AnyInt64 for UUID columns, with the list built from the
// canonical string form of each UUID
func (d Dialect) AnyUUID(column string) string {
	if d == DialectSQLite {
		return column + " IN (SELECT value FROM json_each(?))"
	}
	return column + " = ANY(CAST(? AS text[])::uuid[])"
}

// ListArg encodes values as the single parameter used by AnyInt64 and AnyUUID:
// a JSON array for sqlite, a native array for postgres
func ListArg[T int64 | string](d Dialect, values []T) any {
	if values == nil {
		values = []T{}
	}
	if d == DialectSQLite {
		b, _ := json.Marshal(values) // slices of int64 or string always encode
		return string(b)
	}
	return values
}

// IsUniqueViolation reports whether err is a unique or primary key
// constraint violation from either driver
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch code := sqliteErr.Code(); {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE, code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case code&0xff == sqlite3.SQLITE_CONSTRAINT:
			// primary result code only, when extended codes are off
			return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

// Time scans a timestamp column stored natively (postgres) or as Unix
// microseconds (sqlite). Scanned values are always UTC.
type Time struct {
	time.Time
}

// Scan implements sql.Scanner
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
	case int64:
		t.Time = time.UnixMicro(v).UTC()
	case nil:
		t.Time = time.Time{}
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	return nil
}
