package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Driver names as registered with database/sql.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
)

// Dialect covers the few syntax differences between the supported drivers.
type Dialect struct {
	Name string // migration directory under internal/migrate/sql
	// Quote wraps an identifier; table names keep their Supabase capitalisation.
	Quote func(ident string) string
	// JSONParam is the placeholder used when writing a JSON column.
	JSONParam string
	positional bool
}

// DialectFor returns the dialect of a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverMySQL:
		return Dialect{
			Name:      "mysql",
			Quote:     func(s string) string { return "`" + s + "`" },
			JSONParam: "?",
		}, nil
	case DriverPostgres:
		return Dialect{
			Name:       "postgres",
			Quote:      func(s string) string { return `"` + s + `"` },
			JSONParam:  "?::jsonb",
			positional: true,
		}, nil
	default:
		return Dialect{}, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

// Rebind rewrites ? placeholders into $1, $2, ... for positional dialects.
func (d Dialect) Rebind(q string) string {
	if !d.positional {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
