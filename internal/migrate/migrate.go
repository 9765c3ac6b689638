package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/TirthNotFoundthedev/Toggl-Manager-Webhook/internal/adapter/sqlstore"
)

//go:embed sql/mysql/*.sql sql/postgres/*.sql
var migrationsFS embed.FS

// Run applies pending migrations found under internal/migrate/sql/<dialect>.
// Migrations must be named like 0001_description.sql and will be executed
// in lexicographic order. Each file holds a single statement.
func Run(ctx context.Context, driver, dsn string, log *slog.Logger) error {
	d, err := sqlstore.DialectFor(driver)
	if err != nil {
		return err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		return err
	}
	return Apply(ctx, db, d, log)
}

// Apply runs pending migrations of dialect d on an open database.
func Apply(ctx context.Context, db *sql.DB, d sqlstore.Dialect, log *slog.Logger) error {
	if err := ensureMigrationsTable(ctx, db, d); err != nil {
		return err
	}

	files, err := Files(d)
	if err != nil {
		return err
	}

	applied, err := loadApplied(ctx, db)
	if err != nil {
		return err
	}

	for _, f := range files {
		base := path.Base(f)
		ver, err := parseVersion(base)
		if err != nil {
			return fmt.Errorf("invalid migration filename %q: %w", base, err)
		}
		if applied[ver] {
			log.Debug("migration already applied", slog.Int("version", ver), slog.String("file", base))
			continue
		}
		b, err := fs.ReadFile(migrationsFS, f)
		if err != nil {
			return err
		}
		log.Info("applying migration", slog.Int("version", ver), slog.String("file", base), slog.String("dialect", d.Name))
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("applying %s: %w", base, err)
		}
		if err := recordApplied(ctx, db, d, ver); err != nil {
			return err
		}
	}
	return nil
}

// Files lists the embedded migrations of a dialect in apply order.
func Files(d sqlstore.Dialect) ([]string, error) {
	files, err := fs.Glob(migrationsFS, "sql/"+d.Name+"/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB, d sqlstore.Dialect) error {
	ddl := `CREATE TABLE IF NOT EXISTS schema_migrations (
        version BIGINT PRIMARY KEY,
        applied_at DATETIME(6) NOT NULL
    ) ENGINE=InnoDB;`
	if d.Name == "postgres" {
		ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (
        version BIGINT PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL
    );`
	}
	_, err := db.ExecContext(ctx, ddl)
	return err
}

func loadApplied(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		m[v] = true
	}
	return m, rows.Err()
}

func recordApplied(ctx context.Context, db *sql.DB, d sqlstore.Dialect, version int) error {
	_, err := db.ExecContext(ctx, d.Rebind("INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)"), version, time.Now().UTC())
	return err
}

func parseVersion(name string) (int, error) {
	// Expect prefix like 0001_...
	i := strings.IndexByte(name, '_')
	if i <= 0 {
		return 0, fmt.Errorf("missing prefix number")
	}
	v, err := strconv.Atoi(name[:i])
	if err != nil {
		return 0, err
	}
	return v, nil
}
