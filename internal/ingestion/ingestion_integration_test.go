//go:build integration
// +build integration

package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	goose "github.com/pressly/goose/v3"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres spins up a Postgres container and returns a DSN and terminate func.
func startPostgres(t *testing.T) (dsn string, terminate func()) {
	t.Helper()
	ctx := context.Background()

	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "stocks",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("host=%s port=%s user=postgres password=postgres dbname=stocks sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", "postgres", "postgres", host, port.Port(), "stocks")
	terminate = func() { _ = container.Terminate(context.Background()) }
	return dsn, terminate
}

func openDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("dialect: %v", err)
	}
	// migrations path relative to this test file (internal/ingestion → ../../db/migrations)
	path := filepath.Join("..", "..", "db", "migrations")
	if err := goose.Up(db, path); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
}

func writeInputFile(t *testing.T, dir, name string, base time.Time, rows int) int {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString("Symbol;Price;TradedAt\n"); err != nil {
		t.Fatalf("write header: %v", err)
	}
	// comma decimal separator, one observation per minute
	for i := 0; i < rows; i++ {
		line := fmt.Sprintf("TEST4;%d,%02d;%s\n", 10+i, i, base.Add(time.Duration(i)*time.Minute).Format(time.RFC3339))
		if _, err := f.WriteString(line); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	return rows
}

func TestIngestion_EndToEnd_ProcessDirectory(t *testing.T) {
	dsn, terminate := startPostgres(t)
	defer terminate()
	db := openDB(t, dsn)
	defer db.Close()
	runMigrations(t, db)

	tdir := t.TempDir()
	base := time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)
	wrote := writeInputFile(t, tdir, "prices.csv", base, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count := func() int {
		var cnt int
		if err := db.QueryRow("SELECT COUNT(*) FROM ticker_prices WHERE symbol='TEST4'").Scan(&cnt); err != nil {
			t.Fatalf("count prices: %v", err)
		}
		return cnt
	}

	if err := ProcessDirectory(ctx, tdir, db, Options{Parallel: 2}); err != nil {
		t.Fatalf("ProcessDirectory: %v", err)
	}
	if cnt := count(); cnt != wrote {
		t.Fatalf("expected %d rows, got %d", wrote, cnt)
	}

	var exists bool
	if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE filename=$1)", "prices.csv").Scan(&exists); err != nil {
		t.Fatalf("check ingestion_log: %v", err)
	}
	if !exists {
		t.Fatalf("expected ingestion_log entry for prices.csv")
	}

	// second run is a no-op, forced run replaces rows
	if err := ProcessDirectory(ctx, tdir, db, Options{Parallel: 1}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if cnt := count(); cnt != wrote {
		t.Fatalf("idempotent run changed rows: %d", cnt)
	}
	if err := ProcessDirectory(ctx, tdir, db, Options{Parallel: 1, Force: true}); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if cnt := count(); cnt != wrote {
		t.Fatalf("forced run should replace rows, got %d", cnt)
	}
}
