package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRunMigrations_InvalidDirection(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	err = RunMigrations(sqlDB, "sideways")
	if err == nil || !strings.Contains(err.Error(), "invalid migration direction") {
		t.Errorf("RunMigrations(sideways) error = %v", err)
	}
}

func TestMigrationsFS_PairsUpAndDown(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no embedded migrations")
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}
	for base := range ups {
		if !downs[base] {
			t.Errorf("migration %s has no down file", base)
		}
	}
	for base := range downs {
		if !ups[base] {
			t.Errorf("migration %s has no up file", base)
		}
	}
}

func TestWrap_SharesPool(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	x := Wrap(sqlDB)
	if x.DB != sqlDB {
		t.Error("Wrap() did not reuse the given *sql.DB")
	}
	if x.DriverName() != "postgres" {
		t.Errorf("DriverName() = %q, want postgres", x.DriverName())
	}

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	var n int
	if err := x.Get(&n, "SELECT 1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
}
