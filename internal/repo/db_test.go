package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/pedidos-backend/internal/domain"
)

// newTestDB opens a unique in-memory database per test with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestOpenSQLite_ErrorOnBadPath(t *testing.T) {
	base := t.TempDir()
	bad := filepath.Join(base, "does-not-exist", "app.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}
	lower := strings.ToLower(err.Error())
	if !(os.IsNotExist(err) ||
		strings.Contains(lower, "unable to open database file") ||
		strings.Contains(lower, "no such file or directory")) {
		t.Fatalf("unexpected error opening %q: %v", bad, err)
	}
}

func TestOpen_SQLite_PragmasPoolAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	db, err := Open(DriverSQLite, path, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	var fkOn, busyMS int
	var journal string
	if err := db.Raw("PRAGMA foreign_keys;").Row().Scan(&fkOn); err != nil || fkOn != 1 {
		t.Fatalf("foreign_keys = %d err=%v; want 1", fkOn, err)
	}
	if err := db.Raw("PRAGMA busy_timeout;").Row().Scan(&busyMS); err != nil || busyMS != 5000 {
		t.Fatalf("busy_timeout = %d err=%v; want 5000", busyMS, err)
	}
	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&journal); err != nil || strings.ToLower(journal) != "wal" {
		t.Fatalf("journal_mode = %q err=%v; want wal", journal, err)
	}
	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 10 {
		t.Fatalf("expected MaxOpenConnections=10, got %d", stats.MaxOpenConnections)
	}
	if !IsSQLite(db) {
		t.Fatalf("IsSQLite should be true")
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range []any{&domain.User{}, &domain.Order{}, &domain.HistoryEntry{}, &domain.NotificationRecord{},
		&domain.RefreshToken{}, &domain.MessageLog{}, &domain.OrderComment{}, &domain.OrderImage{},
		&domain.SavedFilter{}, &domain.Idempotency{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	o := &domain.Order{ExternalUserID: 1, ExternalMsgID: 1, ItemSummary: "pan"}
	if err := CreateOrder(context.Background(), db, o); err != nil || o.ID == 0 {
		t.Fatalf("insert order: id=%d err=%v", o.ID, err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("oracle", "x", false); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestOpen_DriverNameIsCaseInsensitive(t *testing.T) {
	for _, in := range []string{"Postgres", " POSTGRES ", "MySQL"} {
		if got := NormalizeDriver(in); got != DriverPostgres && got != DriverMySQL {
			t.Fatalf("NormalizeDriver(%q) = %q", in, got)
		}
	}

	db, err := Open(" SQLite", filepath.Join(t.TempDir(), "app.db"), false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	tunePool(db)
	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 25 {
		t.Fatalf("expected MaxOpenConnections=25 after tunePool, got %d", stats.MaxOpenConnections)
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN("app.db"); !strings.HasPrefix(got, "app.db?_pragma=foreign_keys(1)") {
		t.Fatalf("sqliteDSN(app.db) = %q", got)
	}
	if got := sqliteDSN("file:x?mode=memory"); !strings.HasPrefix(got, "file:x?mode=memory&_pragma=") {
		t.Fatalf("sqliteDSN with query = %q", got)
	}
}

// Compile-time guard to ensure signature stability.
var _ func(string) (*gorm.DB, error) = OpenSQLite
