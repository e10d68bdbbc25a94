package repository

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, testDBSeq.Add(1))

	db, err := gorm.Open(SQLiteDialector(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func newSQLiteRepo(t *testing.T) TaskRepository {
	repo := NewSQLiteTaskRepository(setupTestDB(t))
	if err := repo.Migrate(); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return repo
}

func TestSQLiteTaskRepository(t *testing.T) {
	runRepositoryContract(t, newSQLiteRepo)
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"plain":  "plain",
		"50%":    `50\%`,
		"a_b":    `a\_b`,
		`back\`:  `back\\`,
		`%_\mix`: `\%\_\\mix`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
