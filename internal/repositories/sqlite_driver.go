package repository

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteDriverName is the go-sqlite3 driver with the functions the task
// queries rely on. SQLite's built-in LOWER only folds ASCII.
const SQLiteDriverName = "sqlite3_tasks"

func init() {
	sql.Register(SQLiteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

// SQLiteDialector opens dsn through SQLiteDriverName.
func SQLiteDialector(dsn string) gorm.Dialector {
	return sqlite.New(sqlite.Config{
		DriverName: SQLiteDriverName,
		DSN:        dsn,
	})
}
