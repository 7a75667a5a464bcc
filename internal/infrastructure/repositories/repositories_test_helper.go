package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		phone_number TEXT UNIQUE NOT NULL,
		user_name TEXT NOT NULL DEFAULT '',
		company_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		plan_type TEXT NOT NULL DEFAULT 'free',
		status TEXT NOT NULL DEFAULT 'active',
		email_verified BOOLEAN NOT NULL DEFAULT 0,
		phone_verified BOOLEAN NOT NULL DEFAULT 0,
		registration_complete BOOLEAN NOT NULL DEFAULT 0,
		google_sheet_id TEXT,
		google_sheet_url TEXT,
		preferences TEXT,
		metadata TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		last_activity DATETIME
	);`)
}

func createDocumentTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE document_processings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		message_id TEXT UNIQUE NOT NULL,
		type TEXT NOT NULL,
		filename TEXT,
		mime_type TEXT,
		file_size INTEGER,
		media_url TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		retry_count INTEGER NOT NULL DEFAULT 0,
		error_code TEXT,
		error_message TEXT,
		extraction_result TEXT,
		processed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
