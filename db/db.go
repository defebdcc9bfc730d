package db

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB is the database struct.
type DB struct {
	db *sql.DB
}

// Sentinel conditions surfaced by the store. Callers map these to HTTP
// statuses; they are never wrapped in panics.
var (
	ErrPageNotFound = errors.New("page does not exist")
	ErrDuplicate    = errors.New("record already exists")
)

// Open opens (and initializes) the sqlite database at path. The returned DB
// is safe for concurrent use and is passed explicitly to every component
// that needs it.
func Open(path string) (*DB, error) {
	sqlDb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Configure connection pool for concurrent access
	sqlDb.SetMaxOpenConns(25)
	sqlDb.SetMaxIdleConns(5)
	sqlDb.SetConnMaxLifetime(time.Hour)

	// Try to enable WAL2 mode, fall back to WAL if not supported
	var journalMode string
	err = sqlDb.QueryRow("PRAGMA journal_mode=WAL2").Scan(&journalMode)
	if err != nil || journalMode == "delete" {
		err = sqlDb.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode)
		if err != nil {
			log.Printf("Warning: Failed to enable WAL mode: %v", err)
		} else {
			log.Printf("Database journal mode: %s (WAL2 not supported, using WAL)", journalMode)
		}
	} else {
		log.Printf("Database journal mode: %s", journalMode)
	}

	// Optimize PRAGMAs for the concurrent federation workload
	sqlDb.Exec("PRAGMA synchronous = NORMAL")
	sqlDb.Exec("PRAGMA cache_size = -64000")
	sqlDb.Exec("PRAGMA temp_store = MEMORY")
	sqlDb.Exec("PRAGMA busy_timeout = 5000")
	sqlDb.Exec("PRAGMA foreign_keys = ON")
	sqlDb.Exec("PRAGMA auto_vacuum = INCREMENTAL")

	database := &DB{db: sqlDb}

	if err := database.CreateDB(); err != nil {
		sqlDb.Close()
		return nil, err
	}

	return database, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.db.Close()
}

// wrapTransaction runs the given function within a transaction.
func (db *DB) wrapTransaction(f func(tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("error starting transaction: %s", err)
		return err
	}
	for {
		err = f(tx)
		if err != nil {
			serr, ok := err.(*sqlite.Error)
			if ok && serr.Code() == sqlitelib.SQLITE_BUSY {
				continue
			}
			tx.Rollback()
			return err
		}
		err = tx.Commit()
		if err != nil {
			log.Printf("error committing transaction: %s", err)
			return err
		}
		break
	}
	return nil
}

// isUniqueViolation reports whether err is a sqlite unique constraint error.
func isUniqueViolation(err error) bool {
	serr, ok := err.(*sqlite.Error)
	if !ok {
		return false
	}
	code := serr.Code()
	return code == sqlitelib.SQLITE_CONSTRAINT_UNIQUE || code == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY
}

// pageBounds translates (page, size) into a LIMIT/OFFSET pair, mapping an
// out-of-range page to ErrPageNotFound. Page 1 of an empty collection is
// valid and empty, matching the read contract of every list endpoint.
func pageBounds(total, page, size int) (limit, offset int, err error) {
	if page < 1 || size < 1 {
		return 0, 0, ErrPageNotFound
	}
	offset = (page - 1) * size
	if offset >= total && page != 1 {
		return 0, 0, ErrPageNotFound
	}
	return size, offset, nil
}
