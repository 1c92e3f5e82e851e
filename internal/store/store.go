// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/fieldreport/sentinel/internal/config"
	"github.com/fieldreport/sentinel/internal/logging"
)

// DB wraps a DuckDB connection and provides the event store's data access
// methods: source/article/event/event-group persistence, spatial queries,
// and search-query auditing.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	spatialAvailable bool
	icuAvailable     bool
	jsonAvailable    bool

	stmtCache   map[string]*sql.Stmt
	stmtCacheMu sync.RWMutex
}

// New opens the DuckDB connection at cfg.Path, installs required
// extensions, and creates/migrates the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	if dbDir := filepath.Dir(cfg.Path); dbDir != "" && dbDir != "." && cfg.Path != ":memory:" {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dbDir, err)
		}
	}

	memLimit := cfg.MemoryLimit
	if memLimit == "" {
		memLimit = "2GB"
	}
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, memLimit)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{
		conn:             conn,
		cfg:              cfg,
		spatialAvailable: cfg.EnableSpatial,
		icuAvailable:     cfg.EnableICU,
		jsonAvailable:    cfg.EnableJSON,
		stmtCache:        make(map[string]*sql.Stmt),
	}

	if err := db.configureConnectionPool(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("configure connection pool: %w", err)
	}

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return db, nil
}

func (db *DB) IsSpatialAvailable() bool { return db.spatialAvailable }
func (db *DB) IsICUAvailable() bool     { return db.icuAvailable }
func (db *DB) IsJSONAvailable() bool    { return db.jsonAvailable }

// Conn returns the underlying *sql.DB for callers that need direct access
// (migration tooling, ad-hoc CLI queries).
func (db *DB) Conn() *sql.DB { return db.conn }

// Close flushes the WAL with a checkpoint and closes the connection and any
// cached prepared statements.
func (db *DB) Close() error {
	db.stmtCacheMu.Lock()
	for _, stmt := range db.stmtCache {
		if stmt != nil {
			closeWithLog(stmt, nil, "prepared statement")
		}
	}
	db.stmtCache = make(map[string]*sql.Stmt)
	db.stmtCacheMu.Unlock()

	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("failed to checkpoint database before close")
	}
	return db.conn.Close()
}

// Ping checks that the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint forces DuckDB to flush its WAL to the main database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, "CHECKPOINT;")
	return err
}

func (db *DB) initialize() error {
	if err := db.installExtensions(); err != nil {
		return err
	}
	if err := db.createTables(); err != nil {
		return err
	}
	if err := db.runVersionedMigrations(); err != nil {
		return err
	}
	if err := db.createIndexes(); err != nil {
		return err
	}
	if err := db.initializeSpatialIndexes(); err != nil {
		logging.Warn().Err(err).Msg("spatial index initialization had issues")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("failed to checkpoint after schema initialization")
	}
	return nil
}
