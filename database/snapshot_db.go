package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"contractor/importer"
)

// keepSnapshots сколько последних снапшотов хранить
const keepSnapshots = 10

// SnapshotDB sqlite-хранилище снапшотов импорта. Снапшот сохраняется
// после каждого успешного обновления из CRM и загружается при старте,
// чтобы сервис имел данные без обращения к CRM.
type SnapshotDB struct {
	conn *sql.DB
}

// NewSnapshotDB открывает (или создает) базу по указанному пути.
// Путь ":memory:" дает базу в памяти для тестов.
func NewSnapshotDB(path string) (*SnapshotDB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}

	// Одного соединения достаточно: пишет только refresh
	conn.SetMaxOpenConns(1)

	db := &SnapshotDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *SnapshotDB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			records TEXT NOT NULL,
			errors TEXT NOT NULL,
			refreshed_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

// SaveSnapshot сохраняет снапшот и подрезает историю до keepSnapshots
func (db *SnapshotDB) SaveSnapshot(snap *importer.Snapshot) error {
	records, err := json.Marshal(snap.Records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	importErrors, err := json.Marshal(snap.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	_, err = db.conn.Exec(
		`INSERT INTO snapshots (records, errors, refreshed_at) VALUES (?, ?, ?)`,
		string(records), string(importErrors), snap.RefreshedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	_, err = db.conn.Exec(
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`,
		keepSnapshots)
	if err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// LoadLatestSnapshot возвращает последний сохраненный снапшот
// или (nil, nil), если база пуста
func (db *SnapshotDB) LoadLatestSnapshot() (*importer.Snapshot, error) {
	var records, importErrors, refreshedAt string
	err := db.conn.QueryRow(
		`SELECT records, errors, refreshed_at FROM snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&records, &importErrors, &refreshedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap := &importer.Snapshot{}
	if err := json.Unmarshal([]byte(records), &snap.Records); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	if err := json.Unmarshal([]byte(importErrors), &snap.Errors); err != nil {
		return nil, fmt.Errorf("unmarshal errors: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, refreshedAt); err == nil {
		snap.RefreshedAt = ts
	}
	return snap, nil
}

// Close закрывает соединение с базой
func (db *SnapshotDB) Close() error {
	return db.conn.Close()
}
