// Package storage provides byte-addressed durable storage for the preset
// selection. Cells that were never written read as 0xFF, like erased
// EEPROM.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Erased is the value of a cell that has never been written.
const Erased byte = 0xFF

// SQLite keeps cells in a SQLite table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s, err := NewSQLite(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite initializes the schema in db.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cells (
			addr INTEGER PRIMARY KEY,
			value INTEGER NOT NULL
		);`,
	)
	return err
}

// LoadByte returns the cell at addr.
func (s *SQLite) LoadByte(addr uint8) (byte, error) {
	var v int
	err := s.db.QueryRow(`SELECT value FROM cells WHERE addr = ?`, int(addr)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return Erased, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load cell %d: %w", addr, err)
	}
	return byte(v), nil
}

// StoreByte writes the cell at addr.
func (s *SQLite) StoreByte(addr uint8, b byte) error {
	_, err := s.db.Exec(`
		INSERT INTO cells (addr, value) VALUES (?, ?)
		ON CONFLICT(addr) DO UPDATE SET value = excluded.value`,
		int(addr), int(b),
	)
	if err != nil {
		return fmt.Errorf("store cell %d: %w", addr, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Memory keeps cells in memory. Used when no database path is configured
// and in tests.
type Memory struct {
	cells map[uint8]byte

	// Stores counts StoreByte calls.
	Stores int

	// LoadError and StoreError, if set, are returned by the matching call.
	LoadError  error
	StoreError error
}

// NewMemory creates an erased store.
func NewMemory() *Memory {
	return &Memory{cells: make(map[uint8]byte)}
}

// LoadByte returns the cell at addr.
func (m *Memory) LoadByte(addr uint8) (byte, error) {
	if m.LoadError != nil {
		return 0, m.LoadError
	}
	if v, ok := m.cells[addr]; ok {
		return v, nil
	}
	return Erased, nil
}

// StoreByte writes the cell at addr.
func (m *Memory) StoreByte(addr uint8, b byte) error {
	if m.StoreError != nil {
		return m.StoreError
	}
	m.Stores++
	m.cells[addr] = b
	return nil
}

// Close does nothing.
func (m *Memory) Close() error { return nil }
