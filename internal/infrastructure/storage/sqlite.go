package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/hyperliquid_donchian/internal/domain"
)

// SQLiteStore journals executed trades and notable events. It is an audit
// trail only: the trading core never reads it to make decisions, so a fresh
// database on restart is harmless.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			coin TEXT NOT NULL,
			side TEXT NOT NULL,
			size REAL NOT NULL,
			entry_price REAL NOT NULL,
			stop_price REAL NOT NULL,
			take_profit_price REAL NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_coin ON trades(coin);`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			coin TEXT NOT NULL,
			detail TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// TradeRepository Implementation

func (s *SQLiteStore) SaveTrade(ctx context.Context, trade *domain.Trade) error {
	query := `INSERT INTO trades (id, coin, side, size, entry_price, stop_price, take_profit_price, status, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		trade.ID, trade.Coin, trade.Side, trade.Size, trade.EntryPrice,
		trade.StopPrice, trade.TakeProfitPrice, trade.Status, trade.CreatedAt)
	return err
}

func (s *SQLiteStore) ListTrades(ctx context.Context, limit int) ([]*domain.Trade, error) {
	query := `SELECT id, coin, side, size, entry_price, stop_price, take_profit_price, status, created_at
			  FROM trades ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		var t domain.Trade
		if err := rows.Scan(&t.ID, &t.Coin, &t.Side, &t.Size, &t.EntryPrice,
			&t.StopPrice, &t.TakeProfitPrice, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}

func (s *SQLiteStore) SaveEvent(ctx context.Context, event *domain.Event) error {
	query := `INSERT INTO events (kind, coin, detail, created_at) VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		event.Kind, event.Coin, event.Detail, event.CreatedAt)
	return err
}

func (s *SQLiteStore) ListEvents(ctx context.Context, limit int) ([]*domain.Event, error) {
	query := `SELECT id, kind, coin, detail, created_at FROM events ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.Coin, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
