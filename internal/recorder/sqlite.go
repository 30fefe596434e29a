package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"StockBoard/internal/calculator"
	"StockBoard/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the preview server read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			started_ms   INTEGER NOT NULL,
			finished_ms  INTEGER NOT NULL,
			source       TEXT,
			output_path  TEXT,
			total        INTEGER,
			succeeded    INTEGER,
			failed       INTEGER,
			advancers    INTEGER,
			decliners    INTEGER,
			unchanged    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_ms)`,

		`CREATE TABLE IF NOT EXISTS quotes (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(id),
			position       INTEGER NOT NULL,
			symbol         TEXT NOT NULL,
			name           TEXT,
			currency       TEXT,
			price          TEXT,
			change         TEXT,
			change_percent TEXT,
			volume         INTEGER,
			market_cap     TEXT,
			status         TEXT NOT NULL,
			error          TEXT,
			fetched_ms     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quotes_run ON quotes(run_id, position)`,

		`CREATE TABLE IF NOT EXISTS quote_fundamentals (
			run_id              TEXT NOT NULL REFERENCES runs(id),
			position            INTEGER NOT NULL,
			sector              TEXT,
			industry            TEXT,
			pe                  TEXT,
			dividend_yield      TEXT,
			ebit                TEXT,
			enterprise_value    TEXT,
			current_assets      TEXT,
			current_liabilities TEXT,
			net_fixed_assets    TEXT,
			magic_score         INTEGER,
			magic_all           INTEGER,
			magic_100m          INTEGER,
			magic_500m          INTEGER,
			magic_1b            INTEGER,
			magic_5b            INTEGER,
			magic_reason        TEXT,
			PRIMARY KEY (run_id, position)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the summary and every row in one transaction. An empty
// summary ID is filled with a new UUID.
func (r *SQLiteRecorder) RecordRun(summary *model.RunSummary, rows []model.QuoteRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs
		(id, started_ms, finished_ms, source, output_path,
		 total, succeeded, failed, advancers, decliners, unchanged)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		summary.ID, summary.StartedAt.UnixMilli(), summary.FinishedAt.UnixMilli(),
		summary.Source, summary.OutputPath,
		summary.Total, summary.Succeeded, summary.Failed,
		summary.Advancers, summary.Decliners, summary.Unchanged,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO quotes
		(run_id, position, symbol, name, currency, price, change, change_percent,
		 volume, market_cap, status, error, fetched_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare quote insert: %w", err)
	}
	defer stmt.Close()

	fundStmt, err := tx.Prepare(`INSERT INTO quote_fundamentals
		(run_id, position, sector, industry, pe, dividend_yield, ebit, enterprise_value,
		 current_assets, current_liabilities, net_fixed_assets,
		 magic_score, magic_all, magic_100m, magic_500m, magic_1b, magic_5b, magic_reason)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare fundamentals insert: %w", err)
	}
	defer fundStmt.Close()

	for i, q := range rows {
		if _, err := stmt.Exec(
			summary.ID, i, q.Symbol, q.Name, q.Currency,
			q.Price, q.Change, q.ChangePercent, q.Volume, q.MarketCap,
			string(q.Status), q.Error, q.FetchedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("insert quote %s: %w", q.Symbol, err)
		}

		f, m := q.Fundamentals, q.Magic
		if f.Empty() && m.Reason == "" {
			continue
		}
		if _, err := fundStmt.Exec(
			summary.ID, i, f.Sector, f.Industry, f.PE, f.DividendYield, f.EBIT, f.EnterpriseValue,
			f.CurrentAssets, f.CurrentLiabilities, f.NetFixedAssets,
			m.Score, m.All, m.Min100M, m.Min500M, m.Min1B, m.Min5B, m.Reason,
		); err != nil {
			return fmt.Errorf("insert fundamentals %s: %w", q.Symbol, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first, each with its top movers.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]model.RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, started_ms, finished_ms, source, output_path,
		total, succeeded, failed, advancers, decliners, unchanged
		FROM runs ORDER BY started_ms DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []model.RunRecord
	for rows.Next() {
		var (
			s                   model.RunSummary
			startedMs, finishMs int64
		)
		if err := rows.Scan(&s.ID, &startedMs, &finishMs, &s.Source, &s.OutputPath,
			&s.Total, &s.Succeeded, &s.Failed, &s.Advancers, &s.Decliners, &s.Unchanged); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.UnixMilli(startedMs)
		s.FinishedAt = time.UnixMilli(finishMs)
		records = append(records, model.RunRecord{Summary: s})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range records {
		quotes, err := r.runQuotes(records[i].Summary.ID)
		if err != nil {
			return nil, err
		}
		records[i].Gainers, records[i].Losers = calculator.TopMovers(quotes, moversPerRun)
	}
	return records, nil
}

// RunQuotes returns the rows stored for a run in fetch order.
func (r *SQLiteRecorder) RunQuotes(runID string) ([]model.QuoteRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runQuotes(runID)
}

func (r *SQLiteRecorder) runQuotes(runID string) ([]model.QuoteRow, error) {
	rows, err := r.db.Query(`SELECT q.symbol, q.name, q.currency, q.price, q.change, q.change_percent,
		q.volume, q.market_cap, q.status, q.error, q.fetched_ms,
		f.sector, f.industry, f.pe, f.dividend_yield, f.ebit, f.enterprise_value,
		f.current_assets, f.current_liabilities, f.net_fixed_assets,
		f.magic_score, f.magic_all, f.magic_100m, f.magic_500m, f.magic_1b, f.magic_5b, f.magic_reason
		FROM quotes q
		LEFT JOIN quote_fundamentals f ON f.run_id = q.run_id AND f.position = q.position
		WHERE q.run_id = ? ORDER BY q.position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var out []model.QuoteRow
	for rows.Next() {
		var (
			q                        model.QuoteRow
			status                   string
			fetchedMs                int64
			sector, industry, reason sql.NullString
		)
		f, m := &q.Fundamentals, &q.Magic
		if err := rows.Scan(&q.Symbol, &q.Name, &q.Currency, &q.Price, &q.Change, &q.ChangePercent,
			&q.Volume, &q.MarketCap, &status, &q.Error, &fetchedMs,
			&sector, &industry, &f.PE, &f.DividendYield, &f.EBIT, &f.EnterpriseValue,
			&f.CurrentAssets, &f.CurrentLiabilities, &f.NetFixedAssets,
			&m.Score, &m.All, &m.Min100M, &m.Min500M, &m.Min1B, &m.Min5B, &reason); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		f.Sector, f.Industry, m.Reason = sector.String, industry.String, reason.String
		q.Status = model.QuoteStatus(status)
		q.FetchedAt = time.UnixMilli(fetchedMs)
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
