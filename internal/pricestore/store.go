// Package pricestore persists fetched daily closes in the local SQLite
// cache so repeated analytics requests for the same symbols do not refetch
// from the upstream provider.
package pricestore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rvallee/portfolio-analytics/internal/apperrors"
	"github.com/rvallee/portfolio-analytics/internal/model"
)

const dateLayout = "2006-01-02"

// Store provides data access methods for the price_history and
// symbol_coverage tables.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a new Store with the provided database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// SetClock replaces the store's time source. Tests use this to pin the
// coverage update timestamp.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Coverage describes the contiguous window of history cached for a symbol.
type Coverage struct {
	Symbol    string
	FirstDate time.Time
	LastDate  time.Time
	UpdatedAt time.Time
}

// SavePoints upserts a batch of price points for a symbol and records the
// symbol's coverage window. Coverage widens only when the batch overlaps
// or abuts the window already stored; a disjoint batch resets coverage to
// its own bounds, because a widened window would claim dates the
// price_history table does not hold and serve them back as a silent hole.
// An empty batch is a no-op.
func (s *Store) SavePoints(symbol string, points []model.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO price_history (symbol, date, close)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET close = excluded.close
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	first := model.Day(points[0].Date)
	last := first
	for _, p := range points {
		day := model.Day(p.Date)
		if _, err := stmt.Exec(symbol, day.Format(dateLayout), p.Close); err != nil {
			return fmt.Errorf("failed to upsert price for %s: %w", symbol, err)
		}
		if day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}

	coverageFirst, coverageLast := first, last
	var existingFirstStr, existingLastStr string
	err = tx.QueryRow(`
		SELECT first_date, last_date
		FROM symbol_coverage
		WHERE symbol = ?
	`, symbol).Scan(&existingFirstStr, &existingLastStr)
	switch {
	case err == sql.ErrNoRows:
		// First batch for the symbol.
	case err != nil:
		return fmt.Errorf("failed to read coverage for %s: %w", symbol, err)
	default:
		existingFirst, parseErr := time.ParseInLocation(dateLayout, existingFirstStr, time.UTC)
		if parseErr != nil {
			return fmt.Errorf("failed to parse coverage first date: %w", parseErr)
		}
		existingLast, parseErr := time.ParseInLocation(dateLayout, existingLastStr, time.UTC)
		if parseErr != nil {
			return fmt.Errorf("failed to parse coverage last date: %w", parseErr)
		}
		if contiguous(first, last, existingFirst, existingLast) {
			if existingFirst.Before(coverageFirst) {
				coverageFirst = existingFirst
			}
			if existingLast.After(coverageLast) {
				coverageLast = existingLast
			}
		}
	}

	_, err = tx.Exec(`
		INSERT INTO symbol_coverage (symbol, first_date, last_date, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			first_date = excluded.first_date,
			last_date = excluded.last_date,
			updated_at = excluded.updated_at
	`, symbol, coverageFirst.Format(dateLayout), coverageLast.Format(dateLayout), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to update coverage for %s: %w", symbol, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price batch: %w", err)
	}
	return nil
}

// contiguous reports whether two date windows overlap or abut by one
// calendar day, so their union holds no calendar date absent from both.
func contiguous(aFirst, aLast, bFirst, bLast time.Time) bool {
	return !aFirst.After(bLast.AddDate(0, 0, 1)) && !aLast.Before(bFirst.AddDate(0, 0, -1))
}

// Points retrieves the cached price points for a symbol inside the given
// window, oldest first. Returns an empty slice when nothing is cached.
func (s *Store) Points(symbol string, start, end time.Time) ([]model.PricePoint, error) {
	rows, err := s.db.Query(`
		SELECT date, close
		FROM price_history
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, symbol, model.Day(start).Format(dateLayout), model.Day(end).Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query price history for %s: %w", symbol, err)
	}
	defer rows.Close()

	points := []model.PricePoint{}
	for rows.Next() {
		var dateStr string
		var close float64
		if err := rows.Scan(&dateStr, &close); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		date, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cached date %q: %w", dateStr, err)
		}
		points = append(points, model.PricePoint{Date: date, Close: close})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price rows: %w", err)
	}
	return points, nil
}

// GetCoverage returns the coverage window for a symbol, or
// apperrors.ErrNotCached when the symbol has never been stored.
func (s *Store) GetCoverage(symbol string) (Coverage, error) {
	var c Coverage
	var firstStr, lastStr, updatedStr string

	err := s.db.QueryRow(`
		SELECT symbol, first_date, last_date, updated_at
		FROM symbol_coverage
		WHERE symbol = ?
	`, symbol).Scan(&c.Symbol, &firstStr, &lastStr, &updatedStr)
	if err == sql.ErrNoRows {
		return Coverage{}, fmt.Errorf("%s: %w", symbol, apperrors.ErrNotCached)
	}
	if err != nil {
		return Coverage{}, fmt.Errorf("failed to query coverage for %s: %w", symbol, err)
	}

	if c.FirstDate, err = time.ParseInLocation(dateLayout, firstStr, time.UTC); err != nil {
		return Coverage{}, fmt.Errorf("failed to parse coverage first date: %w", err)
	}
	if c.LastDate, err = time.ParseInLocation(dateLayout, lastStr, time.UTC); err != nil {
		return Coverage{}, fmt.Errorf("failed to parse coverage last date: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return Coverage{}, fmt.Errorf("failed to parse coverage updated_at: %w", err)
	}
	return c, nil
}

// TrackedSymbols lists every symbol with cached history, for the
// scheduled refresh job.
func (s *Store) TrackedSymbols() ([]string, error) {
	rows, err := s.db.Query(`SELECT symbol FROM symbol_coverage ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked symbols: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate symbols: %w", err)
	}
	return symbols, nil
}
