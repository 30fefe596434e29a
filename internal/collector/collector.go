package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"StockBoard/internal/calculator"
	"StockBoard/internal/model"

	"github.com/shopspring/decimal"
)

// Collector fetches quotes one symbol at a time with a fixed pause between queries.
type Collector struct {
	Fetcher Fetcher
	Delay   time.Duration
	Now     func() time.Time

	sleep func(context.Context, time.Duration) error
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, delay time.Duration) *Collector {
	return &Collector{Fetcher: fetcher, Delay: delay, Now: time.Now, sleep: sleepCtx}
}

// Collect returns exactly one row per ticker in input order.
// A failed fetch becomes an error row and never stops the batch. Once ctx is
// cancelled the remaining tickers are emitted as error rows without querying.
func (c *Collector) Collect(ctx context.Context, tickers []model.Ticker) []model.QuoteRow {
	rows := make([]model.QuoteRow, 0, len(tickers))
	failed := 0
	for i, t := range tickers {
		if i > 0 && c.Delay > 0 {
			if err := c.pause(ctx); err != nil {
				log.Printf("[WARN] collection interrupted after %d/%d symbols", i, len(tickers))
			}
		}
		if err := ctx.Err(); err != nil {
			rows = append(rows, model.ErrorRow(t, err, c.now()))
			failed++
			continue
		}

		row := c.fetchOne(ctx, t)
		if !row.OK() {
			failed++
			log.Printf("[WARN] [%d/%d] %s: %s", i+1, len(tickers), t.Symbol, row.Error)
		} else {
			log.Printf("[INFO] [%d/%d] %s: %s", i+1, len(tickers), t.Symbol, row.Price.Decimal.StringFixed(2))
		}
		rows = append(rows, row)
	}
	log.Printf("[INFO] collected %d quotes via %s, %d failed", len(rows), c.Fetcher.Name(), failed)
	return rows
}

func (c *Collector) fetchOne(ctx context.Context, t model.Ticker) model.QuoteRow {
	q, err := c.Fetcher.FetchQuote(ctx, t.Symbol)
	if err != nil {
		return model.ErrorRow(t, err, c.now())
	}
	row, err := BuildRow(t, q, c.now())
	if err != nil {
		return model.ErrorRow(t, err, c.now())
	}
	return row
}

// BuildRow converts a provider quote into a row. A quote with neither price nor
// market cap is treated as missing.
func BuildRow(t model.Ticker, q *model.Quote, at time.Time) (model.QuoteRow, error) {
	if q == nil || (q.Price == 0 && q.MarketCap == 0) {
		return model.QuoteRow{}, fmt.Errorf("%s: %w", t.Symbol, ErrNoQuote)
	}

	name := q.Name
	if name == "" {
		name = t.Name
	}
	row := model.QuoteRow{
		Symbol:    t.Symbol,
		Name:      name,
		Currency:  q.Currency,
		Price:     calculator.Nullable(q.Price, 2),
		MarketCap: calculator.Nullable(q.MarketCap, 0),
		Status:    model.StatusSuccess,
		FetchedAt: at,
	}
	if q.Volume > 0 {
		row.Volume.Int64, row.Volume.Valid = q.Volume, true
	}
	if q.Fundamentals != nil {
		row.Fundamentals = *q.Fundamentals
	}

	switch {
	case q.HasChange:
		row.Change = decimal.NewNullDecimal(decimal.NewFromFloat(q.Change).Round(2))
		row.ChangePercent = decimal.NewNullDecimal(decimal.NewFromFloat(q.ChangePercent).Round(2))
	case q.Price != 0 && q.PreviousClose > 0:
		change, pct, err := calculator.ChangeFromClose(decimal.NewFromFloat(q.Price), decimal.NewFromFloat(q.PreviousClose))
		if err == nil {
			row.Change = decimal.NewNullDecimal(change)
			row.ChangePercent = decimal.NewNullDecimal(pct)
		}
	}
	return row, nil
}

func (c *Collector) pause(ctx context.Context) error {
	if c.sleep == nil {
		return sleepCtx(ctx, c.Delay)
	}
	return c.sleep(ctx, c.Delay)
}

func (c *Collector) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
