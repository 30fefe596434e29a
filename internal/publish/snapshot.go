package publish

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"StockBoard/internal/model"

	"github.com/shopspring/decimal"
)

// Snapshot is the JSON form of one run's rows.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Quotes      []SnapshotRow `json:"quotes"`
}

// SnapshotRow mirrors model.QuoteRow with null-aware JSON fields.
type SnapshotRow struct {
	Symbol        string              `json:"symbol"`
	Name          string              `json:"name"`
	Currency      string              `json:"currency,omitempty"`
	Price         decimal.NullDecimal `json:"price"`
	Change        decimal.NullDecimal `json:"change"`
	ChangePercent decimal.NullDecimal `json:"change_percent"`
	Volume        *int64              `json:"volume"`
	MarketCap     decimal.NullDecimal `json:"market_cap"`
	Status        model.QuoteStatus   `json:"status"`
	Error         string              `json:"error,omitempty"`

	Fundamentals *SnapshotFundamentals `json:"fundamentals,omitempty"`
	Magic        *SnapshotMagic        `json:"magic_formula,omitempty"`
}

type SnapshotFundamentals struct {
	Sector             string              `json:"sector,omitempty"`
	Industry           string              `json:"industry,omitempty"`
	PE                 decimal.NullDecimal `json:"pe"`
	DividendYield      decimal.NullDecimal `json:"dividend_yield"`
	EBIT               decimal.NullDecimal `json:"ebit"`
	EnterpriseValue    decimal.NullDecimal `json:"enterprise_value"`
	CurrentAssets      decimal.NullDecimal `json:"current_assets"`
	CurrentLiabilities decimal.NullDecimal `json:"current_liabilities"`
	NetFixedAssets     decimal.NullDecimal `json:"net_fixed_assets"`
}

// SnapshotMagic holds the Magic Formula rank sums; nil ranks mean the row was outside that universe.
type SnapshotMagic struct {
	Score   *int64 `json:"score"`
	All     *int64 `json:"all"`
	Min100M *int64 `json:"min_100m"`
	Min500M *int64 `json:"min_500m"`
	Min1B   *int64 `json:"min_1b"`
	Min5B   *int64 `json:"min_5b"`
	Reason  string `json:"reason"`
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// SnapshotRows converts rows to their JSON form.
func SnapshotRows(rows []model.QuoteRow) []SnapshotRow {
	out := make([]SnapshotRow, len(rows))
	for i, r := range rows {
		s := SnapshotRow{
			Symbol:        r.Symbol,
			Name:          r.Name,
			Currency:      r.Currency,
			Price:         r.Price,
			Change:        r.Change,
			ChangePercent: r.ChangePercent,
			MarketCap:     r.MarketCap,
			Status:        r.Status,
			Error:         r.Error,
		}
		s.Volume = nullInt(r.Volume)
		if f := r.Fundamentals; !f.Empty() {
			s.Fundamentals = &SnapshotFundamentals{
				Sector:             f.Sector,
				Industry:           f.Industry,
				PE:                 f.PE,
				DividendYield:      f.DividendYield,
				EBIT:               f.EBIT,
				EnterpriseValue:    f.EnterpriseValue,
				CurrentAssets:      f.CurrentAssets,
				CurrentLiabilities: f.CurrentLiabilities,
				NetFixedAssets:     f.NetFixedAssets,
			}
		}
		if m := r.Magic; m.Reason != "" {
			s.Magic = &SnapshotMagic{
				Score:   nullInt(m.Score),
				All:     nullInt(m.All),
				Min100M: nullInt(m.Min100M),
				Min500M: nullInt(m.Min500M),
				Min1B:   nullInt(m.Min1B),
				Min5B:   nullInt(m.Min5B),
				Reason:  m.Reason,
			}
		}
		out[i] = s
	}
	return out
}

// WriteSnapshot stores rows as indented JSON at path.
func WriteSnapshot(path string, rows []model.QuoteRow, generatedAt time.Time) error {
	snap := Snapshot{GeneratedAt: generatedAt, Quotes: SnapshotRows(rows)}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return WriteFile(path, data)
}

// LoadSnapshot reads a snapshot written by WriteSnapshot. A missing file yields an empty snapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}
