package pipeline

import (
	"context"
	"errors"
	"html"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"StockBoard/internal/calculator"
	"StockBoard/internal/collector"
	"StockBoard/internal/model"
	"StockBoard/internal/publish"
	"StockBoard/internal/recorder"
	"StockBoard/internal/render"
	"StockBoard/internal/tickers"

	"github.com/shopspring/decimal"
)

type failingSource struct{}

func (failingSource) Name() string { return "down" }
func (failingSource) Constituents(context.Context, string) ([]model.Ticker, error) {
	return nil, errors.New("connection refused")
}

type staticTickers []model.Ticker

func (s staticTickers) Enumerate(context.Context) []model.Ticker { return s }

func newRunner(t *testing.T, src TickerSource, f collector.Fetcher, rec recorder.Recorder) (*Runner, string) {
	t.Helper()
	dir := t.TempDir()
	rnd, err := render.New("Test", "sv")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	at := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	col := collector.NewCollector(f, 0)
	col.Now = func() time.Time { return at }
	return &Runner{
		Tickers:      src,
		Collector:    col,
		Renderer:     rnd,
		Recorder:     rec,
		HTMLPath:     filepath.Join(dir, "public", "index.html"),
		HistoryPath:  filepath.Join(dir, "public", "history.html"),
		SnapshotPath: filepath.Join(dir, "data", "current.json"),
		Now:          func() time.Time { return at },
	}, dir
}

func TestRun_WritesPageWithErrorRows(t *testing.T) {
	f := &collector.MockFetcher{
		Quotes: map[string]model.Quote{"AAA": {Name: "Alpha", Price: 100.50, ChangePercent: 1.2, Change: 1.19, HasChange: true}},
		Errors: map[string]error{"BBB": errors.New("timeout")},
	}
	r, _ := newRunner(t, staticTickers{{Symbol: "AAA"}, {Symbol: "BBB"}}, f, recorder.NewNoopRecorder())

	rec, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	s := rec.Summary
	if s.Total != 2 || s.Succeeded != 1 || s.Failed != 1 || s.Source != "mock" || s.ID == "" {
		t.Errorf("summary = %+v", s)
	}
	if len(rec.Gainers) != 1 || rec.Gainers[0].Symbol != "AAA" {
		t.Errorf("gainers = %+v", rec.Gainers)
	}

	page, err := os.ReadFile(r.HTMLPath)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	text := html.UnescapeString(string(page))
	if !strings.Contains(text, "100,50") || !strings.Contains(text, `class="row-error"`) {
		t.Error("page should hold the fetched row and the error row")
	}
	if !strings.Contains(text, "+1,20 %") || !strings.Contains(text, "+1,19") {
		t.Error("positive change should be signed and use the Swedish decimal comma")
	}
	if _, err := os.Stat(r.SnapshotPath); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}
}

func TestRun_EnumeratorFallbackStillPublishes(t *testing.T) {
	f := &collector.MockFetcher{Default: &model.Quote{Price: 50, PreviousClose: 49}}
	enum := tickers.NewEnumerator(failingSource{}, []string{"large-cap", "mid-cap"})
	r, _ := newRunner(t, enum, f, recorder.NewNoopRecorder())

	rec, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.Summary.Total != len(tickers.FallbackTickers) || rec.Summary.Failed != 0 {
		t.Errorf("summary = %+v", rec.Summary)
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	dir := t.TempDir()
	sr, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "board.db"))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer sr.Close()

	f := &collector.MockFetcher{Default: &model.Quote{Price: 10, PreviousClose: 8}}
	r, _ := newRunner(t, staticTickers{{Symbol: "UP"}}, f, sr)
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	runs, err := sr.RecentRuns(5)
	if err != nil || len(runs) != 1 {
		t.Fatalf("RecentRuns = %v, %v", runs, err)
	}
	history, err := os.ReadFile(r.HistoryPath)
	if err != nil {
		t.Fatalf("history page: %v", err)
	}
	if !strings.Contains(html.UnescapeString(string(history)), "+25,00 %") {
		t.Error("history page should list the run's top mover")
	}
}

func TestRun_RanksMagicFormula(t *testing.T) {
	fund := func(ebit, ev float64) *model.Fundamentals {
		n := func(v float64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromFloat(v)) }
		return &model.Fundamentals{
			Sector:             "Industrials",
			PE:                 n(15),
			EBIT:               n(ebit),
			EnterpriseValue:    n(ev),
			NetFixedAssets:     n(500),
			CurrentAssets:      n(300),
			CurrentLiabilities: n(100),
		}
	}
	f := &collector.MockFetcher{
		Quotes: map[string]model.Quote{
			"AAA": {Name: "Alpha", Price: 10, MarketCap: 2e9, Fundamentals: fund(100, 1000)},
			"BBB": {Name: "Beta", Price: 20, MarketCap: 2e9, Fundamentals: fund(50, 1000)},
		},
		Errors: map[string]error{"CCC": errors.New("timeout")},
	}
	r, _ := newRunner(t, staticTickers{{Symbol: "AAA"}, {Symbol: "BBB"}, {Symbol: "CCC"}}, f, recorder.NewNoopRecorder())
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	snap, err := publish.LoadSnapshot(r.SnapshotPath)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	scores := map[string]string{}
	for _, q := range snap.Quotes {
		if q.Magic == nil {
			t.Fatalf("%s has no Magic Formula result", q.Symbol)
		}
		scores[q.Symbol] = q.Magic.Reason
		if q.Magic.Score != nil {
			scores[q.Symbol] = strconv.FormatInt(*q.Magic.Score, 10)
		}
	}
	if scores["AAA"] != "2" || scores["BBB"] != "4" || scores["CCC"] != calculator.MagicFailedRow {
		t.Errorf("scores = %v", scores)
	}

	page, err := os.ReadFile(r.HTMLPath)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !strings.Contains(string(page), `id="magic-variant"`) || !strings.Contains(string(page), `data-score="2"`) {
		t.Error("page should show the Magic Formula column")
	}
}

func TestRun_WriteFailureIsFatal(t *testing.T) {
	f := &collector.MockFetcher{Default: &model.Quote{Price: 1}}
	r, dir := newRunner(t, staticTickers{{Symbol: "A"}}, f, nil)

	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	r.HTMLPath = filepath.Join(blocker, "index.html")

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected write failure to be returned")
	}
}
