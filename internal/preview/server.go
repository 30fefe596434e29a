package preview

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"StockBoard/internal/model"
	"StockBoard/internal/publish"

	"github.com/gin-gonic/gin"
)

const maxRunsLimit = 365

// RunStore is the read side of the run recorder.
type RunStore interface {
	RecentRuns(limit int) ([]model.RunRecord, error)
	RunQuotes(runID string) ([]model.QuoteRow, error)
}

// Paths locates the generated files to serve.
type Paths struct {
	HTML     string
	History  string
	Snapshot string
}

// Handler serves the generated pages and the run history API.
type Handler struct {
	store RunStore
	paths Paths
}

func NewHandler(store RunStore, paths Paths) *Handler {
	return &Handler{store: store, paths: paths}
}

// NewRouter wires all preview routes onto a fresh gin engine.
func NewRouter(store RunStore, paths Paths) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h := NewHandler(store, paths)
	r.GET("/", h.servePage(paths.HTML))
	r.GET("/index.html", h.servePage(paths.HTML))
	r.GET("/history.html", h.servePage(paths.History))
	r.GET("/api/quotes", h.GetLatestQuotes)
	r.GET("/api/runs", h.GetRuns)
	r.GET("/api/runs/:id/quotes", h.GetRunQuotes)
	r.GET("/healthz", h.GetHealth)
	return r
}

func (h *Handler) servePage(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if path == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not configured"})
			return
		}
		if _, err := os.Stat(path); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not generated yet"})
			return
		}
		c.File(path)
	}
}

type runResponse struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Source     string        `json:"source"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	Advancers  int           `json:"advancers"`
	Decliners  int           `json:"decliners"`
	Unchanged  int           `json:"unchanged"`
	Gainers    []moverResult `json:"gainers"`
	Losers     []moverResult `json:"losers"`
}

type moverResult struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	ChangePercent float64 `json:"change_percent"`
}

func toMovers(ms []model.Mover) []moverResult {
	out := make([]moverResult, len(ms))
	for i, m := range ms {
		out[i] = moverResult{Symbol: m.Symbol, Name: m.Name, ChangePercent: m.ChangePercent}
	}
	return out
}

// GetRuns lists recent runs, newest first. ?limit= defaults to 10.
func (h *Handler) GetRuns(c *gin.Context) {
	limit := 10
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxRunsLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	runs, err := h.store.RecentRuns(limit)
	if err != nil {
		log.Printf("[ERROR] preview: load runs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	res := make([]runResponse, 0, len(runs))
	for _, r := range runs {
		s := r.Summary
		res = append(res, runResponse{
			ID: s.ID, StartedAt: s.StartedAt, FinishedAt: s.FinishedAt, Source: s.Source,
			Total: s.Total, Succeeded: s.Succeeded, Failed: s.Failed,
			Advancers: s.Advancers, Decliners: s.Decliners, Unchanged: s.Unchanged,
			Gainers: toMovers(r.Gainers), Losers: toMovers(r.Losers),
		})
	}
	c.JSON(http.StatusOK, gin.H{"runs": res})
}

// GetRunQuotes returns every stored row of one run.
func (h *Handler) GetRunQuotes(c *gin.Context) {
	id := c.Param("id")
	rows, err := h.store.RunQuotes(id)
	if err != nil {
		log.Printf("[ERROR] preview: load quotes for %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": id, "quotes": publish.SnapshotRows(rows)})
}

// GetLatestQuotes serves the JSON snapshot written by the last run.
func (h *Handler) GetLatestQuotes(c *gin.Context) {
	if h.paths.Snapshot == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Snapshot not configured"})
		return
	}
	snap, err := publish.LoadSnapshot(h.paths.Snapshot)
	if err != nil {
		log.Printf("[ERROR] preview: load snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Snapshot unreadable"})
		return
	}
	if snap.GeneratedAt.IsZero() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Page not generated yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) GetHealth(c *gin.Context) {
	if _, err := h.store.RecentRuns(1); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Serve runs the preview server until it fails.
func Serve(addr string, store RunStore, paths Paths) error {
	gin.SetMode(gin.ReleaseMode)
	log.Printf("[INFO] preview server listening on %s", addr)
	err := NewRouter(store, paths).Run(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
