package tickers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"StockBoard/internal/model"
)

// ErrEmptyIndex is returned when a source yields no constituents.
var ErrEmptyIndex = errors.New("index has no constituents")

// IndexSource returns the constituents of a named index.
type IndexSource interface {
	Constituents(ctx context.Context, index string) ([]model.Ticker, error)
	Name() string
}

// HTTPIndexSource reads index membership lists served as JSON under BaseURL.
// GET {BaseURL}/{index}.json must return [{"ticker": "...", "name": "..."}].
type HTTPIndexSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPIndexSource creates a source with optional proxy support.
func NewHTTPIndexSource(baseURL, proxyURL string) *HTTPIndexSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPIndexSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (s *HTTPIndexSource) Name() string { return "http" }

func (s *HTTPIndexSource) Constituents(ctx context.Context, index string) ([]model.Ticker, error) {
	endpoint := fmt.Sprintf("%s/%s.json", s.BaseURL, url.PathEscape(index))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch index %s: %w", index, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch index %s: status %d, body: %s", index, resp.StatusCode, string(body))
	}

	var list []model.Ticker
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", index, err)
	}
	list = clean(list)
	if len(list) == 0 {
		return nil, fmt.Errorf("index %s: %w", index, ErrEmptyIndex)
	}
	return list, nil
}

// FileIndexSource reads a local ticker list. The same list is returned for every index.
// Files ending in .csv are read as "ticker,name" with a header row, anything else as JSON.
type FileIndexSource struct {
	Path string
}

func (s *FileIndexSource) Name() string { return "file" }

func (s *FileIndexSource) Constituents(_ context.Context, _ string) ([]model.Ticker, error) {
	var (
		list []model.Ticker
		err  error
	)
	if strings.EqualFold(filepath.Ext(s.Path), ".csv") {
		list, err = readCSV(s.Path)
	} else {
		list, err = readJSON(s.Path)
	}
	if err != nil {
		return nil, err
	}
	list = clean(list)
	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %w", s.Path, ErrEmptyIndex)
	}
	return list, nil
}

func readJSON(path string) ([]model.Ticker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ticker file: %w", err)
	}
	var list []model.Ticker
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse ticker file: %w", err)
	}
	return list, nil
}

func readCSV(path string) ([]model.Ticker, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read ticker file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse ticker file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	list := make([]model.Ticker, 0, len(records)-1)
	for _, record := range records[1:] { // skip header
		t := model.Ticker{Symbol: record[0]}
		if len(record) > 1 {
			t.Name = record[1]
		}
		list = append(list, t)
	}
	return list, nil
}

// clean trims whitespace and drops entries without a symbol.
func clean(list []model.Ticker) []model.Ticker {
	out := list[:0]
	for _, t := range list {
		t.Symbol = strings.TrimSpace(t.Symbol)
		t.Name = strings.TrimSpace(t.Name)
		if t.Symbol == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
