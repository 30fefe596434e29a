package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"StockBoard/internal/model"
)

func TestFormatRunSummary(t *testing.T) {
	start := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	s := &model.RunSummary{
		StartedAt: start, FinishedAt: start.Add(95 * time.Second), Source: "yahoo-quote",
		Total: 40, Succeeded: 38, Failed: 2, Advancers: 20, Decliners: 15, Unchanged: 3,
		OutputPath: "public/index.html",
	}
	msg := FormatRunSummary(s,
		[]model.Mover{{Symbol: "EVO", Name: "Evolution", ChangePercent: 4.2}},
		[]model.Mover{{Symbol: "H&M", Name: "<b>", ChangePercent: -3.1}},
	)
	for _, want := range []string{"2026-03-02 17:30", "38/40", "2 failed", "▲20 ▼15", "1m35s", "EVO Evolution +4.20%", "H&amp;M &lt;b&gt; -3.10%", "public/index.html"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	clean := FormatRunSummary(&model.RunSummary{StartedAt: start, Total: 1, Succeeded: 1}, nil, nil)
	if strings.Contains(clean, "failed") || strings.Contains(clean, "Top") {
		t.Errorf("unexpected sections:\n%s", clean)
	}
}

func TestFormatRunFailure(t *testing.T) {
	msg := FormatRunFailure(errors.New("write public/index.html: <denied>"))
	if !strings.Contains(msg, "&lt;denied&gt;") {
		t.Errorf("error text must be escaped: %s", msg)
	}
}

func TestSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken/sendMessage" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	if err := n.Send("hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["chat_id"] != "42" || got["text"] != "hello" || got["parse_mode"] != "HTML" {
		t.Errorf("payload = %v", got)
	}
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	if err := n.SendWithRetry(context.Background(), "x", 1); err == nil {
		t.Fatal("expected error after retries")
	}
	if c := atomic.LoadInt32(&calls); c != 2 {
		t.Errorf("calls = %d, want 2", c)
	}
}

func TestDisabledNotifier(t *testing.T) {
	var nilNotifier *TelegramNotifier
	if nilNotifier.Enabled() {
		t.Error("nil notifier must be disabled")
	}
	if err := nilNotifier.Send("x"); err != nil {
		t.Errorf("disabled Send should be a no-op, got %v", err)
	}
	if NewTelegramNotifier("", "", "").Enabled() {
		t.Error("notifier without token must be disabled")
	}
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	err := n.Send("hello")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("Send error = %v, want description from API", err)
	}
}

func TestNormalizeCommand(t *testing.T) {
	tests := map[string]string{
		"/run":                "/run",
		"  /Status  ":         "/status",
		"/run@StockBoardBot":  "/run",
		"/status extra words": "/status",
		"   ":                 "",
	}
	for in, want := range tests {
		if got := normalizeCommand(in); got != want {
			t.Errorf("normalizeCommand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStartPolling_DispatchesOwnChatOnly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sent []string
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bottoken/getUpdates":
			if atomic.AddInt32(&polls, 1) > 1 {
				cancel()
				w.Write([]byte(`{"ok":true,"result":[]}`))
				return
			}
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":1,"message":{"text":"/status","chat":{"id":42}}},
				{"update_id":2,"message":{"text":"/run","chat":{"id":7}}}
			]}`))
		case "/bottoken/sendMessage":
			var p map[string]any
			json.NewDecoder(r.Body).Decode(&p)
			sent = append(sent, p["text"].(string))
			w.Write([]byte(`{"ok":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	n := NewTelegramNotifier("token", "42", "")
	n.APIBase = srv.URL
	var handled []string
	n.StartPolling(ctx, func(cmd string) string {
		handled = append(handled, cmd)
		return "ok " + cmd
	})

	if len(handled) != 1 || handled[0] != "/status" {
		t.Errorf("handled = %v, want only /status", handled)
	}
	if len(sent) != 1 || sent[0] != "ok /status" {
		t.Errorf("sent = %v", sent)
	}
}
