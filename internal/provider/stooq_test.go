package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkarlsen/pulse/internal/core"
)

func TestStooq_ImplementsProvider(t *testing.T) {
	var _ Provider = (*Stooq)(nil)
}

func TestStooq_Name(t *testing.T) {
	if NewStooq().Name() != "stooq" {
		t.Error("unexpected provider name")
	}
}

func dateRange(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	start, _ := core.ParseDate("2023-01-01")
	end, _ := core.ParseDate("2023-01-05")
	return start, end
}

func TestStooq_FetchDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("s"); got != "aapl.us" {
			t.Errorf("symbol param = %s, want aapl.us", got)
		}
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n" +
			"2023-01-03,130.28,130.90,124.17,125.07,112117500\n" +
			"2023-01-04,126.89,128.66,125.08,126.36,89113600\n"))
	}))
	defer srv.Close()

	p := NewStooq()
	p.baseURL = srv.URL

	start, end := dateRange(t)
	got, err := p.FetchDaily(context.Background(), "AAPL", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 points, got %d", len(got))
	}
	if got[0].Value != 125.07 {
		t.Errorf("first close = %f, want 125.07", got[0].Value)
	}
	if core.DateKey(got[1].Date) != "2023-01-04" {
		t.Errorf("second date = %s", core.DateKey(got[1].Date))
	}
}

func TestStooq_EmptyPayloadNotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n"))
	}))
	defer srv.Close()

	p := NewStooq()
	p.baseURL = srv.URL

	start, end := dateRange(t)
	_, err := p.FetchDaily(context.Background(), "AAPL", start, end)
	if err == nil {
		t.Fatal("expected error for empty payload")
	}
	if core.IsTransient(err) {
		t.Error("empty payload must not be retryable")
	}
	if !errors.Is(err, core.ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestStooq_MissingColumnsNotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Foo,Bar\n1,2\n"))
	}))
	defer srv.Close()

	p := NewStooq()
	p.baseURL = srv.URL

	start, end := dateRange(t)
	_, err := p.FetchDaily(context.Background(), "AAPL", start, end)
	if err == nil {
		t.Fatal("expected error for malformed schema")
	}
	if core.IsTransient(err) {
		t.Error("schema mismatch must not be retryable")
	}
}

func TestStooq_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewStooq()
	p.baseURL = srv.URL

	start, end := dateRange(t)
	_, err := p.FetchDaily(context.Background(), "AAPL", start, end)
	if !core.IsTransient(err) {
		t.Errorf("5xx should be transient, got %v", err)
	}
}

func TestStooq_ClientErrorNotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewStooq()
	p.baseURL = srv.URL

	start, end := dateRange(t)
	_, err := p.FetchDaily(context.Background(), "AAPL", start, end)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if core.IsTransient(err) {
		t.Error("4xx must not be retryable")
	}
}
