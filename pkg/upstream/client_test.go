package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ASHISH26940/manim-asset-gateway/pkg/errs"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Options{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}

func TestHealthCheckOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("path = %q, want /", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","message":"manim backend running"}`))
	}))
	defer srv.Close()

	health, err := newTestClient(t, srv.URL).HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if health.Status != "healthy" {
		t.Fatalf("status = %q, want healthy", health.Status)
	}
}

func TestHealthCheckNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).HealthCheck(context.Background())
	if !errs.Is(err, errs.KindUpstream) {
		t.Fatalf("kind = %v, want KindUpstream", errs.KindOf(err))
	}
}

func TestHealthCheckTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := NewClient(Options{BaseURL: srv.URL, HealthTimeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.HealthCheck(context.Background())
	if !errs.Is(err, errs.KindTimeout) {
		t.Fatalf("kind = %v, want KindTimeout", errs.KindOf(err))
	}
}

func TestExistsPartialContent(t *testing.T) {
	var gotRange string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/video/Photosynthesis" {
			t.Errorf("path = %q, want /video/Photosynthesis", r.URL.Path)
		}
		gotRange = r.Header.Get("Range")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte{0x00, 0x00})
	}))
	defer srv.Close()

	ok, err := newTestClient(t, srv.URL).Exists(context.Background(), "Photosynthesis")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatalf("206 response should report existing")
	}
	if gotRange != "bytes=0-1" {
		t.Fatalf("Range header = %q, want bytes=0-1", gotRange)
	}
}

func TestExistsMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ok, err := newTestClient(t, srv.URL).Exists(context.Background(), "Missing")
	if err != nil {
		t.Fatalf("a 404 is a clean negative answer, not an error: %v", err)
	}
	if ok {
		t.Fatalf("404 response should report absent")
	}
}

func TestExistsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestClient(t, srv.URL).Exists(context.Background(), "X")
	if !errs.Is(err, errs.KindConnection) {
		t.Fatalf("kind = %v, want KindConnection", errs.KindOf(err))
	}
}

func TestDownloadSuccess(t *testing.T) {
	payload := []byte("binary mp4 bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/video/GravityAnim" {
			t.Errorf("path = %q, want /video/GravityAnim", r.URL.Path)
		}
		w.Write(payload)
	}))
	defer srv.Close()

	data, err := newTestClient(t, srv.URL).Download(context.Background(), "GravityAnim")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatalf("payload mismatch: %q vs %q", data, payload)
	}
}

func TestDownloadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Download(context.Background(), "Missing")
	if !errs.Is(err, errs.KindNotFound) {
		t.Fatalf("kind = %v, want KindNotFound", errs.KindOf(err))
	}
	if errs.StatusOf(err) != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", errs.StatusOf(err))
	}
}

func TestDownloadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).Download(context.Background(), "X")
	if !errs.Is(err, errs.KindUpstream) {
		t.Fatalf("kind = %v, want KindUpstream", errs.KindOf(err))
	}
}

func TestDownloadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, err := NewClient(Options{BaseURL: srv.URL, DownloadTimeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.Download(context.Background(), "X")
	if !errs.Is(err, errs.KindTimeout) {
		t.Fatalf("kind = %v, want KindTimeout", errs.KindOf(err))
	}
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos/list" {
			t.Errorf("path = %q, want /videos/list", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"videos": [
				{"class_name": "GravityAnim", "filename": "GravityAnim.mp4", "has_background_music": true, "relative_path": "videos/GravityAnim.mp4"}
			],
			"total_count": 1
		}`))
	}))
	defer srv.Close()

	list, err := newTestClient(t, srv.URL).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.TotalCount != 1 || len(list.Videos) != 1 {
		t.Fatalf("unexpected listing: %+v", list)
	}
	v := list.Videos[0]
	if v.ClassName != "GravityAnim" || !v.HasBackgroundMusic {
		t.Fatalf("unexpected descriptor: %+v", v)
	}
}

func TestLatestCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/code/latest" {
			t.Errorf("path = %q, want /code/latest", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","manim_code":"from manim import *","class_name":"GravityAnim","filename":"gravity.py"}`))
	}))
	defer srv.Close()

	code, err := newTestClient(t, srv.URL).LatestCode(context.Background())
	if err != nil {
		t.Fatalf("latest code: %v", err)
	}
	if code.ClassName != "GravityAnim" || code.ManimCode == "" {
		t.Fatalf("unexpected code payload: %+v", code)
	}
}

func TestOriginalVideoURL(t *testing.T) {
	c := newTestClient(t, "http://localhost:8000/")
	got := c.OriginalVideoURL("GravityAnim")
	if got != "http://localhost:8000/video/original/GravityAnim" {
		t.Fatalf("original URL = %q", got)
	}
}
