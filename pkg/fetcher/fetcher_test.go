package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchHTML(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if _, err := w.Write([]byte("<html><body>Thank you for your order</body></html>")); err != nil {
			t.Error(err)
		}
	}))
	defer srv.Close()

	html, finalURL, err := NewFetcher().FetchHTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchHTML: %v", err)
	}
	if !strings.Contains(html, "Thank you for your order") {
		t.Errorf("html = %q", html)
	}
	if finalURL != srv.URL {
		t.Errorf("finalURL = %q, want %q", finalURL, srv.URL)
	}
	if !strings.Contains(gotUA, "subscribe-any") {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestFetchHTML_FollowsRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/start":
			http.Redirect(w, r, "/final", http.StatusFound)
		case "/final":
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	_, finalURL, err := NewFetcher().FetchHTML(context.Background(), srv.URL+"/start")
	if err != nil {
		t.Fatalf("FetchHTML: %v", err)
	}
	if finalURL != srv.URL+"/final" {
		t.Errorf("finalURL = %q, want the redirect target", finalURL)
	}
}

func TestFetchHTML_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, _, err := NewFetcher().FetchHTML(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestFetchHTML_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := NewFetcher().FetchHTML(ctx, srv.URL); err == nil {
		t.Error("expected error for canceled context")
	}
}
