// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scihub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/scipaper/pkg/types"
)

func testBackend(baseURL string) *Backend {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Backend{
		client: &http.Client{Timeout: 5 * time.Second},
		cfg: types.ScihubConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: browserUserAgent, MaxRetries: 0},
			BaseURL:    baseURL,
		},
		id: 1,
	}
}

func TestExtractURLFromOnclick(t *testing.T) {
	page := []byte(`<html><body>
		<div id="menu"></div>
		<button onclick="location.href='https://host/x.pdf'">download</button>
	</body></html>`)

	if got := extractPDFURL(page); got != "https://host/x.pdf" {
		t.Errorf("extracted %q, want https://host/x.pdf", got)
	}
}

func TestExtractURLFallbackRawScan(t *testing.T) {
	page := []byte(`garbage <<<> onclick broken
		href = 'https://other/y.pdf?download=true' more garbage`)

	if got := extractPDFURL(page); got != "https://other/y.pdf?download=true" {
		t.Errorf("extracted %q, want https://other/y.pdf?download=true", got)
	}
}

func TestExtractURLNoLink(t *testing.T) {
	if got := extractPDFURL([]byte("<html><body>captcha</body></html>")); got != "" {
		t.Errorf("extracted %q from a linkless page", got)
	}
}

func TestUrlFromHandlerUnquoted(t *testing.T) {
	if got := urlFromHandler("location.href=//host/x.pdf"); got != "//host/x.pdf" {
		t.Errorf("got %q", got)
	}
	if got := urlFromHandler("noequalsign"); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestGetPDF(t *testing.T) {
	pdf := append([]byte("%PDF-1.4 "), make([]byte, 200)...)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/10.1/x":
			if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
				t.Errorf("user-agent = %q, want browser-style", ua)
			}
			fmt.Fprintf(w, `<html><body><button onclick="location.href='%s/file.pdf'">x</button></body></html>`, srv.URL)
		case "/file.pdf":
			w.Write(pdf)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()
	b := testBackend(srv.URL)

	doc := types.NewDocument()
	doc.DOI = "10.1/x"
	blob := b.GetPDF(context.Background(), doc)
	if blob == nil || !blob.IsPDF() {
		t.Fatalf("expected a pdf blob, got %+v", blob)
	}
	if blob.Meta == nil || blob.Meta.DOI != "10.1/x" {
		t.Errorf("blob meta = %+v", blob.Meta)
	}
}

func TestGetPDFSchemeRelativeLink(t *testing.T) {
	// Scheme-relative links come back from real mirrors. The test can
	// only assert that the https: prefix is applied, so the download
	// fails against the unreachable host and GetPDF returns nil
	// without panicking.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><button onclick="location.href='//invalid.invalid/x.pdf'">x</button></body></html>`)
	}))
	defer srv.Close()
	b := testBackend(srv.URL)

	doc := types.NewDocument()
	doc.DOI = "10.1/x"
	if blob := b.GetPDF(context.Background(), doc); blob != nil {
		t.Errorf("unreachable host should yield nil, got %+v", blob)
	}
}

func TestGetPDFRejectsNonPDF(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/file.pdf" {
			fmt.Fprint(w, "<html>captcha wall</html>")
			return
		}
		fmt.Fprintf(w, `<html><body><button onclick="location.href='%s/file.pdf'">x</button></body></html>`, srv.URL)
	}))
	defer srv.Close()
	b := testBackend(srv.URL)

	doc := types.NewDocument()
	doc.DOI = "10.1/x"
	if blob := b.GetPDF(context.Background(), doc); blob != nil {
		t.Errorf("non-pdf payload should yield nil, got %+v", blob)
	}
}

func TestGetPDFNoDOI(t *testing.T) {
	b := testBackend("http://unused.invalid")
	if blob := b.GetPDF(context.Background(), types.NewDocument()); blob != nil {
		t.Errorf("doi-less document should yield nil, got %+v", blob)
	}
}
