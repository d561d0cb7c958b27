// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scihub resolves PDFs through a mirror site that serves an
// intermediate HTML page per DOI. The download link sits in an onclick
// handler, so extraction walks the parsed tree and falls back to a raw
// substring scan when the markup is too broken to parse.
package scihub

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/scipaper/internal/conf"
	"github.com/pdiddy/scipaper/internal/httputil"
	"github.com/pdiddy/scipaper/internal/logging"
	"github.com/pdiddy/scipaper/internal/registry"
	"github.com/pdiddy/scipaper/pkg/types"
)

// BackendName identifies this backend in the registry and in the module
// configuration list.
const BackendName = "scihub"

// browserUserAgent is sent on every request. The mirrors refuse obvious
// robot user-agents.
const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

// Backend holds the per-instance state bound at registration.
type Backend struct {
	client *http.Client
	cfg    types.ScihubConfig
	id     int
}

// New builds a scihub backend. The mirror base URL is mandatory.
func New(c *conf.Conf) (*Backend, error) {
	cfg := types.ScihubConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    c.GetTimeout("Scihub"),
			UserAgent:  browserUserAgent,
			MaxRetries: c.GetInt("Core", "Retry", 1),
		},
		BaseURL: c.GetString("Scihub", "Url", ""),
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("scihub backend requires the Scihub/Url configuration key")
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	return &Backend{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}, nil
}

// Register installs the backend and returns a teardown function.
func Register(c *conf.Conf) (func(), error) {
	b, err := New(c)
	if err != nil {
		return nil, err
	}
	b.id = registry.Register(
		&types.BackendDescriptor{Name: BackendName, Capabilities: types.CapGetPDF},
		nil, nil, b.GetPDF)
	return func() { registry.Unregister(b.id) }, nil
}

// GetPDF fetches the mirror page for the document's DOI, extracts the
// download link, and downloads it. Returns nil when the page yields no
// link or the downloaded bytes are not a PDF.
func (b *Backend) GetPDF(ctx context.Context, doc *types.Document) *types.PdfBlob {
	if doc.DOI == "" {
		return nil
	}

	page, err := httputil.Get(ctx, b.client, b.cfg.BaseURL+doc.DOI, b.cfg.UserAgent, b.cfg.MaxRetries)
	if err != nil {
		logging.L().Warn("scihub page fetch failed", "doi", doc.DOI, "err", err)
		return nil
	}

	pdfURL := extractPDFURL(page)
	if pdfURL == "" {
		logging.L().Warn("scihub page carries no download link", "doi", doc.DOI)
		return nil
	}
	if strings.HasPrefix(pdfURL, "//") {
		pdfURL = "https:" + pdfURL
	}

	data, err := httputil.Get(ctx, b.client, pdfURL, b.cfg.UserAgent, b.cfg.MaxRetries)
	if err != nil {
		logging.L().Warn("scihub pdf download failed", "url", pdfURL, "err", err)
		return nil
	}

	blob := &types.PdfBlob{Data: data, Meta: doc.Copy()}
	if !blob.IsPDF() {
		logging.L().Warn("scihub download is not a pdf", "url", pdfURL, "len", len(data))
		return nil
	}
	return blob
}

// extractPDFURL tries the parsed-tree walk first and the raw substring
// heuristic second.
func extractPDFURL(page []byte) string {
	if u := urlFromOnclick(page); u != "" {
		return u
	}
	return urlFromRawScan(string(page))
}

// urlFromOnclick walks the document depth-first for the first element
// whose onclick value mentions pdf, and takes the URL after the first
// "=" in that value, trimming the surrounding single quotes.
func urlFromOnclick(page []byte) string {
	root, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}

	var walk func(*html.Node) string
	walk = func(n *html.Node) string {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "onclick" && strings.Contains(attr.Val, "pdf") {
					if u := urlFromHandler(attr.Val); u != "" {
						return u
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if u := walk(child); u != "" {
				return u
			}
		}
		return ""
	}
	return walk(root)
}

// urlFromHandler pulls the URL out of a handler like
// location.href='https://host/x.pdf'.
func urlFromHandler(handler string) string {
	_, rest, found := strings.Cut(handler, "=")
	if !found {
		return ""
	}
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "'") {
		rest = rest[1:]
		if end := strings.IndexByte(rest, '\''); end >= 0 {
			rest = rest[:end]
		}
	}
	return strings.TrimSpace(rest)
}

// urlFromRawScan locates a download=true marker in the raw HTML and
// takes the single-quoted string around it.
func urlFromRawScan(page string) string {
	at := strings.Index(page, "download=true")
	if at < 0 {
		return ""
	}
	open := strings.LastIndexByte(page[:at], '\'')
	if open < 0 {
		return ""
	}
	closing := strings.IndexByte(page[open+1:], '\'')
	if closing < 0 {
		return ""
	}
	return page[open+1 : open+1+closing]
}
