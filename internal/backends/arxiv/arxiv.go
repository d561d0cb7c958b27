// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv searches the arXiv Atom API. Preprints rarely carry a
// DOI, so this backend leans on title and author queries and serves
// PDFs straight off the archive.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/scipaper/internal/conf"
	"github.com/pdiddy/scipaper/internal/httputil"
	"github.com/pdiddy/scipaper/internal/logging"
	"github.com/pdiddy/scipaper/internal/registry"
	"github.com/pdiddy/scipaper/pkg/types"
)

// BackendName identifies this backend in the registry and in the module
// configuration list.
const BackendName = "arxiv"

// apiBase is the arXiv search endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// Backend holds the per-instance state bound at registration.
type Backend struct {
	client *http.Client
	cfg    types.HTTPConfig
	id     int
}

// New builds an arxiv backend from the configuration.
func New(c *conf.Conf) *Backend {
	cfg := types.HTTPConfig{
		Timeout:    c.GetTimeout("Arxiv"),
		UserAgent:  c.GetString("Core", "UserAgent", "scipaper/1.0"),
		MaxRetries: c.GetInt("Core", "Retry", 1),
	}
	return &Backend{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// Register installs the backend and returns a teardown function.
func Register(c *conf.Conf) (func(), error) {
	b := New(c)
	b.id = registry.Register(
		&types.BackendDescriptor{Name: BackendName, Capabilities: types.CapFill | types.CapGetPDF},
		b.FillMeta, nil, b.GetPDF)
	return func() { registry.Unregister(b.id) }, nil
}

// buildQuery constructs the search_query parameter from the structured
// fields. Empty means the query carries nothing arXiv can search on.
func buildQuery(query *types.Document) string {
	joinTerms := func(prefix, s string) string {
		return prefix + strings.Join(strings.Fields(s), "+")
	}

	var parts []string
	if query.Title != "" {
		parts = append(parts, joinTerms("ti:", query.Title))
	}
	if query.Author != "" {
		parts = append(parts, joinTerms("au:", query.Author))
	}
	if query.SearchText != "" {
		parts = append(parts, joinTerms("all:", query.SearchText))
	}
	for _, kw := range strings.Split(query.Keywords, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			parts = append(parts, joinTerms("all:", kw))
		}
	}
	return strings.Join(parts, "+AND+")
}

func sortParams(sort types.SortMode) (string, string) {
	switch sort {
	case types.SortNewest:
		return "submittedDate", "descending"
	case types.SortOldest:
		return "submittedDate", "ascending"
	default:
		return "relevance", "descending"
	}
}

// FillMeta searches the Atom feed. arXiv has no scroll tokens; paging is
// start-offset only.
func (b *Backend) FillMeta(ctx context.Context, query *types.Document, maxCount, page int, sort types.SortMode) *types.RequestResult {
	q := buildQuery(query)
	if q == "" {
		return nil
	}
	sortBy, sortOrder := sortParams(sort)
	// The query is composed of plus-joined terms, which is already the
	// form-encoded shape the API expects; escaping it again would turn
	// the separators into literal pluses.
	reqURL := fmt.Sprintf("%s?search_query=%s&start=%d&max_results=%d&sortBy=%s&sortOrder=%s",
		apiBase, q, page*maxCount, maxCount, sortBy, sortOrder)

	data, err := httputil.Get(ctx, b.client, reqURL, b.cfg.UserAgent, b.cfg.MaxRetries)
	if err != nil {
		logging.L().Warn("arxiv query failed", "err", err)
		return nil
	}

	var feed arxivFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		logging.L().Warn("arxiv response is not an atom feed", "err", err)
		return nil
	}

	var docs []*types.Document
	for i := range feed.Entries {
		doc := parseEntry(&feed.Entries[i])
		if doc == nil {
			continue
		}
		doc.BackendID = b.id
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil
	}
	return types.NewRequestResult(docs, maxCount, page, feed.TotalResults)
}

// parseEntry maps one Atom entry onto a document. Entries whose id does
// not carry an arXiv identifier are dropped.
func parseEntry(entry *arxivEntry) *types.Document {
	arxivID := extractArxivID(entry.ID)
	if arxivID == "" {
		return nil
	}

	doc := types.NewDocument()
	doc.URL = entry.ID
	doc.DOI = entry.DOI
	doc.Title = strings.Join(strings.Fields(entry.Title), " ")
	doc.Abstract = strings.TrimSpace(entry.Summary)
	doc.Journal = strings.TrimSpace(entry.JournalRef)
	doc.DownloadURL = "https://arxiv.org/pdf/" + arxivID + ".pdf"

	var authors []string
	for _, a := range entry.Authors {
		authors = append(authors, strings.TrimSpace(a.Name))
	}
	doc.Author = strings.Join(authors, ", ")

	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		doc.Year = uint(t.Year())
	}
	return doc
}

// GetPDF downloads the entry's PDF. Only documents this backend produced
// carry a usable download URL.
func (b *Backend) GetPDF(ctx context.Context, doc *types.Document) *types.PdfBlob {
	if doc.BackendID != b.id || doc.DownloadURL == "" {
		return nil
	}
	data, err := httputil.Get(ctx, b.client, doc.DownloadURL, b.cfg.UserAgent, b.cfg.MaxRetries)
	if err != nil {
		logging.L().Warn("arxiv pdf download failed", "url", doc.DownloadURL, "err", err)
		return nil
	}
	blob := &types.PdfBlob{Data: data, Meta: doc.Copy()}
	if !blob.IsPDF() {
		logging.L().Warn("arxiv download is not a pdf", "url", doc.DownloadURL)
		return nil
	}
	return blob
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	TotalResults int          `xml:"totalResults"`
	Entries      []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Summary    string        `xml:"summary"`
	Published  string        `xml:"published"`
	DOI        string        `xml:"doi"`
	JournalRef string        `xml:"journal_ref"`
	Authors    []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
