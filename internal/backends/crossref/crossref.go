// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crossref resolves document metadata through the Crossref REST
// API: single works by DOI, and field-scoped queries otherwise.
package crossref

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/scipaper/internal/conf"
	"github.com/pdiddy/scipaper/internal/httputil"
	"github.com/pdiddy/scipaper/internal/logging"
	"github.com/pdiddy/scipaper/internal/registry"
	"github.com/pdiddy/scipaper/pkg/types"
)

// BackendName identifies this backend in the registry and in the module
// configuration list.
const BackendName = "crossref"

// apiBase is the Crossref REST endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.crossref.org"

// selectFields is the fixed field list requested on multi-work queries.
const selectFields = "DOI,URL,title,author,published,publisher,container-title,volume,page,ISSN,abstract,is-referenced-by-count"

// Backend holds the per-instance state bound at registration.
type Backend struct {
	client *http.Client
	cfg    types.CrossrefConfig
	id     int
}

// New builds a crossref backend from the configuration.
func New(c *conf.Conf) *Backend {
	cfg := types.CrossrefConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    c.GetTimeout("Crossref"),
			UserAgent:  c.GetString("Core", "UserAgent", "scipaper/1.0"),
			MaxRetries: c.GetInt("Core", "Retry", 1),
		},
		Email: c.GetString("Crossref", "Email", ""),
	}
	return &Backend{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

// Register installs the backend and returns a teardown function. The
// Init/exit pair is what the module loader calls.
func Register(c *conf.Conf) (func(), error) {
	b := New(c)
	b.id = registry.Register(
		&types.BackendDescriptor{Name: BackendName, Capabilities: types.CapFill},
		b.FillMeta, nil, nil)
	return func() { registry.Unregister(b.id) }, nil
}

// FillMeta resolves a DOI directly, or translates the query fields into a
// works search. Returns nil when the query carries nothing crossref can
// answer.
func (b *Backend) FillMeta(ctx context.Context, query *types.Document, maxCount, page int, _ types.SortMode) *types.RequestResult {
	if query.DOI != "" {
		doc := b.fetchWork(ctx, query.DOI)
		if doc == nil {
			return nil
		}
		doc.BackendID = b.id
		return types.NewRequestResult([]*types.Document{doc}, maxCount, page, 1)
	}

	params := url.Values{}
	if query.Author != "" {
		params.Set("query.author", query.Author)
	}
	if query.Title != "" {
		params.Set("query.title", query.Title)
	}
	if query.Journal != "" {
		params.Set("query.publisher-name", query.Journal)
	}
	if query.Year != 0 {
		params.Set("query.bibliographic", fmt.Sprintf("%d", query.Year))
	}
	if query.HasFullText {
		params.Set("filter", "has-full-text:true")
	}
	if len(params) == 0 {
		return nil
	}
	params.Set("select", selectFields)
	params.Set("rows", fmt.Sprintf("%d", maxCount))
	if b.cfg.Email != "" {
		params.Set("mailto", b.cfg.Email)
	}

	var resp worksListResponse
	reqURL := apiBase + "/works?" + params.Encode()
	if err := httputil.GetJSON(ctx, b.client, reqURL, b.cfg.UserAgent, b.cfg.MaxRetries, &resp); err != nil {
		logging.L().Warn("crossref query failed", "err", err)
		return nil
	}
	if resp.Status != "ok" {
		logging.L().Warn("crossref returned invalid status", "status", resp.Status)
		return nil
	}

	var docs []*types.Document
	for i := range resp.Message.Items {
		doc := b.parseWork(ctx, &resp.Message.Items[i])
		doc.BackendID = b.id
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil
	}
	return types.NewRequestResult(docs, maxCount, page, resp.Message.TotalResults)
}

// fetchWork retrieves and parses a single work record by DOI.
func (b *Backend) fetchWork(ctx context.Context, doi string) *types.Document {
	var resp workResponse
	reqURL := apiBase + "/works/" + url.PathEscape(doi)
	if b.cfg.Email != "" {
		reqURL += "?mailto=" + url.QueryEscape(b.cfg.Email)
	}
	if err := httputil.GetJSON(ctx, b.client, reqURL, b.cfg.UserAgent, b.cfg.MaxRetries, &resp); err != nil {
		logging.L().Warn("crossref work fetch failed", "doi", doi, "err", err)
		return nil
	}
	if resp.Status != "ok" {
		logging.L().Warn("crossref returned invalid status", "status", resp.Status)
		return nil
	}
	if resp.MessageType != "work" {
		logging.L().Warn("crossref returned unexpected message type", "type", resp.MessageType)
		return nil
	}
	return b.parseWork(ctx, &resp.Message)
}

// parseWork maps a crossref work record onto a document. When the record
// names an ISSN but no publisher or journal, a secondary journals lookup
// fills those two fields.
func (b *Backend) parseWork(ctx context.Context, w *crossrefWork) *types.Document {
	doc := types.NewDocument()
	doc.DOI = w.DOI
	doc.URL = w.URL
	doc.Publisher = w.Publisher
	doc.Volume = w.Volume
	doc.Pages = w.Page
	doc.Abstract = w.Abstract

	var authors []string
	for _, a := range w.Author {
		authors = append(authors, strings.TrimSpace(a.Given+" "+a.Family))
	}
	doc.Author = strings.Join(authors, ", ")

	if len(w.Title) > 0 {
		doc.Title = w.Title[0]
	}
	if len(w.ContainerTitle) > 0 {
		doc.Journal = w.ContainerTitle[0]
	}
	if len(w.ISSN) > 0 {
		doc.ISSN = w.ISSN[0]
	}
	if w.ReferencedByCount != nil {
		doc.References = *w.ReferencedByCount
	}

	if len(w.Published.DateParts) > 0 && len(w.Published.DateParts[0]) > 0 && w.Published.DateParts[0][0] > 0 {
		doc.Year = uint(w.Published.DateParts[0][0])
	} else if len(w.Referance.DateParts) > 0 && len(w.Referance.DateParts[0]) > 0 && w.Referance.DateParts[0][0] > 0 {
		// Some responses carry the year only under a misspelled
		// "referance" block; the spelling is theirs, not ours.
		doc.Year = uint(w.Referance.DateParts[0][0])
	}

	if doc.ISSN != "" && (doc.Publisher == "" || doc.Journal == "") {
		b.fillFromJournal(ctx, doc)
	}
	return doc
}

// fillFromJournal completes publisher and journal from the journals
// endpoint keyed by ISSN.
func (b *Backend) fillFromJournal(ctx context.Context, doc *types.Document) {
	var resp journalResponse
	reqURL := apiBase + "/journals/" + url.PathEscape(doc.ISSN)
	if err := httputil.GetJSON(ctx, b.client, reqURL, b.cfg.UserAgent, b.cfg.MaxRetries, &resp); err != nil {
		logging.L().Warn("crossref journal fetch failed", "issn", doc.ISSN, "err", err)
		return
	}
	if resp.Status != "ok" {
		return
	}
	if doc.Publisher == "" {
		doc.Publisher = resp.Message.Publisher
	}
	if doc.Journal == "" {
		doc.Journal = resp.Message.Title
	}
}

// Crossref REST API JSON structures.
type workResponse struct {
	Status      string       `json:"status"`
	MessageType string       `json:"message-type"`
	Message     crossrefWork `json:"message"`
}

type worksListResponse struct {
	Status  string `json:"status"`
	Message struct {
		TotalResults int            `json:"total-results"`
		Items        []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI               string           `json:"DOI"`
	URL               string           `json:"URL"`
	Title             []string         `json:"title"`
	Author            []crossrefAuthor `json:"author"`
	Published         crossrefDate     `json:"published"`
	Referance         crossrefDate     `json:"referance"`
	Publisher         string           `json:"publisher"`
	ContainerTitle    []string         `json:"container-title"`
	Volume            string           `json:"volume"`
	Page              string           `json:"page"`
	ISSN              []string         `json:"ISSN"`
	Abstract          string           `json:"abstract"`
	ReferencedByCount *int             `json:"is-referenced-by-count"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

type journalResponse struct {
	Status  string `json:"status"`
	Message struct {
		Title     string `json:"title"`
		Publisher string `json:"publisher"`
	} `json:"message"`
}
