// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package core searches the CORE open-access aggregator. It is the one
// reference backend carrying all three capabilities: metadata search
// with scroll continuation, cached full text, and PDF download.
package core

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
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
const BackendName = "core"

// apiBase is the CORE v3 endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.core.ac.uk/v3"

// pageTolerance bounds how far ahead of the stored continuation a page
// request may run and still reuse the scroll token. A tolerance above
// zero lets a caller retry a just-consumed page without falling back to
// offset pagination.
const pageTolerance = 3

// textData caches a result's full text on the document so a later
// GetText on the same document is a pure in-memory copy.
type textData struct {
	fullText string
}

func (d *textData) CopyData() types.BackendData {
	out := *d
	return &out
}

// pageState is the scroll continuation cache described in the package
// doc. One instance per backend, mutated on every FillMeta.
type pageState struct {
	lastQuery    *types.Document
	lastMaxCount int
	scrollToken  string
	nextPage     int
}

// fastEligible reports whether the stored token can serve this request.
// Page zero always starts a fresh scroll. Any later page must repeat the
// previous query and page size exactly and trail the token's position by
// less than the tolerance, so a caller may retry a just-consumed page.
func (s *pageState) fastEligible(query *types.Document, maxCount, page int) bool {
	if page == 0 {
		return true
	}
	return s.lastQuery != nil &&
		query.IsEqual(s.lastQuery) &&
		maxCount == s.lastMaxCount &&
		s.scrollToken != "" &&
		s.nextPage >= page && s.nextPage-page < pageTolerance
}

func (s *pageState) store(query *types.Document, maxCount, page int, token string) {
	s.lastQuery = query.Copy()
	s.lastMaxCount = maxCount
	s.scrollToken = token
	s.nextPage = page + 1
}

func (s *pageState) clear() {
	*s = pageState{}
}

// Backend holds the per-instance state bound at registration.
type Backend struct {
	client *http.Client
	cfg    types.CoreConfig
	state  pageState
	id     int
}

// New builds a core backend. The API key is mandatory.
func New(c *conf.Conf) (*Backend, error) {
	cfg := types.CoreConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    c.GetTimeout("Core"),
			UserAgent:  c.GetString("Core", "UserAgent", "scipaper/1.0"),
			MaxRetries: c.GetInt("Core", "Retry", 1),
		},
		APIKey:    c.GetString("Core", "ApiKey", ""),
		RateLimit: c.GetInt("Core", "RateLimit", 10),
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("core backend requires the Core/ApiKey configuration key")
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
		&types.BackendDescriptor{Name: BackendName, Capabilities: types.CapFill | types.CapGetText | types.CapGetPDF},
		b.FillMeta, b.GetText, b.GetPDF)
	return func() { registry.Unregister(b.id) }, nil
}

// buildQuery translates the document fields into the q parameter: zero
// or more field-scoped clauses joined with "+". An empty q means the
// query carries nothing this backend can search on.
func buildQuery(query *types.Document) string {
	var clauses []string
	if query.Author != "" {
		clauses = append(clauses, fmt.Sprintf("authors:%q", query.Author))
	}
	if query.Title != "" {
		clauses = append(clauses, fmt.Sprintf("title:%q", query.Title))
	}
	if query.Keywords != "" {
		clauses = append(clauses, strings.Join(strings.Fields(strings.ReplaceAll(query.Keywords, ",", " ")), "+"))
	}
	if query.Abstract != "" {
		clauses = append(clauses, fmt.Sprintf("abstract:%q", query.Abstract))
	}
	if query.SearchText != "" {
		clauses = append(clauses, fmt.Sprintf("%q", query.SearchText))
	}
	return strings.Join(clauses, "+")
}

// FillMeta runs a works search, continuing an open scroll when the
// request extends the previous one and falling back to offset paging
// otherwise.
func (b *Backend) FillMeta(ctx context.Context, query *types.Document, maxCount, page int, _ types.SortMode) *types.RequestResult {
	q := buildQuery(query)
	if q == "" {
		return nil
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", fmt.Sprintf("%d", maxCount))
	params.Set("apiKey", b.cfg.APIKey)

	fast := b.state.fastEligible(query, maxCount, page)
	if fast {
		if b.state.scrollToken != "" && page != 0 {
			params.Set("scrollId", b.state.scrollToken)
		} else {
			params.Set("scroll", "true")
		}
	} else {
		params.Set("offset", fmt.Sprintf("%d", page*maxCount))
	}

	// A 200 without the results array counts as a failed attempt too,
	// bounded by the same retry budget as transport failures.
	var resp searchResponse
	reqURL := apiBase + "/search/works?" + params.Encode()
	for attempt := 0; ; attempt++ {
		resp = searchResponse{}
		if err := httputil.GetJSON(ctx, b.client, reqURL, b.cfg.UserAgent, b.cfg.MaxRetries, &resp); err != nil {
			logging.L().Warn("core search failed", "err", err)
			return nil
		}
		if resp.Results != nil {
			break
		}
		if attempt >= b.cfg.MaxRetries {
			logging.L().Warn("core response carries no results array")
			return nil
		}
		backoff := time.Duration(1<<attempt) * httputil.RetryBaseDelay
		logging.L().Warn("core response carries no results array, retrying",
			"attempt", attempt+1, "max", b.cfg.MaxRetries, "backoff", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
	}

	if fast {
		b.state.store(query, maxCount, page, resp.ScrollID)
	} else {
		b.state.clear()
		if maxCount > 0 {
			page = resp.Offset / maxCount
		}
	}

	var docs []*types.Document
	for i := range resp.Results {
		doc := parseResult(&resp.Results[i])
		doc.BackendID = b.id
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil
	}
	return types.NewRequestResult(docs, maxCount, page, resp.TotalHits)
}

// parseResult maps one works record onto a document. The response's
// fullText is cached on the document rather than exposed as a field.
func parseResult(r *coreResult) *types.Document {
	doc := types.NewDocument()
	doc.Title = r.Title
	doc.Abstract = r.Abstract
	doc.Publisher = r.Publisher
	doc.DownloadURL = r.DownloadURL
	doc.Year = uint(r.YearPublished)

	var authors []string
	for _, a := range r.Authors {
		authors = append(authors, a.Name)
	}
	doc.Author = strings.Join(authors, ", ")

	doc.DOI = r.DOI
	if len(doc.DOI) < 6 {
		// Records with a blank or garbage doi field usually still
		// carry the DOI in the identifiers array.
		for _, id := range r.Identifiers {
			if id.Type == "DOI" && id.Identifier != "" {
				doc.DOI = id.Identifier
				break
			}
		}
	}

	if r.FullText != "" {
		doc.HasFullText = true
		doc.BackendData = &textData{fullText: r.FullText}
	}
	return doc
}

// GetText returns the cached full text when the document came from this
// backend, and otherwise refreshes the document through a single-result
// search first.
func (b *Backend) GetText(ctx context.Context, doc *types.Document) (string, bool) {
	if doc.BackendID == b.id {
		if data, ok := doc.BackendData.(*textData); ok && data.fullText != "" {
			return data.fullText, true
		}
	}

	res := b.FillMeta(ctx, doc, 1, 0, types.SortRelevance)
	if res == nil {
		return "", false
	}
	first := res.First()
	if first == nil {
		return "", false
	}
	if data, ok := first.BackendData.(*textData); ok && data.fullText != "" {
		return data.fullText, true
	}
	return "", false
}

// GetPDF downloads the document's PDF. Foreign documents are first
// re-resolved by DOI so the download URL is this backend's own.
func (b *Backend) GetPDF(ctx context.Context, doc *types.Document) *types.PdfBlob {
	if doc.BackendID != b.id {
		if doc.DOI == "" {
			return nil
		}
		lookup := types.NewDocument()
		lookup.SearchText = doc.DOI
		res := b.FillMeta(ctx, lookup, 1, 0, types.SortRelevance)
		if res == nil || res.First() == nil {
			return nil
		}
		doc = res.First()
	}
	if doc.DownloadURL == "" {
		return nil
	}

	data, err := httputil.Get(ctx, b.client, rewriteArxiv(doc.DownloadURL), b.cfg.UserAgent, b.cfg.MaxRetries)
	if err != nil {
		logging.L().Warn("core pdf download failed", "url", doc.DownloadURL, "err", err)
		return nil
	}
	return &types.PdfBlob{Data: data, Meta: doc.Copy()}
}

// rewriteArxiv turns an arxiv abstract landing URL into the direct PDF
// URL. Other hosts pass through untouched.
func rewriteArxiv(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.Contains(u.Host, "arxiv.org") {
		return raw
	}
	if strings.Contains(u.Path, "/abs/") {
		u.Path = strings.Replace(u.Path, "/abs/", "/pdf/", 1) + ".pdf"
		return u.String()
	}
	return raw
}

// CORE v3 JSON structures.
type searchResponse struct {
	TotalHits int          `json:"totalHits"`
	Offset    int          `json:"offset"`
	ScrollID  string       `json:"scrollId"`
	Results   []coreResult `json:"results"`
}

type coreResult struct {
	DOI           string           `json:"doi"`
	Title         string           `json:"title"`
	Abstract      string           `json:"abstract"`
	Publisher     string           `json:"publisher"`
	DownloadURL   string           `json:"downloadUrl"`
	YearPublished int              `json:"yearPublished"`
	FullText      string           `json:"fullText"`
	Authors       []coreAuthor     `json:"authors"`
	Identifiers   []coreIdentifier `json:"identifiers"`
}

type coreAuthor struct {
	Name string `json:"name"`
}

type coreIdentifier struct {
	Identifier string `json:"identifier"`
	Type       string `json:"type"`
}
