// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"

	"github.com/pdiddy/scipaper/internal/logging"
	"github.com/pdiddy/scipaper/pkg/types"
)

// FillMeta routes a metadata query across the registered backends. The
// walk is newest-first; the first backend returning a non-nil result
// short-circuits. Every document of that result is combined with the
// query (caller-supplied context such as a known DOI survives into the
// result), optionally enriched from other backends until fillReq is
// satisfied, and annotated Completed. Returns nil when no backend had the
// document.
//
// A query pinned to one backend (query.BackendID != 0) excludes
// cross-backend enrichment; passing both logs a warning and ignores
// fillReq.
func FillMeta(ctx context.Context, query *types.Document, fillReq *types.FillRequest, maxCount, page int, sort types.SortMode) *types.RequestResult {
	if query == nil {
		return nil
	}
	if query.BackendID != 0 && fillReq != nil {
		logging.L().Warn("fill request ignored: query is pinned to one backend",
			"backend", query.BackendID)
		fillReq = nil
	}

	for _, b := range walk() {
		if b.fill == nil || (query.BackendID != 0 && query.BackendID != b.id) {
			continue
		}
		result := b.fill(ctx, query, maxCount, page, sort)
		if result == nil {
			continue
		}
		for _, doc := range result.Documents {
			if doc == nil {
				continue
			}
			doc.Combine(query)
			if query.BackendID == 0 && !fillReq.Satisfied(doc) {
				complete(ctx, doc, fillReq)
			}
			doc.Completed = true
		}
		return result
	}

	if query.BackendID != 0 {
		logging.L().Warn("pinned backend returned no documents", "backend", query.BackendID)
	} else {
		logging.L().Warn("no backend could fill the query")
	}
	return nil
}

// complete fills the gaps of doc from other backends: every backend except
// the producer is asked for the document's DOI, and whatever it returns is
// combined in under the fill-only-empty-fields rule. The walk stops as
// soon as fillReq is satisfied. Existing fields are never overwritten, so
// running completion twice is a no-op.
func complete(ctx context.Context, doc *types.Document, fillReq *types.FillRequest) {
	if doc.DOI == "" {
		return
	}
	for _, b := range walk() {
		if b.id == doc.BackendID {
			continue
		}
		src := FindByDOI(ctx, doc.DOI, b.id)
		if src != nil {
			doc.Combine(src)
		}
		if fillReq.Satisfied(doc) {
			return
		}
	}
}

// FindByDOI performs a single-result metadata lookup for a DOI, pinned to
// backendID when non-zero.
func FindByDOI(ctx context.Context, doi string, backendID int) *types.Document {
	query := types.NewDocument()
	query.DOI = doi
	query.BackendID = backendID
	return FillMeta(ctx, query, nil, 1, 0, types.SortRelevance).First()
}

// GetText routes a full-text request across the backends: same walk as
// FillMeta, no combine, no enrichment.
func GetText(ctx context.Context, doc *types.Document) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, b := range walk() {
		if b.text == nil || (doc.BackendID != 0 && doc.BackendID != b.id) {
			continue
		}
		if text, ok := b.text(ctx, doc); ok {
			return text, true
		}
	}
	logging.L().Warn("no backend could supply the document text")
	return "", false
}

// GetPDF routes a PDF request across the backends: same walk as FillMeta,
// no combine, no enrichment. The returned blob is owned by the caller.
func GetPDF(ctx context.Context, doc *types.Document) *types.PdfBlob {
	if doc == nil {
		return nil
	}
	for _, b := range walk() {
		if b.pdf == nil || (doc.BackendID != 0 && doc.BackendID != b.id) {
			continue
		}
		if blob := b.pdf(ctx, doc); blob != nil {
			return blob
		}
	}
	logging.L().Warn("no backend could supply the document pdf")
	return nil
}
