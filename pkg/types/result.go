// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RequestResult is one page of a search result.
type RequestResult struct {
	// Documents holds the page in backend order. Entries may be nil;
	// consumers skip them.
	Documents []*Document

	// Count is len(Documents).
	Count int

	// MaxCount is the ceiling the caller requested.
	MaxCount int

	// Page is the 0-based page index actually served.
	Page int

	// TotalCount is the total number of hits known to the backend, or 0
	// when unknown.
	TotalCount int
}

// NewRequestResult wraps a document slice in a result page.
func NewRequestResult(docs []*Document, maxCount, page, totalCount int) *RequestResult {
	return &RequestResult{
		Documents:  docs,
		Count:      len(docs),
		MaxCount:   maxCount,
		Page:       page,
		TotalCount: totalCount,
	}
}

// First returns the first non-nil document, or nil when the page holds none.
func (r *RequestResult) First() *Document {
	if r == nil {
		return nil
	}
	for _, doc := range r.Documents {
		if doc != nil {
			return doc
		}
	}
	return nil
}

// PdfBlob holds a downloaded PDF: the raw bytes and a document describing
// the resolved source. The blob owns Meta.
type PdfBlob struct {
	Data []byte
	Meta *Document
}

// IsPDF reports whether the blob plausibly holds a PDF: at least 100 bytes
// starting with the %PDF magic.
func (b *PdfBlob) IsPDF() bool {
	return b != nil && len(b.Data) >= 100 && string(b.Data[:4]) == "%PDF"
}
