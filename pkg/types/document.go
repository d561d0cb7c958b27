// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model: the document record, paged
// result container, PDF blob, fill-request bitmask, and backend descriptors.
package types

// BackendData is opaque per-backend state attached to a Document, for
// example a cached full text or an internal repository id. Implementations
// must provide a deep copy so Document.Copy stays a pure function.
type BackendData interface {
	CopyData() BackendData
}

// Document describes one paper. A Document is either a query (built by the
// caller, search-relevant fields set) or a result (built by a backend,
// BackendID set to the producing backend).
type Document struct {
	// DOI is the canonical identifier, case preserved.
	DOI string

	// URL is the landing page at the publisher.
	URL string

	// Year is the publication year; 0 means unknown.
	Year uint

	Publisher string
	Volume    string
	Pages     string

	// Author holds all authors in canonical form:
	// "Given Family, Given Family, ...".
	Author string

	Title    string
	Journal  string
	ISSN     string
	Keywords string

	// DownloadURL is a direct full-text or PDF link if known.
	DownloadURL string

	Abstract string

	// References is the citation count; -1 means unknown.
	References int

	// SearchText carries a free-text query. It is only ever set on query
	// documents, never on results.
	SearchText string

	// HasFullText hints that a full text may be obtainable.
	HasFullText bool

	// BackendID is 0 on an unscoped query; on a result it is the id of the
	// backend that produced it. A non-zero id on a query pins the search to
	// that backend.
	BackendID int

	// BackendData is a per-backend cache, owned by the producing backend.
	BackendData BackendData

	// Completed is set by the federation engine once the document has
	// passed through enrichment.
	Completed bool
}

// NewDocument returns an empty document with References marked unknown.
func NewDocument() *Document {
	return &Document{References: -1}
}

// Copy returns a deep copy of the document. BackendData is copied through
// its CopyData hook.
func (d *Document) Copy() *Document {
	if d == nil {
		return nil
	}
	out := *d
	if d.BackendData != nil {
		out.BackendData = d.BackendData.CopyData()
	}
	return &out
}

// IsEqual compares the user-visible text and number fields of two
// documents. It is a bitwise-sense equality used to detect repeated
// queries, not an identity test for "same work".
func (d *Document) IsEqual(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.DOI == other.DOI &&
		d.URL == other.URL &&
		d.Year == other.Year &&
		d.Publisher == other.Publisher &&
		d.Volume == other.Volume &&
		d.Pages == other.Pages &&
		d.Author == other.Author &&
		d.Title == other.Title &&
		d.Journal == other.Journal &&
		d.ISSN == other.ISSN &&
		d.Keywords == other.Keywords
}

// Combine fills every empty user-visible field of d from src. Fields
// already set on d are never overwritten.
func (d *Document) Combine(src *Document) {
	if d == nil || src == nil {
		return
	}
	if d.DOI == "" {
		d.DOI = src.DOI
	}
	if d.URL == "" {
		d.URL = src.URL
	}
	if d.Year == 0 {
		d.Year = src.Year
	}
	if d.Publisher == "" {
		d.Publisher = src.Publisher
	}
	if d.Volume == "" {
		d.Volume = src.Volume
	}
	if d.Pages == "" {
		d.Pages = src.Pages
	}
	if d.Author == "" {
		d.Author = src.Author
	}
	if d.Title == "" {
		d.Title = src.Title
	}
	if d.Journal == "" {
		d.Journal = src.Journal
	}
	if d.ISSN == "" {
		d.ISSN = src.ISSN
	}
	if d.Keywords == "" {
		d.Keywords = src.Keywords
	}
	if d.DownloadURL == "" {
		d.DownloadURL = src.DownloadURL
	}
	if d.Abstract == "" {
		d.Abstract = src.Abstract
	}
	if d.References < 0 {
		d.References = src.References
	}
}

// Field returns the string value of a user-visible text field, or "" for
// number fields. Used by the renderers and by FillRequest satisfaction.
func (d *Document) Field(f Field) string {
	switch f {
	case FieldDOI:
		return d.DOI
	case FieldURL:
		return d.URL
	case FieldPublisher:
		return d.Publisher
	case FieldVolume:
		return d.Volume
	case FieldPages:
		return d.Pages
	case FieldAuthor:
		return d.Author
	case FieldTitle:
		return d.Title
	case FieldJournal:
		return d.Journal
	case FieldISSN:
		return d.ISSN
	case FieldKeywords:
		return d.Keywords
	case FieldDownloadURL:
		return d.DownloadURL
	case FieldAbstract:
		return d.Abstract
	default:
		return ""
	}
}

// HasField reports whether the given field carries a usable value:
// non-empty for strings, non-sentinel for Year and References.
func (d *Document) HasField(f Field) bool {
	switch f {
	case FieldYear:
		return d.Year != 0
	case FieldReferences:
		return d.References >= 0
	default:
		return d.Field(f) != ""
	}
}
