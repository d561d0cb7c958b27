// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "github.com/bits-and-blooms/bitset"

// Field identifies one user-visible document field in a FillRequest.
type Field uint

const (
	FieldDOI Field = iota
	FieldURL
	FieldYear
	FieldPublisher
	FieldVolume
	FieldPages
	FieldAuthor
	FieldTitle
	FieldJournal
	FieldISSN
	FieldKeywords
	FieldDownloadURL
	FieldAbstract
	FieldReferences

	fieldCount
)

// FieldName returns the JSON key for a field.
func FieldName(f Field) string {
	switch f {
	case FieldDOI:
		return "doi"
	case FieldURL:
		return "url"
	case FieldYear:
		return "year"
	case FieldPublisher:
		return "publisher"
	case FieldVolume:
		return "volume"
	case FieldPages:
		return "pages"
	case FieldAuthor:
		return "author"
	case FieldTitle:
		return "title"
	case FieldJournal:
		return "journal"
	case FieldISSN:
		return "issn"
	case FieldKeywords:
		return "keywords"
	case FieldDownloadURL:
		return "download-url"
	case FieldAbstract:
		return "abstract"
	case FieldReferences:
		return "references"
	default:
		return ""
	}
}

// AllFields lists every field a FillRequest can demand, in canonical
// serialization order.
func AllFields() []Field {
	fields := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		fields = append(fields, f)
	}
	return fields
}

// FillRequest is a per-field bitmask naming the fields the caller requires
// in every returned document. A nil *FillRequest means cross-backend
// enrichment is not attempted at all.
type FillRequest struct {
	bits bitset.BitSet
}

// NewFillRequest returns a request demanding the given fields.
func NewFillRequest(fields ...Field) *FillRequest {
	r := &FillRequest{}
	for _, f := range fields {
		r.bits.Set(uint(f))
	}
	return r
}

// FillAll returns a request demanding every field.
func FillAll() *FillRequest {
	return NewFillRequest(AllFields()...)
}

// Set marks a field as required and returns the request for chaining.
func (r *FillRequest) Set(f Field) *FillRequest {
	r.bits.Set(uint(f))
	return r
}

// Wants reports whether the request demands the given field.
func (r *FillRequest) Wants(f Field) bool {
	if r == nil {
		return false
	}
	return r.bits.Test(uint(f))
}

// Satisfied reports whether every demanded field carries a usable value on
// doc: non-empty for strings, Year != 0, References >= 0.
func (r *FillRequest) Satisfied(doc *Document) bool {
	if r == nil {
		return true
	}
	for f := Field(0); f < fieldCount; f++ {
		if r.bits.Test(uint(f)) && !doc.HasField(f) {
			return false
		}
	}
	return true
}
