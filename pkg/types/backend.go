// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Capability flags the operations a backend implements.
type Capability uint8

const (
	// CapFill marks backends that can fill document metadata.
	CapFill Capability = 1 << iota
	// CapGetText marks backends that can fetch full texts.
	CapGetText
	// CapGetPDF marks backends that can fetch PDF data.
	CapGetPDF
)

// Has reports whether all the given capability bits are set.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

func (c Capability) String() string {
	var parts []string
	if c.Has(CapFill) {
		parts = append(parts, "fill")
	}
	if c.Has(CapGetText) {
		parts = append(parts, "text")
	}
	if c.Has(CapGetPDF) {
		parts = append(parts, "pdf")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// BackendDescriptor names a backend and declares its capabilities. Names
// are case-sensitive and assumed unique across registrations.
type BackendDescriptor struct {
	Name         string
	Capabilities Capability
}

// SortMode orders search results. The semantics are advisory: a backend
// that cannot honor the requested order falls back to relevance.
type SortMode int

const (
	// SortInvalid marks an unrecognized sort mode.
	SortInvalid SortMode = iota - 1
	SortRelevance
	SortReferences
	SortOldest
	SortNewest
)

func (s SortMode) String() string {
	switch s {
	case SortRelevance:
		return "relevance"
	case SortReferences:
		return "references"
	case SortOldest:
		return "oldest"
	case SortNewest:
		return "newest"
	default:
		return "invalid"
	}
}

// ParseSortMode maps a string to a SortMode, returning SortInvalid for
// anything unrecognized so misuse is caught at the boundary.
func ParseSortMode(s string) SortMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relevance", "":
		return SortRelevance
	case "references", "citations":
		return SortReferences
	case "oldest":
		return SortOldest
	case "newest":
		return SortNewest
	default:
		return SortInvalid
	}
}
