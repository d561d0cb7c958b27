// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render converts documents to and from their stable external
// representations: the JSON record format and BibLaTeX entries.
package render

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pdiddy/scipaper/internal/logging"
	"github.com/pdiddy/scipaper/pkg/types"
)

// DocumentJSON emits one JSON object for the document with one key per
// user-visible field, in canonical order. A year of 0 and a references
// count below 0 are omitted. The full-text key is always present: it
// carries fullText when non-empty and JSON null otherwise. A non-nil
// fillReq restricts the keyset to the requested fields (plus full-text).
func DocumentJSON(doc *types.Document, fullText string, fillReq *types.FillRequest) string {
	if doc == nil {
		return ""
	}

	var b strings.Builder
	b.WriteByte('{')
	first := true

	emit := func(key, rawValue string) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteByte('"')
		b.WriteString(key)
		b.WriteString(`":`)
		b.WriteString(rawValue)
	}

	for _, f := range types.AllFields() {
		if fillReq != nil && !fillReq.Wants(f) {
			continue
		}
		switch f {
		case types.FieldYear:
			if doc.Year != 0 {
				emit("year", strconv.FormatUint(uint64(doc.Year), 10))
			}
		case types.FieldReferences:
			if doc.References >= 0 {
				emit("references", strconv.Itoa(doc.References))
			}
		default:
			if v := doc.Field(f); v != "" {
				emit(types.FieldName(f), quote(v))
			}
		}
	}

	if fullText != "" {
		emit("full-text", quote(fullText))
	} else {
		emit("full-text", "null")
	}

	b.WriteByte('}')
	return b.String()
}

// quote returns the JSON string literal for s.
func quote(s string) string {
	out, err := json.Marshal(s)
	if err != nil {
		// json.Marshal of a string cannot fail; keep the record valid anyway.
		return `""`
	}
	return string(out)
}

// jsonDocument mirrors the persisted keyset for loading. Runtime state
// (backend data, completion, search text, full-text hint) is not persisted
// and never round-trips.
type jsonDocument struct {
	DOI         string `json:"doi"`
	URL         string `json:"url"`
	Year        *uint  `json:"year"`
	Publisher   string `json:"publisher"`
	Volume      string `json:"volume"`
	Pages       string `json:"pages"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Journal     string `json:"journal"`
	ISSN        string `json:"issn"`
	Keywords    string `json:"keywords"`
	DownloadURL string `json:"download-url"`
	Abstract    string `json:"abstract"`
	References  *int   `json:"references"`
}

// DocumentFromJSON parses one JSON record. Missing keys map to the
// document's zero value and unknown keys are ignored. An empty or invalid
// input returns nil with a logged error.
func DocumentFromJSON(data []byte) *types.Document {
	if len(data) == 0 {
		logging.L().Error("cannot load document from empty input")
		return nil
	}

	var jd jsonDocument
	if err := json.Unmarshal(data, &jd); err != nil {
		logging.L().Error("cannot parse document json", "err", err)
		return nil
	}

	doc := types.NewDocument()
	doc.DOI = jd.DOI
	doc.URL = jd.URL
	if jd.Year != nil {
		doc.Year = *jd.Year
	}
	doc.Publisher = jd.Publisher
	doc.Volume = jd.Volume
	doc.Pages = jd.Pages
	doc.Author = jd.Author
	doc.Title = jd.Title
	doc.Journal = jd.Journal
	doc.ISSN = jd.ISSN
	doc.Keywords = jd.Keywords
	doc.DownloadURL = jd.DownloadURL
	doc.Abstract = jd.Abstract
	if jd.References != nil {
		doc.References = *jd.References
	}
	return doc
}
