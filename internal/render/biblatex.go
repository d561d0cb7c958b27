// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/pdiddy/scipaper/pkg/types"
)

// DefaultEntryType is used when the caller does not override the BibLaTeX
// entry type.
const DefaultEntryType = "article"

// DocumentBibLaTeX renders the document as one BibLaTeX entry with every
// non-empty field as a body line. A document without an author cannot be
// keyed and yields "". entryType defaults to article when empty.
func DocumentBibLaTeX(doc *types.Document, entryType string) string {
	if doc == nil || doc.Author == "" {
		return ""
	}
	if entryType == "" {
		entryType = DefaultEntryType
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, citeKey(doc))

	field := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "\t%s={%s},\n", key, value)
		}
	}

	field("author", strings.ReplaceAll(doc.Author, ", ", " and "))
	field("title", doc.Title)
	field("doi", doc.DOI)
	field("url", doc.URL)
	if doc.Year != 0 {
		field("year", fmt.Sprintf("%d", doc.Year))
	}
	field("publisher", doc.Publisher)
	field("volume", doc.Volume)
	field("pages", doc.Pages)
	field("journal", doc.Journal)
	field("issn", doc.ISSN)
	field("keywords", doc.Keywords)
	field("download-url", doc.DownloadURL)
	field("abstract", doc.Abstract)
	if doc.References >= 0 {
		field("references", fmt.Sprintf("%d", doc.References))
	}

	b.WriteString("}\n")
	return b.String()
}

// citeKey builds the entry key: the first author's name with spaces
// removed, then the initial of every following name token, uppercased,
// with the year appended. A document without a year gets a 5-digit
// pseudo-random suffix instead so keys stay unique-ish.
func citeKey(doc *types.Document) string {
	first, rest, _ := strings.Cut(doc.Author, ", ")

	var b strings.Builder
	b.WriteString(strings.ReplaceAll(first, " ", ""))
	for _, token := range strings.Fields(strings.ReplaceAll(rest, ",", " ")) {
		b.WriteByte(token[0])
	}

	key := strings.ToUpper(b.String())
	if doc.Year != 0 {
		return fmt.Sprintf("%s%d", key, doc.Year)
	}
	return fmt.Sprintf("%s%05d", key, rand.Intn(65536))
}
