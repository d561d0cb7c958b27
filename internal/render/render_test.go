// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pdiddy/scipaper/pkg/types"
)

func sampleDoc() *types.Document {
	doc := types.NewDocument()
	doc.DOI = "10.1002/ange.19410544309"
	doc.URL = "https://publisher.example/landing"
	doc.Year = 1941
	doc.Publisher = "Wiley"
	doc.Volume = "54"
	doc.Pages = "531-545"
	doc.Author = "Otto Hahn, Fritz Strassmann"
	doc.Title = "Some title"
	doc.Journal = "Angewandte Chemie"
	doc.ISSN = "0044-8249"
	doc.Keywords = "fission, chemistry"
	doc.DownloadURL = "https://publisher.example/file.pdf"
	doc.Abstract = "An abstract."
	doc.References = 12
	return doc
}

// --- JSON emission ---

func TestDocumentJSONSuppressesSentinels(t *testing.T) {
	doc := types.NewDocument()
	doc.DOI = "10/abc"
	doc.Title = "T"

	got := DocumentJSON(doc, "", types.FillAll())
	want := `{"doi":"10/abc","title":"T","full-text":null}`
	if got != want {
		t.Errorf("DocumentJSON = %s, want %s", got, want)
	}
}

func TestDocumentJSONIsValidJSON(t *testing.T) {
	got := DocumentJSON(sampleDoc(), "body text", nil)
	var parsed map[string]any
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, got)
	}
	if parsed["full-text"] != "body text" {
		t.Errorf("full-text = %v", parsed["full-text"])
	}
	if parsed["year"] != float64(1941) {
		t.Errorf("year = %v", parsed["year"])
	}
}

func TestDocumentJSONEscapesStrings(t *testing.T) {
	doc := types.NewDocument()
	doc.Title = `He said "fission"` + "\n"
	doc.Author = "A B"

	got := DocumentJSON(doc, "", nil)
	var parsed map[string]any
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed["title"] != doc.Title {
		t.Errorf("title did not round-trip escaping: %v", parsed["title"])
	}
}

func TestDocumentJSONFillRequestRestrictsKeys(t *testing.T) {
	req := types.NewFillRequest(types.FieldDOI, types.FieldYear)
	got := DocumentJSON(sampleDoc(), "", req)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(parsed) != 3 { // doi, year, full-text
		t.Errorf("keyset = %v, want doi/year/full-text only", parsed)
	}
	if _, ok := parsed["title"]; ok {
		t.Error("title should not be emitted")
	}
}

// --- JSON loading ---

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc := sampleDoc()
	loaded := DocumentFromJSON([]byte(DocumentJSON(doc, "", nil)))
	if loaded == nil {
		t.Fatal("round-trip load returned nil")
	}
	if !loaded.IsEqual(doc) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", loaded, doc)
	}
	if loaded.DownloadURL != doc.DownloadURL || loaded.Abstract != doc.Abstract || loaded.References != doc.References {
		t.Error("download-url, abstract, or references did not round-trip")
	}
}

func TestDocumentFromJSONMissingKeys(t *testing.T) {
	doc := DocumentFromJSON([]byte(`{"doi":"10/x"}`))
	if doc == nil {
		t.Fatal("load returned nil")
	}
	if doc.DOI != "10/x" || doc.Title != "" {
		t.Errorf("unexpected fields: %+v", doc)
	}
	if doc.Year != 0 || doc.References != -1 {
		t.Errorf("sentinels not restored: year=%d references=%d", doc.Year, doc.References)
	}
}

func TestDocumentFromJSONIgnoresUnknownKeys(t *testing.T) {
	doc := DocumentFromJSON([]byte(`{"doi":"10/x","no-such-key":true}`))
	if doc == nil || doc.DOI != "10/x" {
		t.Errorf("unknown keys should be ignored, got %+v", doc)
	}
}

func TestDocumentFromJSONInvalid(t *testing.T) {
	if doc := DocumentFromJSON(nil); doc != nil {
		t.Error("empty input should load as nil")
	}
	if doc := DocumentFromJSON([]byte("{broken")); doc != nil {
		t.Error("invalid input should load as nil")
	}
}

// --- BibLaTeX ---

func TestDocumentBibLaTeXCiteKey(t *testing.T) {
	doc := types.NewDocument()
	doc.Author = "Alice Lastname, Bob Otherson"
	doc.Year = 2020
	doc.Title = "T"

	got := DocumentBibLaTeX(doc, "")
	if !strings.HasPrefix(got, "@article{ALICELASTNAMEBO2020,\n") {
		t.Errorf("cite key wrong:\n%s", got)
	}
	if strings.Contains(got, "references=") {
		t.Errorf("unknown references count must not be emitted:\n%s", got)
	}
}

func TestDocumentBibLaTeXFull(t *testing.T) {
	doc := types.NewDocument()
	doc.Author = "Yanzhou Duan, Jinpeng Tian"
	doc.Year = 2021
	doc.Title = "Deep neural network battery impedance spectra prediction by only using constant-current curve"
	doc.Journal = "Energy Storage Materials"
	doc.DOI = "10.1016/j.ensm.2021.05.047"
	doc.DownloadURL = "https://publisher.example/file.pdf"
	doc.Abstract = "Onboard impedance acquisition is hard."
	doc.References = 12

	got := DocumentBibLaTeX(doc, "")
	for _, want := range []string{
		"@article{YANZHOUDUANJT2021,\n",
		"\tauthor={Yanzhou Duan and Jinpeng Tian},\n",
		"\ttitle={Deep neural network battery impedance spectra prediction by only using constant-current curve},\n",
		"\tdoi={10.1016/j.ensm.2021.05.047},\n",
		"\tyear={2021},\n",
		"\tjournal={Energy Storage Materials},\n",
		"\tdownload-url={https://publisher.example/file.pdf},\n",
		"\tabstract={Onboard impedance acquisition is hard.},\n",
		"\treferences={12},\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "}\n") {
		t.Errorf("entry not terminated:\n%s", got)
	}
}

func TestDocumentBibLaTeXNoAuthor(t *testing.T) {
	doc := types.NewDocument()
	doc.Title = "T"
	if got := DocumentBibLaTeX(doc, ""); got != "" {
		t.Errorf("author-less document should not render, got:\n%s", got)
	}
}

func TestDocumentBibLaTeXNoYearRandomSuffix(t *testing.T) {
	doc := types.NewDocument()
	doc.Author = "Solo Author"

	got := DocumentBibLaTeX(doc, "")
	if !strings.HasPrefix(got, "@article{SOLOAUTHOR") {
		t.Fatalf("unexpected key:\n%s", got)
	}
	key := strings.TrimPrefix(strings.SplitN(got, ",", 2)[0], "@article{")
	suffix := strings.TrimPrefix(key, "SOLOAUTHOR")
	if len(suffix) != 5 {
		t.Errorf("expected 5-digit suffix, got %q", suffix)
	}
}

func TestDocumentBibLaTeXEntryTypeOverride(t *testing.T) {
	doc := types.NewDocument()
	doc.Author = "A B"
	doc.Year = 1999
	got := DocumentBibLaTeX(doc, "inproceedings")
	if !strings.HasPrefix(got, "@inproceedings{") {
		t.Errorf("entry type not honored:\n%s", got)
	}
}
