// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scipaper is the public face of the library: lifecycle, the
// federated lookup operations, and backend registration for embedders
// that bring their own sources.
//
// The library is designed for a single-threaded cooperative caller. Call
// Init once, use the lookups, call Exit. All registry and configuration
// state is process-wide.
package scipaper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pdiddy/scipaper/internal/conf"
	"github.com/pdiddy/scipaper/internal/logging"
	"github.com/pdiddy/scipaper/internal/modules"
	"github.com/pdiddy/scipaper/internal/registry"
	"github.com/pdiddy/scipaper/pkg/types"
)

var activeConf *conf.Conf

// Init brings the library up: logging, the layered configuration
// (configPath and rawConfig are the two caller-controlled layers, both
// optional), and every backend module named in the Modules/Modules
// configuration list. A failing module fails the whole init.
func Init(configPath string, rawConfig []byte) error {
	if activeConf != nil {
		return fmt.Errorf("library is already initialized")
	}

	c, err := conf.Load(configPath, rawConfig)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := modules.Init(c); err != nil {
		return fmt.Errorf("loading modules: %w", err)
	}

	activeConf = c
	return nil
}

// Exit tears the library down: modules unload in reverse order and the
// configuration is dropped. Backends registered outside the module
// system and never unregistered are reported as leaks.
func Exit() {
	modules.Exit()
	if leaked := registry.LeakedNames(); len(leaked) > 0 {
		logging.L().Warn("backends still registered at exit", "names", leaked)
	}
	activeConf = nil
}

// Config returns the active configuration, or nil before Init.
func Config() *conf.Conf {
	return activeConf
}

// SetVerbosity adjusts the log level of the library's stderr logger.
func SetVerbosity(level slog.Level) {
	logging.SetVerbosity(level)
}

// SetLogOutput redirects the library's logger, for embedders that manage
// their own sinks.
func SetLogOutput(w io.Writer) {
	logging.SetOutput(w)
}

// RegisterBackend installs a caller-provided backend and returns its id.
// Any of the three operations may be nil; the descriptor's capability
// bits must match the non-nil ones.
func RegisterBackend(desc *types.BackendDescriptor, fill registry.FillMetaFunc, text registry.GetTextFunc, pdf registry.GetPDFFunc) int {
	return registry.Register(desc, fill, text, pdf)
}

// UnregisterBackend removes a backend registered through RegisterBackend.
func UnregisterBackend(id int) {
	registry.Unregister(id)
}

// FillMeta searches all capable backends for documents matching the
// query and completes missing fields across backends until fillReq is
// satisfied. See the field-by-field query semantics on types.Document.
func FillMeta(ctx context.Context, query *types.Document, fillReq *types.FillRequest, maxCount, page int, sort types.SortMode) *types.RequestResult {
	return registry.FillMeta(ctx, query, fillReq, maxCount, page, sort)
}

// FindByDOI returns the single best record for a DOI. backendID pins the
// lookup to one backend; zero searches all.
func FindByDOI(ctx context.Context, doi string, backendID int) *types.Document {
	return registry.FindByDOI(ctx, doi, backendID)
}

// FindByTitle searches by title and returns up to maxCount records.
func FindByTitle(ctx context.Context, title string, maxCount int) *types.RequestResult {
	query := types.NewDocument()
	query.Title = title
	return registry.FillMeta(ctx, query, nil, maxCount, 0, types.SortRelevance)
}

// FindByAuthor searches by author and returns up to maxCount records.
func FindByAuthor(ctx context.Context, author string, maxCount int) *types.RequestResult {
	query := types.NewDocument()
	query.Author = author
	return registry.FillMeta(ctx, query, nil, maxCount, 0, types.SortRelevance)
}

// FindByJournal searches by journal name and returns up to maxCount
// records.
func FindByJournal(ctx context.Context, journal string, maxCount int) *types.RequestResult {
	query := types.NewDocument()
	query.Journal = journal
	return registry.FillMeta(ctx, query, nil, maxCount, 0, types.SortRelevance)
}

// FindByKeywords searches by keyword list (comma separated) and returns
// up to maxCount records.
func FindByKeywords(ctx context.Context, keywords string, maxCount int) *types.RequestResult {
	query := types.NewDocument()
	query.Keywords = keywords
	return registry.FillMeta(ctx, query, nil, maxCount, 0, types.SortRelevance)
}

// FindByText runs a free-text search and returns up to maxCount records.
func FindByText(ctx context.Context, text string, maxCount int) *types.RequestResult {
	query := types.NewDocument()
	query.SearchText = text
	return registry.FillMeta(ctx, query, nil, maxCount, 0, types.SortRelevance)
}

// GetText returns the full body text of a document from the first
// backend able to supply it.
func GetText(ctx context.Context, doc *types.Document) (string, bool) {
	return registry.GetText(ctx, doc)
}

// GetPDF returns the raw PDF of a document from the first backend able
// to supply it.
func GetPDF(ctx context.Context, doc *types.Document) *types.PdfBlob {
	return registry.GetPDF(ctx, doc)
}

// SavePDF writes a previously fetched blob to path.
func SavePDF(blob *types.PdfBlob, path string) error {
	if blob == nil || len(blob.Data) == 0 {
		return fmt.Errorf("no pdf data to save")
	}
	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return fmt.Errorf("writing pdf %s: %w", path, err)
	}
	return nil
}

// SaveDocumentPDF fetches the document's PDF and writes it to path.
func SaveDocumentPDF(ctx context.Context, doc *types.Document, path string) error {
	blob := GetPDF(ctx, doc)
	if blob == nil {
		return fmt.Errorf("no backend could supply the pdf")
	}
	return SavePDF(blob, path)
}

// Backends returns the descriptors of all registered backends, newest
// registration first.
func Backends() []*types.BackendDescriptor {
	return registry.Snapshot()
}

// BackendInfo returns the descriptor for a backend id, or nil.
func BackendInfo(id int) *types.BackendDescriptor {
	return registry.Descriptor(id)
}

// BackendName returns the name for a backend id, or "".
func BackendName(id int) string {
	return registry.Name(id)
}

// BackendID returns the id for a backend name, or 0.
func BackendID(name string) int {
	return registry.ID(name)
}

// BackendCount returns the number of registered backends.
func BackendCount() int {
	return registry.Count()
}
