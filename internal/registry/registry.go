// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry holds the process-wide ordered backend collection and
// the federation engine that routes lookups across it. Backends register
// three optional operations; lookups walk the registrations newest-first
// and stop at the first backend that produces a result.
package registry

import (
	"context"
	"sync"

	"github.com/pdiddy/scipaper/internal/logging"
	"github.com/pdiddy/scipaper/pkg/types"
)

// FillMetaFunc searches a backend for documents matching the query. It
// returns nil when the backend cannot serve the query. Returned documents
// carry the producing backend's id and at most maxCount entries.
type FillMetaFunc func(ctx context.Context, query *types.Document, maxCount, page int, sort types.SortMode) *types.RequestResult

// GetTextFunc returns the full body text of a document, or ok=false when
// the backend cannot obtain it.
type GetTextFunc func(ctx context.Context, doc *types.Document) (string, bool)

// GetPDFFunc returns the raw PDF plus a document describing the resolved
// source, or nil when the backend cannot obtain it.
type GetPDFFunc func(ctx context.Context, doc *types.Document) *types.PdfBlob

// backend is one registration record. Per-backend private state lives in
// the closures; the registry only sees the descriptor and the functions.
type backend struct {
	id   int
	desc *types.BackendDescriptor
	fill FillMetaFunc
	text GetTextFunc
	pdf  GetPDFFunc
}

var (
	mu        sync.Mutex
	backends  []*backend // newest first
	idCounter int
	snapshot  []*types.BackendDescriptor // lazily built, nil when stale
)

// Register adds a backend at the head of the registry so newer
// registrations are tried first, and returns its strictly increasing
// positive id. Any of the three functions may be nil; the descriptor's
// capability bits are checked against them and corrected with a warning
// when they disagree.
func Register(desc *types.BackendDescriptor, fill FillMetaFunc, text GetTextFunc, pdf GetPDFFunc) int {
	mu.Lock()
	defer mu.Unlock()

	var caps types.Capability
	if fill != nil {
		caps |= types.CapFill
	}
	if text != nil {
		caps |= types.CapGetText
	}
	if pdf != nil {
		caps |= types.CapGetPDF
	}
	if desc.Capabilities != caps {
		logging.L().Warn("backend capabilities disagree with provided operations",
			"backend", desc.Name, "declared", desc.Capabilities.String(), "actual", caps.String())
		desc.Capabilities = caps
	}

	idCounter++
	b := &backend{id: idCounter, desc: desc, fill: fill, text: text, pdf: pdf}
	backends = append([]*backend{b}, backends...)
	snapshot = nil
	return b.id
}

// Unregister removes the backend with the given id. Unregistering an
// unknown id emits a warning and is otherwise a no-op.
func Unregister(id int) {
	mu.Lock()
	defer mu.Unlock()

	for i, b := range backends {
		if b.id == id {
			backends = append(backends[:i], backends[i+1:]...)
			snapshot = nil
			return
		}
	}
	logging.L().Warn("trying to remove non-existing backend", "id", id)
}

// Count returns the number of registered backends.
func Count() int {
	mu.Lock()
	defer mu.Unlock()
	return len(backends)
}

// Snapshot returns the backend descriptors in registration order (newest
// first). The slice is rebuilt lazily after every register/unregister.
func Snapshot() []*types.BackendDescriptor {
	mu.Lock()
	defer mu.Unlock()
	if snapshot == nil {
		snapshot = make([]*types.BackendDescriptor, 0, len(backends))
		for _, b := range backends {
			snapshot = append(snapshot, b.desc)
		}
	}
	return snapshot
}

// Descriptor returns the descriptor for the backend with the given id, or
// nil when absent.
func Descriptor(id int) *types.BackendDescriptor {
	mu.Lock()
	defer mu.Unlock()
	for _, b := range backends {
		if b.id == id {
			return b.desc
		}
	}
	return nil
}

// Name returns the name of the backend with the given id, or "" when
// absent.
func Name(id int) string {
	if d := Descriptor(id); d != nil {
		return d.Name
	}
	return ""
}

// ID returns the id of the backend with the given case-sensitive name, or
// 0 when absent.
func ID(name string) int {
	mu.Lock()
	defer mu.Unlock()
	for _, b := range backends {
		if b.desc.Name == name {
			return b.id
		}
	}
	return 0
}

// LeakedNames returns the names of all still-registered backends. Used by
// the teardown check.
func LeakedNames() []string {
	mu.Lock()
	defer mu.Unlock()
	var names []string
	for _, b := range backends {
		names = append(names, b.desc.Name)
	}
	return names
}

// walk returns a stable copy of the registration list so federation calls
// can traverse without holding the registry lock across network I/O.
func walk() []*backend {
	mu.Lock()
	defer mu.Unlock()
	out := make([]*backend, len(backends))
	copy(out, backends)
	return out
}
