// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pdiddy/scipaper/pkg/scipaper"
	"github.com/pdiddy/scipaper/pkg/types"
)

// Result pages may carry nil entries; the listing must skip them and
// still report the page's full count.
func TestSearchSkipsNilDocuments(t *testing.T) {
	doc := types.NewDocument()
	doc.Title = "Kept record"
	doc.Author = "A B"
	fill := func(ctx context.Context, query *types.Document, maxCount, page int, sort types.SortMode) *types.RequestResult {
		return types.NewRequestResult([]*types.Document{doc.Copy(), nil}, maxCount, page, 2)
	}
	id := scipaper.RegisterBackend(
		&types.BackendDescriptor{Name: "canned", Capabilities: types.CapFill},
		fill, nil, nil)
	defer scipaper.UnregisterBackend(id)

	var out bytes.Buffer
	searchCmd.SetOut(&out)
	searchCmd.SetContext(context.Background())
	if err := searchCmd.Flags().Set("author", "A B"); err != nil {
		t.Fatal(err)
	}
	defer searchCmd.Flags().Set("author", "")

	if err := searchCmd.RunE(searchCmd, nil); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out.String(), "Kept record") {
		t.Errorf("output missing the surviving record:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "2 of 2 total") {
		t.Errorf("count line wrong:\n%s", out.String())
	}
}
