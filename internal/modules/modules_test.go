// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package modules

import (
	"testing"

	"github.com/pdiddy/scipaper/internal/conf"
	"github.com/pdiddy/scipaper/internal/registry"
)

func loadConf(t *testing.T, ini string) *conf.Conf {
	t.Helper()
	c, err := conf.Load("", []byte(ini))
	if err != nil {
		t.Fatalf("conf load: %v", err)
	}
	return c
}

func TestInitLoadsListedModules(t *testing.T) {
	c := loadConf(t, "[Modules]\nModules=crossref\n")
	if err := Init(c); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Exit()

	if registry.Count() != 1 {
		t.Errorf("backend count = %d, want 1", registry.Count())
	}
	if registry.ID("crossref") == 0 {
		t.Error("crossref should be registered")
	}
}

func TestInitEmptyListLoadsNothing(t *testing.T) {
	c := loadConf(t, "")
	if err := Init(c); err != nil {
		t.Fatalf("init: %v", err)
	}
	Exit()
	if registry.Count() != 0 {
		t.Errorf("backend count = %d, want 0", registry.Count())
	}
}

func TestInitUnknownModuleFails(t *testing.T) {
	c := loadConf(t, "[Modules]\nModules=crossref;nosuch\n")
	if err := Init(c); err == nil {
		Exit()
		t.Fatal("unknown module must fail init")
	}
	if registry.Count() != 0 {
		t.Errorf("failed init must unwind, count = %d", registry.Count())
	}
}

func TestInitModuleErrorFailsAndUnwinds(t *testing.T) {
	// core refuses to load without an API key.
	c := loadConf(t, "[Modules]\nModules=crossref;core\n")
	if err := Init(c); err == nil {
		Exit()
		t.Fatal("core without ApiKey must fail init")
	}
	if registry.Count() != 0 {
		t.Errorf("failed init must unwind crossref too, count = %d", registry.Count())
	}
}

func TestInitAllReferenceModules(t *testing.T) {
	c := loadConf(t, `[Modules]
Modules=crossref;core;scihub;arxiv

[Core]
ApiKey=k

[Scihub]
Url=https://mirror.example/
`)
	if err := Init(c); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer Exit()

	if registry.Count() != 4 {
		t.Errorf("backend count = %d, want 4", registry.Count())
	}
	// Registration order follows the list, so the registry walk order
	// is the reverse of it.
	if registry.Snapshot()[0].Name != "arxiv" {
		t.Errorf("newest backend = %s, want arxiv", registry.Snapshot()[0].Name)
	}
}

func TestExitIsIdempotent(t *testing.T) {
	c := loadConf(t, "[Modules]\nModules=crossref\n")
	if err := Init(c); err != nil {
		t.Fatalf("init: %v", err)
	}
	Exit()
	Exit()
	if registry.Count() != 0 {
		t.Errorf("count = %d after double exit", registry.Count())
	}
}
