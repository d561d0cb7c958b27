// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeINI(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRawOnly(t *testing.T) {
	c, err := Load("", []byte("[Core]\nApiKey=k1\nRetry=3\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.GetString("Core", "ApiKey", ""); got != "k1" {
		t.Errorf("ApiKey = %q", got)
	}
	if got := c.GetInt("Core", "Retry", 1); got != 3 {
		t.Errorf("Retry = %d", got)
	}
}

func TestRawOverridesFile(t *testing.T) {
	path := writeINI(t, t.TempDir(), "scipaper.ini", "[Core]\nApiKey=from-file\nRateLimit=5\n")

	c, err := Load(path, []byte("[Core]\nApiKey=from-raw\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.GetString("Core", "ApiKey", ""); got != "from-raw" {
		t.Errorf("ApiKey = %q, raw bytes must win", got)
	}
	if got := c.GetInt("Core", "RateLimit", 0); got != 5 {
		t.Errorf("RateLimit = %d, file value must survive the merge", got)
	}
}

func TestNonINIPathIgnored(t *testing.T) {
	path := writeINI(t, t.TempDir(), "scipaper.conf", "[Core]\nApiKey=ignored\n")

	c, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.GetString("Core", "ApiKey", "def"); got != "def" {
		t.Errorf("ApiKey = %q, non-ini path must not be read", got)
	}
}

func TestMissingFileSkipped(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.ini"), nil); err != nil {
		t.Errorf("missing file must be skipped, got %v", err)
	}
}

func TestBrokenFileFails(t *testing.T) {
	path := writeINI(t, t.TempDir(), "broken.ini", "[Core\nnot ini")
	if _, err := Load(path, nil); err == nil {
		t.Error("unparseable file must fail the load")
	}
}

func TestDefaults(t *testing.T) {
	c, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.GetString("Crossref", "Email", ""); got != "" {
		t.Errorf("Email = %q", got)
	}
	if got := c.GetInt("Core", "RateLimit", 10); got != 10 {
		t.Errorf("RateLimit = %d", got)
	}
	if got := c.GetBool("Core", "NoSuch", true); got != true {
		t.Error("bool default not honored")
	}
}

func TestBadIntFallsBack(t *testing.T) {
	c, err := Load("", []byte("[Core]\nRetry=lots\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.GetInt("Core", "Retry", 2); got != 2 {
		t.Errorf("Retry = %d, bad value must fall back", got)
	}
}

func TestGetStringList(t *testing.T) {
	c, err := Load("", []byte("[Modules]\nModules=crossref; core ,scihub;\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := c.GetStringList("Modules", "Modules")
	want := []string{"crossref", "core", "scihub"}
	if len(got) != len(want) {
		t.Fatalf("list = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("list[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if c.GetStringList("Modules", "NoSuch") != nil {
		t.Error("absent list must be nil")
	}
}

func TestGetTimeout(t *testing.T) {
	c, err := Load("", []byte("[Core]\nTimeout=7\n[Scihub]\nTimeout=90\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := c.GetTimeout("Scihub"); got != 90*time.Second {
		t.Errorf("Scihub timeout = %v", got)
	}
	// Groups without their own timeout inherit the Core value.
	if got := c.GetTimeout("Crossref"); got != 7*time.Second {
		t.Errorf("Crossref timeout = %v", got)
	}

	bare, err := Load("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := bare.GetTimeout("Core"); got != 20*time.Second {
		t.Errorf("default timeout = %v", got)
	}
}
