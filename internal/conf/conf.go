// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package conf loads the layered INI configuration. Up to four sources are
// merged, later layers overriding earlier ones: the system file, the
// per-user file, a caller-supplied path, and caller-supplied raw bytes.
// Values are addressed as group/key pairs matching the INI sections.
package conf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/pdiddy/scipaper/internal/logging"
	"github.com/pdiddy/scipaper/internal/secrets"
)

const (
	systemConfigPath = "/etc/scipaper/scipaper.ini"
	userConfigRel    = ".config/scipaper/scipaper.ini"
	secretsDir       = ".secrets/"
)

// Conf is one merged view of the configuration layers plus the secrets
// directory overlay.
type Conf struct {
	v       *viper.Viper
	secrets map[string]string
}

// Load merges the configuration layers. configPath is only honored when it
// ends in ".ini"; raw, when non-empty, is parsed as INI text and applied
// last. Missing files are skipped silently; unparseable ones fail the load.
func Load(configPath string, raw []byte) (*Conf, error) {
	v := viper.New()
	v.SetConfigType("ini")

	paths := []string{systemConfigPath}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, userConfigRel))
	}
	if configPath != "" {
		if strings.HasSuffix(configPath, ".ini") {
			paths = append(paths, configPath)
		} else {
			logging.L().Warn("ignoring config path without .ini suffix", "path", configPath)
		}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging config file %s: %w", path, err)
		}
	}

	if len(raw) > 0 {
		if err := v.MergeConfig(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("merging in-memory config: %w", err)
		}
	}

	s, err := secrets.Load(secretsDir)
	if err != nil {
		logging.L().Warn("secrets directory unreadable", "err", err)
		s = map[string]string{}
	}

	return &Conf{v: v, secrets: s}, nil
}

// key builds the viper lookup key for a group/key pair.
func key(group, name string) string {
	return group + "." + name
}

// GetString returns the string value for group/key, falling back to the
// secrets overlay and then to def.
func (c *Conf) GetString(group, name, def string) string {
	if c.v.IsSet(key(group, name)) {
		return c.v.GetString(key(group, name))
	}
	if s, ok := c.secrets[secrets.Key(group, name)]; ok {
		return s
	}
	return def
}

// GetInt returns the integer value for group/key, or def when absent or
// not coercible.
func (c *Conf) GetInt(group, name string, def int) int {
	if !c.v.IsSet(key(group, name)) {
		return def
	}
	n, err := cast.ToIntE(c.v.Get(key(group, name)))
	if err != nil {
		logging.L().Warn("config value is not an integer", "group", group, "key", name)
		return def
	}
	return n
}

// GetBool returns the boolean value for group/key, or def when absent.
func (c *Conf) GetBool(group, name string, def bool) bool {
	if !c.v.IsSet(key(group, name)) {
		return def
	}
	b, err := cast.ToBoolE(c.v.Get(key(group, name)))
	if err != nil {
		logging.L().Warn("config value is not a boolean", "group", group, "key", name)
		return def
	}
	return b
}

// GetStringList returns the keyfile-style string list for group/key.
// Entries are separated by ';' or ','; surrounding whitespace is trimmed
// and empty entries dropped.
func (c *Conf) GetStringList(group, name string) []string {
	raw := c.GetString(group, name, "")
	if raw == "" {
		return nil
	}
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ','
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// GetTimeout returns the per-request timeout configured for group, using
// the shared Core default when the group has none.
func (c *Conf) GetTimeout(group string) time.Duration {
	def := c.GetInt("Core", "Timeout", 20)
	return time.Duration(c.GetInt(group, "Timeout", def)) * time.Second
}
