package workspace

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Backend names accepted in Config.Backend.
const (
	BackendFS     = "fs"
	BackendBadger = "badger"
)

// Duration wraps time.Duration so TOML values can be written as "250ms"
// or "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML encoding.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config carries every workspace-wide default explicitly; there is no
// ambient global state. Zero-valued fields are filled from
// DefaultConfig.
type Config struct {
	// DefaultBranch is the branch a workspace tracks when opened.
	DefaultBranch string `toml:"default_branch"`

	// AuthorName and AuthorEmail identify commits made without an
	// explicit signature.
	AuthorName  string `toml:"author_name"`
	AuthorEmail string `toml:"author_email"`

	// TZOffsetMinutes, when set, fixes the UTC offset recorded in
	// signatures. When nil the local timezone at the commit instant is
	// used.
	TZOffsetMinutes *int `toml:"tz_offset_minutes"`

	// LockWaitInterval is the sleep between advisory-lock contention
	// checks; LockWaitTimeout is the total wall-clock budget before
	// acquisition gives up.
	LockWaitInterval Duration `toml:"lock_wait_interval"`
	LockWaitTimeout  Duration `toml:"lock_wait_timeout"`

	// Backend selects the object storage backend: "fs" or "badger".
	Backend string `toml:"backend"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultBranch:    "main",
		AuthorName:       "treedb",
		AuthorEmail:      "treedb@localhost",
		LockWaitInterval: Duration{250 * time.Millisecond},
		LockWaitTimeout:  Duration{30 * time.Second},
		Backend:          BackendFS,
	}
}

// LoadConfig reads a TOML config file. A missing file yields the
// defaults; a present file has unset fields defaulted.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// WriteConfig writes the config as TOML, creating or replacing the file.
func WriteConfig(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("write config %s: encode: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.DefaultBranch == "" {
		c.DefaultBranch = def.DefaultBranch
	}
	if c.AuthorName == "" {
		c.AuthorName = def.AuthorName
	}
	if c.AuthorEmail == "" {
		c.AuthorEmail = def.AuthorEmail
	}
	if c.LockWaitInterval.Duration == 0 {
		c.LockWaitInterval = def.LockWaitInterval
	}
	if c.LockWaitTimeout.Duration == 0 {
		c.LockWaitTimeout = def.LockWaitTimeout
	}
	if c.Backend == "" {
		c.Backend = def.Backend
	}
}
