package config

import (
	"os"
	"path/filepath"

	"github.com/example/mediaedit/internal/logging"
)

// EnvPath names the environment variable that points at a config file.
const EnvPath = "MEDIAEDIT_CONFIG"

// Loader finds and reads the configuration file.
type Loader struct {
	Version      string // build version; "dev" also searches the working directory
	OverridePath string // set at build time or by tests
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the first config file found by GetConfigPath. Without one the
// defaults are returned.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}
	logging.Logger().Debug("loading config", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Candidates lists the places searched for a config file, most specific
// first.
func (l *Loader) Candidates() []string {
	var out []string
	if l.OverridePath != "" {
		out = append(out, l.OverridePath)
	}
	if p := os.Getenv(EnvPath); p != "" {
		out = append(out, p)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			out = append(out, filepath.Join(wd, ".mediaeditrc"))
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		out = append(out,
			filepath.Join(dir, "mediaedit", "config.rc"),
			filepath.Join(dir, "mediaedit", "mediaedit.rc"),
		)
	}
	return out
}

// GetConfigPath returns the first existing candidate, or "" when there is
// none.
func (l *Loader) GetConfigPath() string {
	for _, p := range l.Candidates() {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// SavePath is where a new config file is written: the existing file when
// there is one, otherwise config.rc in the user config directory.
func (l *Loader) SavePath() (string, error) {
	if p := l.GetConfigPath(); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mediaedit", "config.rc"), nil
}
