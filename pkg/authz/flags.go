package authz

import (
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Mode represents the global enforcement mode.
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModeShadow   Mode = "shadow"
	ModeEnforce  Mode = "enforce"
)

// FlagProvider supplies the current enforcement mode.
type FlagProvider interface {
	Mode() Mode
}

// StaticMode is a FlagProvider that always reports the same mode.
type StaticMode Mode

func (s StaticMode) Mode() Mode {
	return sanitizeMode(Mode(s))
}

// FileFlagProvider reads the mode from a YAML file (`mode: enforce`) on
// every call. An unreadable file keeps the last good mode, or the fallback
// before the first good read.
type FileFlagProvider struct {
	path     string
	fallback Mode

	mu       sync.Mutex
	lastMode Mode
}

func NewFileFlagProvider(path string, fallback Mode) *FileFlagProvider {
	return &FileFlagProvider{path: path, fallback: sanitizeMode(fallback)}
}

func (p *FileFlagProvider) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastMode == "" {
		p.lastMode = p.fallback
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p.lastMode
	}
	var doc struct {
		Mode string `yaml:"mode"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil || strings.TrimSpace(doc.Mode) == "" {
		return p.lastMode
	}
	p.lastMode = sanitizeMode(Mode(doc.Mode))
	return p.lastMode
}

// ParseMode returns the mode named by s. Unknown values map to shadow.
func ParseMode(s string) Mode {
	return sanitizeMode(Mode(s))
}

func sanitizeMode(mode Mode) Mode {
	switch strings.ToLower(strings.TrimSpace(string(mode))) {
	case string(ModeDisabled):
		return ModeDisabled
	case string(ModeEnforce):
		return ModeEnforce
	default:
		return ModeShadow
	}
}
