// Package config carries the compiler-wide settings shared by every pass.
package config

type Warning int

const (
	WarnOverflow Warning = iota
	WarnLongCharConst
	WarnUnrecognizedEscape
	WarnExtra
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Warnings   map[Warning]Info
	WarningMap map[string]Warning

	// WordSize is the byte size of a machine word. It is the fixed
	// allocation size of every global variable slot.
	WordSize int
}

func NewConfig() *Config {
	cfg := &Config{
		Warnings:   make(map[Warning]Info),
		WarningMap: make(map[string]Warning),
		WordSize:   8,
	}

	warnings := map[Warning]Info{
		WarnOverflow:           {"overflow", true, "Warn when an integer constant is out of range for a word."},
		WarnLongCharConst:      {"long-char-const", true, "Warn when a character constant holds more than one character."},
		WarnUnrecognizedEscape: {"u-esc", true, "Warn on unrecognized character escape sequences."},
		WarnExtra:              {"extra", true, "Enable extra miscellaneous warnings."},
	}

	cfg.Warnings = warnings
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// SetAllWarnings flips every warning at once, as -Wall / -Wno-all would.
func (c *Config) SetAllWarnings(enabled bool) {
	for i := Warning(0); i < WarnCount; i++ {
		c.SetWarning(i, enabled)
	}
}
