package tuner

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"

	"github.com/dbrainlab/autoindex/advisor"
)

// Duration wraps time.Duration so TOML values like `"3m"` decode.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Settings is the configuration surface of the automatic tuner.
type Settings struct {
	// BrainEnabled turns the periodic tuning job on.
	BrainEnabled bool `toml:"brain_enabled"`
	// NumQueriesThreshold gates tuning: a pass runs only when the number of
	// new history entries is strictly greater than this value.
	NumQueriesThreshold int `toml:"num_queries_threshold"`
	// MaxIndexCols is the maximum number of columns per recommended index.
	MaxIndexCols int `toml:"max_index_cols"`
	// EnumerationThreshold bounds the exhaustive-enumeration width.
	EnumerationThreshold int `toml:"enumeration_threshold"`
	// NumIndexes caps the number of recommended indexes.
	NumIndexes int `toml:"num_indexes"`
	// WaitInterval is the pause between tuning passes.
	WaitInterval Duration `toml:"wait_interval"`
}

// DefaultSettings returns the default tuner configuration.
func DefaultSettings() Settings {
	knobs := advisor.DefaultKnobs()
	return Settings{
		BrainEnabled:         true,
		NumQueriesThreshold:  10,
		MaxIndexCols:         knobs.MaxIndexCols,
		EnumerationThreshold: knobs.EnumerationThreshold,
		NumIndexes:           knobs.NumIndexes,
		WaitInterval:         Duration{3 * time.Minute},
	}
}

// LoadSettings reads a TOML settings file on top of the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Settings{}, errors.Annotatef(err, "load settings from %v", path)
	}
	if s.WaitInterval.Duration <= 0 {
		return Settings{}, errors.Errorf("wait_interval must be positive, got %v", s.WaitInterval.Duration)
	}
	if s.NumQueriesThreshold < 0 {
		return Settings{}, errors.Errorf("num_queries_threshold must not be negative, got %v", s.NumQueriesThreshold)
	}
	return s, nil
}

// Knobs returns the advisor tunables of these settings.
func (s Settings) Knobs() advisor.Knobs {
	return advisor.Knobs{
		MaxIndexCols:         s.MaxIndexCols,
		EnumerationThreshold: s.EnumerationThreshold,
		NumIndexes:           s.NumIndexes,
	}
}
