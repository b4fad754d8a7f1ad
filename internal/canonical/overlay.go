package canonical

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Overlay extends the built-in synonym tables with deployment-specific
// entries. Keys are matched after the same normalization as the built-ins.
type Overlay struct {
	Platforms map[string]string `yaml:"platforms"`
	Countries map[string]string `yaml:"countries"`
}

// LoadOverlayFile reads a YAML overlay and merges it into the synonym tables.
// Call once during startup, before any lookups; the tables are not safe to
// mutate afterwards.
func LoadOverlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "canonical: read overlay %s", path)
	}

	var ov Overlay
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return eris.Wrap(err, "canonical: parse overlay")
	}

	for raw, label := range ov.Platforms {
		platformLabels[strings.ToLower(strings.TrimSpace(raw))] = label
	}
	for raw, label := range ov.Countries {
		countryLabels[countryKey(raw)] = label
	}
	return nil
}
