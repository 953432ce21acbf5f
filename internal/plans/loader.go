package plans

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joelnishanth/opsflow/internal/core"
)

// planFile is the on-disk shape of a custom plan file.
type planFile struct {
	Plans []*core.PhasePlan `yaml:"plans"`
}

// LoadFile reads user-defined plans from a YAML file and registers them
// in the catalog. Custom plans may override built-in types.
func (c *Catalog) LoadFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening plan file: %w", err)
	}
	defer f.Close()
	return c.load(f)
}

func (c *Catalog) load(r io.Reader) (int, error) {
	var file planFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return 0, fmt.Errorf("parsing plan file: %w", err)
	}

	if len(file.Plans) == 0 {
		return 0, core.ErrValidation(core.CodeInvalidPlan, "plan file defines no plans")
	}

	// Validate everything before registering anything, so a bad file
	// cannot leave the catalog half updated.
	for _, p := range file.Plans {
		if err := p.Validate(); err != nil {
			return 0, fmt.Errorf("plan %q: %w", p.Type, err)
		}
	}
	for _, p := range file.Plans {
		if err := c.Register(p); err != nil {
			return 0, err
		}
	}
	return len(file.Plans), nil
}
