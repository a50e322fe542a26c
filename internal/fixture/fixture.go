// Package fixture provides the demo menu data written by the seeder.
package fixture

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/khabzox/fast-food/internal/domain"
)

//go:embed data.yaml
var defaultData []byte

// Default returns the built-in fixture. Each call returns a fresh copy.
func Default() (*domain.Fixture, error) {
	return Parse(defaultData, "data.yaml")
}

// Load reads a fixture from a YAML or JSON file.
func Load(path string) (*domain.Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes fixture data. Files ending in .json are decoded as JSON,
// anything else as YAML.
func Parse(data []byte, filename string) (*domain.Fixture, error) {
	var f domain.Fixture

	if strings.HasSuffix(filename, ".json") {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse JSON fixture: %w", err)
		}
		return &f, nil
	}

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse YAML fixture: %w", err)
	}
	return &f, nil
}

// Reference kinds reported by Gaps.
const (
	KindCategory      = "category"
	KindCustomization = "customization"
)

// Gap is a menu item reference to a name the fixture does not define.
type Gap struct {
	Item string `json:"item"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func (g Gap) String() string {
	return fmt.Sprintf("menu item %q references unknown %s %q", g.Item, g.Kind, g.Name)
}

// Gaps lists every category and customization reference in f that does not
// resolve to a fixture entry, in menu order.
func Gaps(f *domain.Fixture) []Gap {
	categories := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		categories[c.Name] = true
	}
	customizations := make(map[string]bool, len(f.Customizations))
	for _, c := range f.Customizations {
		customizations[c.Name] = true
	}

	var gaps []Gap
	for _, item := range f.Menu {
		if !categories[item.CategoryName] {
			gaps = append(gaps, Gap{Item: item.Name, Kind: KindCategory, Name: item.CategoryName})
		}
		for _, name := range item.Customizations {
			if !customizations[name] {
				gaps = append(gaps, Gap{Item: item.Name, Kind: KindCustomization, Name: name})
			}
		}
	}
	return gaps
}
