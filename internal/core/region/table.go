package region

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawTable is the on-disk YAML shape of a region table override.
type rawTable struct {
	Country struct {
		Name    string   `yaml:"name"`
		Aliases []string `yaml:"aliases"`
	} `yaml:"country"`
	Regions []Region `yaml:"regions"`
}

// New builds a table and validates it: names are required, a name or alias
// may only resolve to one region, and a state may only belong to one region.
func New(country Region, regions []Region, fingerprint string) (*Table, error) {
	if strings.TrimSpace(country.Name) == "" {
		return nil, fmt.Errorf("region table: country name must not be empty")
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("region table: at least one region is required")
	}

	t := &Table{
		country:     Region{Name: country.Name, Aliases: country.Aliases},
		regions:     make([]Region, 0, len(regions)),
		byName:      make(map[string]int),
		members:     make(map[int]map[string]struct{}),
		fingerprint: fingerprint,
	}

	stateOwner := make(map[string]string)
	for _, r := range regions {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("region table: region name must not be empty")
		}
		idx := len(t.regions)
		for _, name := range append([]string{r.Name}, r.Aliases...) {
			key := normalize(name)
			if key == "" {
				continue
			}
			if t.IsCountry(name) {
				return nil, fmt.Errorf("region %q: name %q collides with the country option", r.Name, name)
			}
			if other, exists := t.byName[key]; exists {
				return nil, fmt.Errorf("region %q: name %q already used by region %q", r.Name, name, t.regions[other].Name)
			}
			t.byName[key] = idx
		}

		members := make(map[string]struct{}, len(r.States)*2)
		for _, st := range r.States {
			if strings.TrimSpace(st.Name) == "" {
				return nil, fmt.Errorf("region %q: state name must not be empty", r.Name)
			}
			for _, key := range []string{normalize(st.Name), normalize(st.Code)} {
				if key == "" {
					continue
				}
				if owner, exists := stateOwner[key]; exists && owner != r.Name {
					return nil, fmt.Errorf("state %q listed in both %q and %q", st.Name, owner, r.Name)
				}
				stateOwner[key] = r.Name
				members[key] = struct{}{}
			}
		}
		t.members[idx] = members
		t.regions = append(t.regions, r)
	}

	return t, nil
}

// LoadFile reads a YAML region table. The SHA-256 of the file becomes the
// table fingerprint.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading region table %s: %w", path, err)
	}

	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing region table %s: %w", path, err)
	}

	country := Region{Name: raw.Country.Name, Aliases: raw.Country.Aliases}
	if country.Name == "" {
		country = builtinCountry
	}

	t, err := New(country, raw.Regions, fmt.Sprintf("%x", sha256.Sum256(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Load returns the builtin table when path is empty, otherwise the file table.
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
