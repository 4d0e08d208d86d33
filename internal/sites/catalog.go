// Package sites provides the built-in observatory catalog shipped with the
// binary and its merge with user-configured sites.
package sites

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fyodor-project/fyodor/pkg/pwv"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogFile struct {
	Sites []struct {
		Name       string  `yaml:"name"`
		Latitude   float64 `yaml:"latitude"`
		Longitude  float64 `yaml:"longitude"`
		ElevationM float64 `yaml:"elevation_m"`
	} `yaml:"sites"`
}

// Catalog resolves site names to locations. Lookup is case-insensitive and
// tolerant of separators ("Apache Point" matches "apache_point").
type Catalog struct {
	sites map[string]pwv.Location
}

// Builtin returns the catalog embedded in the binary.
func Builtin() (*Catalog, error) {
	return Load(nil)
}

// Load returns the built-in catalog merged with user sites. User entries
// shadow built-in ones with the same normalized name.
func Load(user map[string]pwv.Location) (*Catalog, error) {
	var parsed catalogFile
	if err := yaml.Unmarshal(catalogYAML, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse built-in site catalog: %w", err)
	}

	c := &Catalog{sites: make(map[string]pwv.Location, len(parsed.Sites)+len(user))}
	for _, s := range parsed.Sites {
		loc := pwv.Location{
			Name:         s.Name,
			LatitudeDeg:  s.Latitude,
			LongitudeDeg: s.Longitude,
			ElevationM:   s.ElevationM,
		}
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("built-in site %s: %w", s.Name, err)
		}
		c.sites[Normalize(s.Name)] = loc
	}
	for name, loc := range user {
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("site %s: %w", name, err)
		}
		if loc.Name == "" {
			loc.Name = name
		}
		c.sites[Normalize(name)] = loc
	}
	return c, nil
}

// Lookup finds a site by name.
func (c *Catalog) Lookup(name string) (pwv.Location, bool) {
	loc, ok := c.sites[Normalize(name)]
	return loc, ok
}

// All returns every site sorted by name.
func (c *Catalog) All() []pwv.Location {
	out := make([]pwv.Location, 0, len(c.sites))
	for _, loc := range c.sites {
		out = append(out, loc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Normalize maps a site name to its catalog key: lower case with
// underscores for spaces and dashes.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
