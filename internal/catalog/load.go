package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	"golang.org/x/sync/errgroup"
)

//go:embed data/*.json
var dataFS embed.FS

// Catalog bundles the three reference data sets the engine consumes.
type Catalog struct {
	Model    *Model
	Products *Products
	ArcSite  *ArcSite
}

// Load reads the embedded catalog files, applying overrides from dir when
// it is non-empty. Override files may be plain JSON or hand-edited HJSON
// (comments, trailing commas): decision-tree.json/.hjson, products.json/.hjson,
// arcsite-objects.json/.hjson. The three data sets load in parallel.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{
		Model:    &Model{},
		Products: &Products{},
		ArcSite:  &ArcSite{},
	}

	var g errgroup.Group
	g.Go(func() error { return loadFile(dir, "decision-tree", c.Model) })
	g.Go(func() error { return loadFile(dir, "products", c.Products) })
	g.Go(func() error { return loadFile(dir, "arcsite-objects", c.ArcSite) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := c.Model.validate(); err != nil {
		return nil, fmt.Errorf("decision model: %w", err)
	}
	return c, nil
}

// loadFile unmarshals the named data set into target, preferring an
// override file in dir over the embedded copy.
func loadFile(dir, name string, target any) error {
	if dir != "" {
		for _, ext := range []string{".hjson", ".json"} {
			path := filepath.Join(dir, name+ext)
			data, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return fmt.Errorf("reading catalog override %s: %w", path, err)
			}
			if err := unmarshalCatalog(path, data, target); err != nil {
				return err
			}
			return nil
		}
	}

	data, err := dataFS.ReadFile("data/" + name + ".json")
	if err != nil {
		return fmt.Errorf("reading embedded catalog %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parsing embedded catalog %s: %w", name, err)
	}
	return nil
}

func unmarshalCatalog(path string, data []byte, target any) error {
	if strings.HasSuffix(path, ".hjson") {
		if err := hjson.Unmarshal(data, target); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// validate rejects models the engine cannot work with. Rules that target
// unknown solutions are tolerated (they render as nothing); structural
// gaps like missing ids are not.
func (m *Model) validate() error {
	if len(m.Questions) == 0 {
		return fmt.Errorf("no questions defined")
	}
	if len(m.Solutions) == 0 {
		return fmt.Errorf("no solutions defined")
	}
	seen := make(map[string]struct{}, len(m.Solutions))
	for _, s := range m.Solutions {
		if s.ID == "" {
			return fmt.Errorf("solution with empty id (name %q)", s.Name)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate solution id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	for _, q := range m.Questions {
		if q.ID == "" {
			return fmt.Errorf("question with empty id (text %q)", q.Text)
		}
	}
	return nil
}
