package inventory

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var contentFS embed.FS

// ItemDef is a catalog entry loaded from YAML.
type ItemDef struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Effect   string `yaml:"effect"`
}

// NewItem returns an inventory entry of quantity units of d.
//
// Precondition: quantity >= 1.
func (d *ItemDef) NewItem(quantity int) Item {
	return Item{ID: d.ID, Name: d.Name, Category: CoerceCategory(d.Category), Effect: d.Effect, Quantity: quantity}
}

// Catalog holds item definitions indexed by ID.
type Catalog struct {
	items map[string]*ItemDef
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{items: make(map[string]*ItemDef)}
}

// Register adds d to the catalog.
//
// Precondition: d must not be nil.
// Postcondition: Item(d.ID) returns (d, true); returns error if d.ID is empty or already registered.
func (c *Catalog) Register(d *ItemDef) error {
	if d.ID == "" || d.Name == "" {
		return fmt.Errorf("inventory: Catalog.Register: id and name are required")
	}
	if _, exists := c.items[d.ID]; exists {
		return fmt.Errorf("inventory: Catalog.Register: item ID %q already registered", d.ID)
	}
	c.items[d.ID] = d
	return nil
}

// Item returns the ItemDef for id and whether it was found.
func (c *Catalog) Item(id string) (*ItemDef, bool) {
	d, ok := c.items[id]
	return d, ok
}

// IDs returns every registered id in sorted order.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.items))
	for id := range c.items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// DefaultCatalog loads the embedded item definitions.
//
// Postcondition: returns a populated catalog or a non-nil error.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(contentFS, "content")
}

// LoadCatalog reads every *.yaml file in dir of fsys. Each file holds a list
// of ItemDefs.
func LoadCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: cannot read directory %q: %w", dir, err)
	}
	cat := NewCatalog()
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("LoadCatalog: cannot read file %q: %w", p, err)
		}
		var defs []*ItemDef
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("LoadCatalog: cannot parse file %q: %w", p, err)
		}
		for _, d := range defs {
			if err := cat.Register(d); err != nil {
				return nil, fmt.Errorf("LoadCatalog: %s: %w", p, err)
			}
		}
	}
	return cat, nil
}
