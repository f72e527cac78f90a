package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zonetile/zonetile/internal/geometry"
	"github.com/zonetile/zonetile/internal/layout"
)

// layoutFile is the on-disk shape of one custom layout.
type layoutFile struct {
	ID          string              `yaml:"id"`
	Name        string              `yaml:"name"`
	Overlapping bool                `yaml:"overlapping"`
	Zones       []geometry.Template `yaml:"zones"`
}

// LoadLayoutsDir reads every .yaml/.yml file in dir as one custom layout.
// Files that fail to parse are reported in errs; good files still load.
// A missing or empty dir yields no layouts.
func LoadLayoutsDir(dir string) (layouts []layout.Layout, errs []error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{fmt.Errorf("%s: %w", dir, err)}
	}

	var names []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(ent.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, ent.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		l, err := loadLayoutFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		layouts = append(layouts, l)
	}
	return layouts, errs
}

func loadLayoutFile(path string) (layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return layout.Layout{}, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	var lf layoutFile
	if err := decodeStrictYAML(data, &lf); err != nil {
		return layout.Layout{}, fmt.Errorf("%s: %w", path, err)
	}

	if lf.ID == "" {
		// File name minus extension is the id when the file omits one.
		base := filepath.Base(path)
		lf.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if lf.Name == "" {
		lf.Name = lf.ID
	}

	zones := make([]layout.Zone, len(lf.Zones))
	for i, tmpl := range lf.Zones {
		zones[i] = layout.Zone{Index: i, Template: tmpl}
	}
	return layout.Layout{
		ID:          lf.ID,
		Name:        lf.Name,
		Overlapping: lf.Overlapping,
		Zones:       zones,
	}, nil
}
