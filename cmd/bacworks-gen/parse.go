package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Property is one entry in properties.yaml.
type Property struct {
	ID    uint32 `yaml:"id"`
	Name  string `yaml:"name"`
	Const string `yaml:"const"`
}

// Unit is one entry in units.yaml.
type Unit struct {
	ID   uint16 `yaml:"id"`
	Name string `yaml:"name"`
}

// Vendor is one entry in vendors.yaml.
type Vendor struct {
	ID   uint16 `yaml:"id"`
	Name string `yaml:"name"`
}

// ObjectType is one entry in object-types.yaml.
type ObjectType struct {
	ID    uint16 `yaml:"id"`
	Name  string `yaml:"name"`
	Const string `yaml:"const"`
}

// LoadProperties reads and validates properties.yaml. Entries are
// returned in id order regardless of file order, so generation is
// deterministic.
func LoadProperties(path string) ([]Property, error) {
	var doc struct {
		Properties []Property `yaml:"properties"`
	}
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}

	seen := make(map[uint32]string, len(doc.Properties))
	for _, p := range doc.Properties {
		if p.Name == "" || p.Const == "" {
			return nil, fmt.Errorf("property %d: name and const are required", p.ID)
		}
		if prev, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("property %d: defined as both %q and %q", p.ID, prev, p.Name)
		}
		seen[p.ID] = p.Name
	}

	sort.Slice(doc.Properties, func(i, j int) bool { return doc.Properties[i].ID < doc.Properties[j].ID })
	return doc.Properties, nil
}

// LoadUnits reads and validates units.yaml.
func LoadUnits(path string) ([]Unit, error) {
	var doc struct {
		Units []Unit `yaml:"units"`
	}
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}

	seen := make(map[uint16]string, len(doc.Units))
	for _, u := range doc.Units {
		if u.Name == "" {
			return nil, fmt.Errorf("unit %d: name is required", u.ID)
		}
		if prev, dup := seen[u.ID]; dup {
			return nil, fmt.Errorf("unit %d: defined as both %q and %q", u.ID, prev, u.Name)
		}
		seen[u.ID] = u.Name
	}

	sort.Slice(doc.Units, func(i, j int) bool { return doc.Units[i].ID < doc.Units[j].ID })
	return doc.Units, nil
}

// LoadVendors reads and validates vendors.yaml.
func LoadVendors(path string) ([]Vendor, error) {
	var doc struct {
		Vendors []Vendor `yaml:"vendors"`
	}
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}

	seen := make(map[uint16]string, len(doc.Vendors))
	for _, v := range doc.Vendors {
		if v.Name == "" {
			return nil, fmt.Errorf("vendor %d: name is required", v.ID)
		}
		if prev, dup := seen[v.ID]; dup {
			return nil, fmt.Errorf("vendor %d: defined as both %q and %q", v.ID, prev, v.Name)
		}
		seen[v.ID] = v.Name
	}

	sort.Slice(doc.Vendors, func(i, j int) bool { return doc.Vendors[i].ID < doc.Vendors[j].ID })
	return doc.Vendors, nil
}

// LoadObjectTypes reads and validates object-types.yaml.
func LoadObjectTypes(path string) ([]ObjectType, error) {
	var doc struct {
		ObjectTypes []ObjectType `yaml:"object_types"`
	}
	if err := loadYAML(path, &doc); err != nil {
		return nil, err
	}

	seen := make(map[uint16]string, len(doc.ObjectTypes))
	for _, t := range doc.ObjectTypes {
		if t.Name == "" || t.Const == "" {
			return nil, fmt.Errorf("object type %d: name and const are required", t.ID)
		}
		if prev, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("object type %d: defined as both %q and %q", t.ID, prev, t.Name)
		}
		seen[t.ID] = t.Name
	}

	sort.Slice(doc.ObjectTypes, func(i, j int) bool { return doc.ObjectTypes[i].ID < doc.ObjectTypes[j].ID })
	return doc.ObjectTypes, nil
}

func loadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
