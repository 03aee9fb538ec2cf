package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testProperties = []Property{
	{ID: 85, Name: "present-value", Const: "PropPresentValue"},
	{ID: 111, Name: "status-flags", Const: "PropStatusFlags"},
}

func TestGenerateProperties(t *testing.T) {
	code := GenerateProperties(testProperties)

	for _, want := range []string{
		"// Code generated by bacworks-gen. DO NOT EDIT.",
		"package wire",
		"PropPresentValue PropertyID = 85",
		`85: "present-value",`,
		`"status-flags": 111,`,
		"func (p PropertyID) String() string",
		"func PropertyByName(name string) (PropertyID, bool)",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q", want)
		}
	}
}

func TestGenerateUnits(t *testing.T) {
	code := GenerateUnits([]Unit{{ID: 62, Name: "degrees-celsius"}})

	for _, want := range []string{
		`62: "degrees-celsius",`,
		"func UnitName(unit uint16) string",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q", want)
		}
	}
}

func TestGenerateVendors(t *testing.T) {
	code := GenerateVendors([]Vendor{{ID: 8, Name: "Delta Controls"}})

	if !strings.Contains(code, `8: "Delta Controls",`) {
		t.Errorf("generated code missing vendor entry:\n%s", code)
	}
}

func TestGenerateObjectTypes(t *testing.T) {
	code := GenerateObjectTypes([]ObjectType{
		{ID: 0, Name: "analog-input", Const: "ObjectTypeAnalogInput"},
	})

	for _, want := range []string{
		"ObjectTypeAnalogInput uint16 = 0",
		`0: "analog-input",`,
	} {
		if !strings.Contains(code, want) {
			t.Errorf("generated code missing %q", want)
		}
	}
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	registry := filepath.Join(dir, "registry")
	output := filepath.Join(dir, "out")
	if err := os.MkdirAll(registry, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"properties.yaml": "properties:\n  - id: 85\n    name: present-value\n    const: PropPresentValue\n",
		"units.yaml":      "units:\n  - id: 62\n    name: degrees-celsius\n",
		"vendors.yaml":    "vendors:\n  - id: 8\n    name: Delta Controls\n",
		"object-types.yaml": "object_types:\n  - id: 0\n    name: analog-input\n" +
			"    const: ObjectTypeAnalogInput\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(registry, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := run(registry, output); err != nil {
		t.Fatalf("run() failed: %v", err)
	}

	for _, name := range []string{"property_gen.go", "units_gen.go", "vendors_gen.go", "objecttypes_gen.go"} {
		data, err := os.ReadFile(filepath.Join(output, name))
		if err != nil {
			t.Fatalf("missing output %s: %v", name, err)
		}
		if !strings.Contains(string(data), "Code generated by bacworks-gen") {
			t.Errorf("%s missing generation marker", name)
		}
	}
}
