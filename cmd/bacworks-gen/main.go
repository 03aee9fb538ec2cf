// Command bacworks-gen turns the registry YAML files under
// docs/registry/ into the generated lookup tables in pkg/wire.
//
// Usage:
//
//	bacworks-gen -registry docs/registry -output pkg/wire
//
// Four tables are generated: property identifiers, engineering units,
// vendor names and object type numbers. The YAML files are the source
// of truth; edit them and regenerate rather than touching the *_gen.go
// files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

func main() {
	registryDir := flag.String("registry", "", "Directory holding the registry YAML files (docs/registry/)")
	outputDir := flag.String("output", "", "Output directory for generated Go files (pkg/wire/)")
	flag.Parse()

	if *registryDir == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "Usage: bacworks-gen -registry <dir> -output <dir>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*registryDir, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(registryDir, outputDir string) error {
	properties, err := LoadProperties(filepath.Join(registryDir, "properties.yaml"))
	if err != nil {
		return fmt.Errorf("loading properties: %w", err)
	}
	units, err := LoadUnits(filepath.Join(registryDir, "units.yaml"))
	if err != nil {
		return fmt.Errorf("loading units: %w", err)
	}
	vendors, err := LoadVendors(filepath.Join(registryDir, "vendors.yaml"))
	if err != nil {
		return fmt.Errorf("loading vendors: %w", err)
	}
	objectTypes, err := LoadObjectTypes(filepath.Join(registryDir, "object-types.yaml"))
	if err != nil {
		return fmt.Errorf("loading object types: %w", err)
	}

	outputs := []struct {
		file string
		code string
	}{
		{"property_gen.go", GenerateProperties(properties)},
		{"units_gen.go", GenerateUnits(units)},
		{"vendors_gen.go", GenerateVendors(vendors)},
		{"objecttypes_gen.go", GenerateObjectTypes(objectTypes)},
	}

	for _, out := range outputs {
		path := filepath.Join(outputDir, out.file)
		if err := writeFormatted(path, out.code); err != nil {
			return fmt.Errorf("writing %s: %w", out.file, err)
		}
		fmt.Printf("  generated %s\n", path)
	}
	return nil
}

// writeFormatted formats the generated code and writes it out. A
// formatting failure writes the raw code anyway so the error is
// diagnosable from the file.
func writeFormatted(path, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		if werr := os.WriteFile(path, []byte(code), 0o644); werr != nil {
			return werr
		}
		return fmt.Errorf("formatting failed (raw code written): %w", err)
	}
	return os.WriteFile(path, formatted, 0o644)
}
