package main

import (
	"fmt"
	"strings"
)

const header = "// Code generated by bacworks-gen. DO NOT EDIT.\n\npackage wire\n\nimport \"strconv\"\n\n"

// GenerateProperties renders property_gen.go.
func GenerateProperties(properties []Property) string {
	var b strings.Builder
	b.WriteString(header)

	b.WriteString("// PropertyID identifies a property of a BACnet object (clause 21).\n")
	b.WriteString("type PropertyID uint32\n\n")

	b.WriteString("// Property identifiers. Curated to the properties the engine and its\n")
	b.WriteString("// tooling read or write; see docs/registry/properties.yaml.\n")
	b.WriteString("const (\n")
	for _, p := range properties {
		fmt.Fprintf(&b, "\t%s PropertyID = %d\n", p.Const, p.ID)
	}
	b.WriteString(")\n\n")

	b.WriteString("var propertyNames = map[PropertyID]string{\n")
	for _, p := range properties {
		fmt.Fprintf(&b, "\t%d: %q,\n", p.ID, p.Name)
	}
	b.WriteString("}\n\n")

	b.WriteString("var propertyByName = map[string]PropertyID{\n")
	for _, p := range properties {
		fmt.Fprintf(&b, "\t%q: %d,\n", p.Name, p.ID)
	}
	b.WriteString("}\n\n")

	b.WriteString(`// String returns the symbolic name of the property, or "property-N"
// when the identifier is not in the registry.
func (p PropertyID) String() string {
	if name, ok := propertyNames[p]; ok {
		return name
	}
	return "property-" + strconv.FormatUint(uint64(p), 10)
}

// PropertyByName resolves a symbolic property name to its identifier.
func PropertyByName(name string) (PropertyID, bool) {
	p, ok := propertyByName[name]
	return p, ok
}
`)
	return b.String()
}

// GenerateUnits renders units_gen.go.
func GenerateUnits(units []Unit) string {
	var b strings.Builder
	b.WriteString(header)

	b.WriteString("// Engineering unit enumerations (clause 21, BACnetEngineeringUnits).\n")
	b.WriteString("// Curated to units common in HVAC points lists; see\n")
	b.WriteString("// docs/registry/units.yaml.\n")
	b.WriteString("var unitNames = map[uint16]string{\n")
	for _, u := range units {
		fmt.Fprintf(&b, "\t%d: %q,\n", u.ID, u.Name)
	}
	b.WriteString("}\n\n")

	b.WriteString(`// UnitName returns the symbolic name of an engineering unit
// enumeration, or "unit-N" when the unit is not in the registry.
func UnitName(unit uint16) string {
	if name, ok := unitNames[unit]; ok {
		return name
	}
	return "unit-" + strconv.FormatUint(uint64(unit), 10)
}
`)
	return b.String()
}

// GenerateVendors renders vendors_gen.go.
func GenerateVendors(vendors []Vendor) string {
	var b strings.Builder
	b.WriteString(header)

	b.WriteString("// Vendor identifiers assigned by ASHRAE. Curated to vendors seen in\n")
	b.WriteString("// the field; see docs/registry/vendors.yaml.\n")
	b.WriteString("var vendorNames = map[uint16]string{\n")
	for _, v := range vendors {
		fmt.Fprintf(&b, "\t%d: %q,\n", v.ID, v.Name)
	}
	b.WriteString("}\n\n")

	b.WriteString(`// VendorName returns the registered name for a vendor identifier, or
// "vendor-N" when the identifier is not in the registry.
func VendorName(id uint16) string {
	if name, ok := vendorNames[id]; ok {
		return name
	}
	return "vendor-" + strconv.FormatUint(uint64(id), 10)
}
`)
	return b.String()
}

// GenerateObjectTypes renders objecttypes_gen.go.
func GenerateObjectTypes(objectTypes []ObjectType) string {
	var b strings.Builder
	b.WriteString(header)

	b.WriteString("// Object type numbers (clause 12). Curated to the types the engine and\n")
	b.WriteString("// its tooling handle; see docs/registry/object-types.yaml.\n")
	b.WriteString("const (\n")
	for _, t := range objectTypes {
		fmt.Fprintf(&b, "\t%s uint16 = %d\n", t.Const, t.ID)
	}
	b.WriteString(")\n\n")

	b.WriteString("var objectTypeNames = map[uint16]string{\n")
	for _, t := range objectTypes {
		fmt.Fprintf(&b, "\t%d: %q,\n", t.ID, t.Name)
	}
	b.WriteString("}\n\n")

	b.WriteString(`// ObjectTypeName returns the symbolic name of an object type number,
// or "type-N" when the type is not in the registry.
func ObjectTypeName(t uint16) string {
	if name, ok := objectTypeNames[t]; ok {
		return name
	}
	return "type-" + strconv.FormatUint(uint64(t), 10)
}
`)
	return b.String()
}
