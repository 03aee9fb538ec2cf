package points

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bacworks/bacworks-go/pkg/object"
	"github.com/bacworks/bacworks-go/pkg/session"
	"github.com/bacworks/bacworks-go/pkg/wire"
)

// File is one parsed points file.
type File struct {
	Device  DeviceSection `yaml:"device"`
	Engine  EngineSection `yaml:"engine"`
	Objects []ObjectEntry `yaml:"objects"`
}

// DeviceSection identifies the endpoint the file describes.
type DeviceSection struct {
	ID      uint32   `yaml:"id"`
	Address string   `yaml:"address"`
	Port    int      `yaml:"port"`
	Timeout duration `yaml:"timeout"`
}

// EngineSection tunes retries, health and sweep concurrency. Zero
// values defer to the session defaults.
type EngineSection struct {
	RetryCount       int      `yaml:"retry_count"`
	RetryDelay       duration `yaml:"retry_delay"`
	HealthThreshold  int      `yaml:"health_threshold"`
	MaxParallelReads int      `yaml:"max_parallel_reads"`
}

// ObjectEntry is one tracked object as written in the file.
type ObjectEntry struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Instance    uint32 `yaml:"instance"`
	Description string `yaml:"description"`
	Unit        string `yaml:"unit"`

	// line is where the entry starts, for error reporting.
	line int
}

// duration adds "3s" style parsing to yaml decoding.
type duration time.Duration

func (d *duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", node.Line, node.Value)
	}
	*d = duration(parsed)
	return nil
}

// Load reads and validates a points file. Validation errors carry the
// line number of the entry that failed.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read points file: %w", err)
	}
	return Parse(data)
}

// Parse validates points file content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse points file: %w", err)
	}

	attachLines(&f, data)

	if f.Device.Address == "" {
		return nil, fmt.Errorf("points file: device.address is required")
	}

	seen := make(map[string]int, len(f.Objects))
	for i := range f.Objects {
		entry := &f.Objects[i]
		if err := validateEntry(entry); err != nil {
			return nil, err
		}
		if prev, dup := seen[entry.Name]; dup {
			return nil, fmt.Errorf("line %d: duplicate object name %q (first defined at line %d)",
				entry.line, entry.Name, prev)
		}
		seen[entry.Name] = entry.line
	}

	return &f, nil
}

// validateEntry checks one object entry against the kind table.
func validateEntry(entry *ObjectEntry) error {
	if entry.Name == "" {
		return fmt.Errorf("line %d: object has no name", entry.line)
	}
	kind, ok := object.KindByName(entry.Type)
	if !ok {
		return fmt.Errorf("line %d: object %q: unknown type %q", entry.line, entry.Name, entry.Type)
	}
	if kind != object.KindDevice && entry.Instance == 0 {
		return fmt.Errorf("line %d: object %q: instance is required", entry.line, entry.Name)
	}
	if entry.Instance > wire.MaxInstance {
		return fmt.Errorf("line %d: object %q: instance %d exceeds %d",
			entry.line, entry.Name, entry.Instance, wire.MaxInstance)
	}
	return nil
}

// attachLines re-reads the document as a node tree and stamps each
// object entry with the line its mapping starts on. A second pass
// keeps the value structs plain; only errors need the positions.
func attachLines(f *File, data []byte) {
	var root yaml.Node
	if yaml.Unmarshal(data, &root) != nil {
		return
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "objects" {
			continue
		}
		seq := doc.Content[i+1]
		if seq.Kind != yaml.SequenceNode {
			return
		}
		for j, item := range seq.Content {
			if j < len(f.Objects) {
				f.Objects[j].line = item.Line
			}
		}
	}
}

// SessionConfig maps the file onto a session configuration. The
// adapter and loggers stay up to the caller.
func (f *File) SessionConfig() session.Config {
	return session.Config{
		DeviceID:         f.Device.ID,
		DeviceAddress:    f.Device.Address,
		Port:             f.Device.Port,
		Timeout:          time.Duration(f.Device.Timeout),
		RetryCount:       f.Engine.RetryCount,
		RetryDelay:       time.Duration(f.Engine.RetryDelay),
		HealthThreshold:  f.Engine.HealthThreshold,
		MaxParallelReads: f.Engine.MaxParallelReads,
	}
}

// TrackedObjects converts the object entries into registry objects,
// in file order.
func (f *File) TrackedObjects() []object.Object {
	objs := make([]object.Object, 0, len(f.Objects))
	for _, entry := range f.Objects {
		kind, _ := object.KindByName(entry.Type)
		objs = append(objs, object.Object{
			Kind:        kind,
			Instance:    entry.Instance,
			Name:        entry.Name,
			Description: entry.Description,
			Unit:        entry.Unit,
		})
	}
	return objs
}
