package discovery

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// CacheVersion is the current version of the cache file format.
const CacheVersion = 1

// cacheFile is the on-disk layout of the discovery cache.
type cacheFile struct {
	// Version is the cache file format version.
	Version int `json:"version"`

	// SavedAt is when the cache was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Devices holds every device ever discovered, sorted by device ID.
	Devices []cachedDevice `json:"devices,omitempty"`
}

// cachedDevice mirrors Device for JSON serialization.
type cachedDevice struct {
	DeviceID     uint32    `json:"device_id"`
	Address      string    `json:"address"`
	VendorID     uint16    `json:"vendor_id,omitempty"`
	VendorName   string    `json:"vendor_name,omitempty"`
	MaxAPDU      uint16    `json:"max_apdu,omitempty"`
	Segmentation uint8     `json:"segmentation,omitempty"`
	ObjectCount  uint32    `json:"object_count,omitempty"`
	SeenAt       time.Time `json:"seen_at,omitempty"`
}

// Cache persists discovery results to a JSON file so device addresses
// survive restarts. Save merges new results over the file instead of
// replacing it: devices that did not answer the latest sweep keep their
// cached address.
type Cache struct {
	mu   sync.Mutex
	path string
}

// NewCache creates a cache backed by the given file path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Save merges the devices into the cache file. A device already in the
// file is replaced when it appears in the new set; otherwise it is kept
// as-is. The file is written atomically.
func (c *Cache) Save(devices []Device) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing, err := c.loadLocked()
	if err != nil {
		return err
	}

	merged := make(map[uint32]Device, len(existing)+len(devices))
	for _, dev := range existing {
		merged[dev.DeviceID] = dev
	}
	for _, dev := range devices {
		merged[dev.DeviceID] = dev
	}

	file := cacheFile{
		Version: CacheVersion,
		SavedAt: time.Now(),
		Devices: make([]cachedDevice, 0, len(merged)),
	}
	for _, dev := range merged {
		file.Devices = append(file.Devices, cachedDevice(dev))
	}
	sort.Slice(file.Devices, func(i, j int) bool {
		return file.Devices[i].DeviceID < file.Devices[j].DeviceID
	})

	// Ensure parent directory exists
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	// Write-then-rename so readers never see a half-written file.
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// Load reads all cached devices from disk.
// Returns nil, nil if the file doesn't exist (empty cache).
func (c *Cache) Load() ([]Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

// Lookup returns the cached device with the given ID, if present.
func (c *Cache) Lookup(deviceID uint32) (Device, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	devices, err := c.loadLocked()
	if err != nil {
		return Device{}, false, err
	}
	for _, dev := range devices {
		if dev.DeviceID == deviceID {
			return dev, true, nil
		}
	}
	return Device{}, false, nil
}

// Clear removes the cache file.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *Cache) loadLocked() ([]Device, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	file := &cacheFile{}
	if err := json.Unmarshal(data, file); err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(file.Devices))
	for _, dev := range file.Devices {
		devices = append(devices, Device(dev))
	}
	return devices, nil
}
