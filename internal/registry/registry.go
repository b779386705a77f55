// Package registry keeps the set of configured printers with stable IDs
// and custom names, persisted as a JSON file
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Printer types
const (
	TypeNetwork = "network"
	TypeSerial  = "serial"
)

// Entry is one configured printer. Network printers are addressed by
// host:port, serial printers by device path.
type Entry struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Host        string `json:"host,omitempty"`
	Port        int    `json:"port,omitempty"`
	Device      string `json:"device,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// identityKey makes re-registering the same target idempotent
func (e *Entry) identityKey() string {
	if e.Type == TypeSerial {
		return fmt.Sprintf("serial:%s", e.Device)
	}
	return fmt.Sprintf("network:%s:%d", e.Host, e.Port)
}

// Registry is safe for concurrent use. Every mutation is written through
// to the backing file; persistence failures are surfaced, not swallowed.
type Registry struct {
	filePath string
	entries  map[string]*Entry // keyed by identity
	mu       sync.RWMutex
}

// New loads a registry from filePath, starting empty when the file does
// not exist yet
func New(filePath string) (*Registry, error) {
	r := &Registry{
		filePath: filePath,
		entries:  make(map[string]*Entry),
	}

	if err := r.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load printer registry: %w", err)
		}
	}

	return r, nil
}

// Add registers a printer and returns its entry. Registering an already
// known target returns the existing entry unchanged.
func (r *Registry) Add(entry Entry) (*Entry, error) {
	if entry.Type != TypeNetwork && entry.Type != TypeSerial {
		return nil, fmt.Errorf("unsupported printer type: %s", entry.Type)
	}
	if entry.Type == TypeNetwork && entry.Host == "" {
		return nil, fmt.Errorf("host is required for network printers")
	}
	if entry.Type == TypeSerial && entry.Device == "" {
		return nil, fmt.Errorf("device is required for serial printers")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := entry.identityKey()
	if existing, ok := r.entries[key]; ok {
		copied := *existing
		return &copied, nil
	}

	entry.ID = uuid.New().String()
	if entry.Description == "" {
		if entry.Type == TypeSerial {
			entry.Description = fmt.Sprintf("Serial: %s", entry.Device)
		} else {
			entry.Description = fmt.Sprintf("Network: %s:%d", entry.Host, entry.Port)
		}
	}

	r.entries[key] = &entry

	if err := r.save(); err != nil {
		delete(r.entries, key)
		return nil, fmt.Errorf("failed to save printer registry: %w", err)
	}

	copied := entry
	return &copied, nil
}

// Get returns a printer by ID, or nil when unknown
func (r *Registry) Get(id string) *Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.ID == id {
			copied := *entry
			return &copied
		}
	}
	return nil
}

// List returns all configured printers ordered by description
func (r *Registry) List() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		copied := *entry
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Description < result[j].Description
	})
	return result
}

// Rename sets a custom name for a printer
func (r *Registry) Rename(id string, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.ID == id {
			prev := entry.Name
			entry.Name = name
			if err := r.save(); err != nil {
				entry.Name = prev
				return false
			}
			return true
		}
	}
	return false
}

// Remove deletes a printer from the registry
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, entry := range r.entries {
		if entry.ID == id {
			delete(r.entries, key)
			if err := r.save(); err != nil {
				r.entries[key] = entry
				return false
			}
			return true
		}
	}
	return false
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &r.entries)
}

func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.filePath, data, 0644)
}
