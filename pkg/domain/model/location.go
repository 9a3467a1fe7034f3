package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ErrLocationNotFound is returned when no mail recipients are configured for
// a partner location
var ErrLocationNotFound = goerr.New("location not found")

// DefaultLocation is the registry key used when a location has no entry
const DefaultLocation = "default"

// LocationEntry holds the offboarding mail recipients of one partner location
type LocationEntry struct {
	Name         string
	SOPRecipient []string
	ITRecipient  []string
}

// LocationRegistry maps partner locations to their recipients. Keys are
// case-insensitive.
type LocationRegistry struct {
	entries map[string]*LocationEntry
	order   []string // preserves registration order
}

// NewLocationRegistry creates a new empty LocationRegistry
func NewLocationRegistry() *LocationRegistry {
	return &LocationRegistry{
		entries: make(map[string]*LocationEntry),
	}
}

func locationKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a location entry, replacing any entry with the same name
func (r *LocationRegistry) Register(entry *LocationEntry) {
	key := locationKey(entry.Name)
	if _, exists := r.entries[key]; !exists {
		r.order = append(r.order, key)
	}
	r.entries[key] = entry
}

// Get retrieves the entry of a location, falling back to the default entry
func (r *LocationRegistry) Get(location string) (*LocationEntry, error) {
	if entry, ok := r.entries[locationKey(location)]; ok {
		return entry, nil
	}
	if entry, ok := r.entries[DefaultLocation]; ok {
		return entry, nil
	}
	return nil, goerr.Wrap(ErrLocationNotFound, "no recipients for location",
		goerr.V("location", location))
}

// List returns all registered entries in registration order
func (r *LocationRegistry) List() []*LocationEntry {
	result := make([]*LocationEntry, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.entries[key])
	}
	return result
}
