package region

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when a key is not in the registry.
var ErrNotFound = errors.New("region not found")

var validate = validator.New()

// Region is a named point of interest with coordinates and a continent tag.
type Region struct {
	Name      string  `json:"name" validate:"required"`
	Lat       float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon       float64 `json:"lon" validate:"gte=-180,lte=180"`
	Continent string  `json:"continent" validate:"required"`
}

// Registry is an immutable set of regions keyed by identifier.
type Registry struct {
	regions map[string]Region
	keys    []string
}

type registryFile struct {
	Regions map[string]Region `json:"regions"`
}

// Load reads a registry file of the form {"regions": {"key": {...}}}.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read region registry: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a registry document.
func Parse(raw []byte) (*Registry, error) {
	var file registryFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode region registry: %w", err)
	}
	if len(file.Regions) == 0 {
		return nil, errors.New("region registry is empty")
	}
	return New(file.Regions)
}

// New builds a registry from a map, copying it so later changes to the
// argument do not leak in.
func New(regions map[string]Region) (*Registry, error) {
	r := &Registry{
		regions: make(map[string]Region, len(regions)),
		keys:    make([]string, 0, len(regions)),
	}
	for key, reg := range regions {
		if key == "" {
			return nil, errors.New("region key must not be empty")
		}
		if err := validate.Struct(reg); err != nil {
			return nil, fmt.Errorf("region %q: %w", key, err)
		}
		r.regions[key] = reg
		r.keys = append(r.keys, key)
	}
	sort.Strings(r.keys)
	return r, nil
}

// Get returns the region stored under key.
func (r *Registry) Get(key string) (Region, error) {
	reg, ok := r.regions[key]
	if !ok {
		return Region{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return reg, nil
}

// Keys returns the region keys in ascending order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Registry) Len() int {
	return len(r.keys)
}

// Each calls fn for every region in key order.
func (r *Registry) Each(fn func(key string, reg Region)) {
	for _, k := range r.keys {
		fn(k, r.regions[k])
	}
}
