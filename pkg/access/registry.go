package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skyarchive/voaccess/pkg/errors"
)

// Registry groups all access points discovered for a single row, keyed by
// provider. Insertion order per provider is discovery order; the first point
// registered for a provider is its preferred default. Adding a duplicate
// (provider, id) pair is a silent no-op.
type Registry struct {
	points    map[string][]Point
	preferred map[string]Point
}

// NewRegistry creates a registry seeded with a base access point, normally
// the on-prem baseline for the row.
func NewRegistry(base Point) (*Registry, error) {
	r := &Registry{
		points:    make(map[string][]Point),
		preferred: make(map[string]Point),
	}
	if err := r.Add(base); err != nil {
		return nil, err
	}
	return r, nil
}

// Add registers an access point, a slice of access points, or a nested mix of
// both, recursing over sequences. Values that do not implement the Point
// capability are rejected.
func (r *Registry) Add(v interface{}) error {
	switch ap := v.(type) {
	case nil:
		return errors.Wrap(errors.ErrNotAccessPoint, "nil value")
	case Point:
		r.add(ap)
		return nil
	case []Point:
		for _, p := range ap {
			if err := r.Add(p); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		for _, p := range ap {
			if err := r.Add(p); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Wrapf(errors.ErrNotAccessPoint, "%T", v)
	}
}

func (r *Registry) add(p Point) {
	provider := p.Provider()
	for _, existing := range r.points[provider] {
		if existing.ID() == p.ID() {
			// duplicate identity, first registered wins
			return
		}
	}
	r.points[provider] = append(r.points[provider], p)
	if _, ok := r.preferred[provider]; !ok {
		r.preferred[provider] = p
	}
}

// List returns the access points registered for a provider in discovery
// order. It fails for providers that were never seeded or added.
func (r *Registry) List(provider string) ([]Point, error) {
	points, ok := r.points[provider]
	if !ok {
		return nil, errors.Wrapf(errors.ErrProviderNotFound, "%q", provider)
	}
	return points, nil
}

// Preferred returns the first point registered for a provider.
func (r *Registry) Preferred(provider string) (Point, bool) {
	p, ok := r.preferred[provider]
	return p, ok
}

// Providers returns the provider names with at least one registered point.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.points))
	for name := range r.points {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns a human-readable enumeration of the registered points.
// Inspection aid only; not used in the download decision path.
func (r *Registry) Summary() string {
	var b strings.Builder
	for _, provider := range r.Providers() {
		for _, p := range r.points[provider] {
			fmt.Fprintf(&b, "|%-5s| %s\n", provider, p.ID())
		}
	}
	return b.String()
}
