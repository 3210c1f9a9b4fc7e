package access

import (
	"sort"

	"github.com/skyarchive/voaccess/pkg/errors"
)

// Spec describes one supported provider: its declared parameter names and the
// constructor turning a raw parameter record into an access point. Params[0]
// is the provider's primary identifier parameter ("url" for prem, "uri" for
// aws); the discovery pipeline binds single-value records to it.
type Spec struct {
	Params []string
	New    func(params Params, meta Metadata) (Point, error)
}

// Catalog is the explicit, immutable provider configuration passed into the
// discovery pipeline and the data handler. It replaces any notion of a
// mutable module-level provider table.
type Catalog map[string]Spec

// Has reports whether the catalog knows the provider.
func (c Catalog) Has(provider string) bool {
	_, ok := c[provider]
	return ok
}

// Names returns the catalog's provider names in sorted order.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PrimaryParam returns the provider's primary identifier parameter name.
func (c Catalog) PrimaryParam(provider string) (string, error) {
	spec, ok := c[provider]
	if !ok || len(spec.Params) == 0 {
		return "", errors.Wrapf(errors.ErrUnsupportedProvider, "%q", provider)
	}
	return spec.Params[0], nil
}

// NewPoint constructs an access point of the given provider from a raw
// parameter record and the provider's access metadata bundle.
func (c Catalog) NewPoint(provider string, params Params, meta Metadata) (Point, error) {
	spec, ok := c[provider]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnsupportedProvider, "%q", provider)
	}
	return spec.New(params, meta)
}
