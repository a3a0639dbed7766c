package scraper

// Registry maps a URL's domain to the most specific registered adapter.
// It is immutable after construction: the fallback lives in a dedicated slot
// rather than at a list position, so no registration order can shadow it.
type Registry struct {
	specific []Adapter
	fallback Adapter
}

// NewRegistry builds a registry. Specific adapters are consulted in the
// order given; fallback handles everything they do not claim.
func NewRegistry(fallback Adapter, specific ...Adapter) *Registry {
	return &Registry{specific: specific, fallback: fallback}
}

// Resolve returns the adapter for a URL. It is total: any URL, including one
// with an unrecognized or unparseable domain, resolves to the fallback at
// minimum.
func (r *Registry) Resolve(rawURL string) Adapter {
	d := RegistrableDomain(rawURL)
	for _, a := range r.specific {
		for _, claimed := range a.Domains() {
			if claimed == d {
				return a
			}
		}
	}
	return r.fallback
}
