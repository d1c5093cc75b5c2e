package uri

// FixedProvider is a reference LocalUriProvider backed by a fixed source
// URI. Real deployments resolve the local entity/version from configuration
// or a service registry (out of scope); this is sufficient for tests and the
// example binary in cmd/echo.
type FixedProvider struct {
	source URI
}

var _ LocalUriProvider = (*FixedProvider)(nil)

// NewFixedProvider returns a LocalUriProvider whose Source is source and
// whose GetResource builds sibling URIs by varying only the resource id.
func NewFixedProvider(source URI) *FixedProvider {
	return &FixedProvider{source: source}
}

func (p *FixedProvider) Source() URI {
	return p.source
}

func (p *FixedProvider) GetResource(resourceID uint16) URI {
	return p.source.WithResource(resourceID)
}
