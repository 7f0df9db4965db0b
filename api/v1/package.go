package v1

// Package is the result of loading one manifest directory or file: a named,
// layer-tagged collection of resources (spec.md §4.1).
type Package struct {
	Name      string
	Layer     Layer
	SourcePath string
	Resources []*Resource
}

// ByKey indexes a package's resources by (kind, name). Duplicate keys are a
// loader validation error and never reach this helper.
func (p *Package) ByKey() map[Key]*Resource {
	out := make(map[Key]*Resource, len(p.Resources))
	for _, r := range p.Resources {
		out[r.Key()] = r
	}
	return out
}

// LayeredPackages is the loader's output for loadLayeredPackages: one
// optional package per layer.
type LayeredPackages struct {
	Base    *Package
	Org     *Package
	Project *Package
}

// ByLayer returns the non-nil packages in base, org, project order — the
// merge engine's composition order.
func (lp LayeredPackages) ByLayer() []*Package {
	var out []*Package
	for _, p := range []*Package{lp.Base, lp.Org, lp.Project} {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// DesiredState is the merge engine's output: flat, deduplicated sequences
// per kind plus the fixed layer-tag vocabulary (spec.md §3).
type DesiredState struct {
	Blocks       []*Resource
	Tools        []*Resource
	MCPServers   []*Resource
	Templates    []*Resource
	Folders      []*Resource
	Identities   []*Resource
	AgentPolicies []*Resource
	LayerTags    map[Layer]string
}

// NewDesiredState returns an empty DesiredState with LayerTags pre-populated
// from the package-level LayerTags constant.
func NewDesiredState() *DesiredState {
	tags := make(map[Layer]string, len(LayerTags))
	for k, v := range LayerTags {
		tags[k] = v
	}
	return &DesiredState{LayerTags: tags}
}

// ByKind returns the slice for a given kind, or nil for an unknown kind.
// Used by code that dispatches over AllKinds without a type switch.
func (d *DesiredState) ByKind(k Kind) []*Resource {
	switch k {
	case KindBlock:
		return d.Blocks
	case KindTool:
		return d.Tools
	case KindMCPServer:
		return d.MCPServers
	case KindTemplate:
		return d.Templates
	case KindFolder:
		return d.Folders
	case KindIdentity:
		return d.Identities
	case KindAgentPolicy:
		return d.AgentPolicies
	default:
		return nil
	}
}

// Append adds a resource to the slice matching its Kind.
func (d *DesiredState) Append(r *Resource) {
	switch r.Kind {
	case KindBlock:
		d.Blocks = append(d.Blocks, r)
	case KindTool:
		d.Tools = append(d.Tools, r)
	case KindMCPServer:
		d.MCPServers = append(d.MCPServers, r)
	case KindTemplate:
		d.Templates = append(d.Templates, r)
	case KindFolder:
		d.Folders = append(d.Folders, r)
	case KindIdentity:
		d.Identities = append(d.Identities, r)
	case KindAgentPolicy:
		d.AgentPolicies = append(d.AgentPolicies, r)
	}
}

// All returns every resource across kinds, in AllKinds order.
func (d *DesiredState) All() []*Resource {
	var out []*Resource
	for _, k := range AllKinds {
		out = append(out, d.ByKind(k)...)
	}
	return out
}
