package katalogus

// PluginType is the kind of a catalog plugin.
type PluginType string

const (
	PluginBoefje     PluginType = "boefje"
	PluginNormalizer PluginType = "normalizer"
	PluginBit        PluginType = "bit"
)

// Plugin describes one scanner, normalizer or business rule in the catalog.
type Plugin struct {
	ID          string     `json:"id"`
	Type        PluginType `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Enabled     bool       `json:"enabled"`
	ScanLevel   int        `json:"scan_level,omitempty"`
	Consumes    []string   `json:"consumes,omitempty"`
	Produces    []string   `json:"produces,omitempty"`
}

// DisplayName returns Name, falling back to ID.
func (p Plugin) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func (p Plugin) activation() map[string]any {
	consumes := p.Consumes
	if consumes == nil {
		consumes = []string{}
	}
	produces := p.Produces
	if produces == nil {
		produces = []string{}
	}
	return map[string]any{
		"id":          p.ID,
		"type":        string(p.Type),
		"name":        p.Name,
		"description": p.Description,
		"enabled":     p.Enabled,
		"scan_level":  int64(p.ScanLevel),
		"consumes":    consumes,
		"produces":    produces,
	}
}
