package types

// ProjectBrief is the input handed to the risk-analysis specialists:
// the corridors under consideration, which sensors the proposal enables,
// where captured data is stored, and any vendor hints for retrieval.
//
// The brief is constructed from the site assessment and value proposals
// before risk analysis begins, and is immutable afterward.
type ProjectBrief struct {
	// Corridors lists the street corridors or areas covered.
	Corridors []string `json:"corridors"`

	// Sensors maps sensor kind (e.g., "video", "audio", "alpr") to
	// whether the proposal enables it.
	Sensors map[string]bool `json:"sensors"`

	// Storage is where captured data rests: "edge", "cloud", or "hybrid".
	Storage string `json:"storage"`

	// VendorHints seeds knowledge-base retrieval with vendor names.
	VendorHints []string `json:"vendor_hints,omitempty"`
}

// SensorEnabled reports whether the named sensor is present and enabled.
func (b ProjectBrief) SensorEnabled(name string) bool {
	return b.Sensors[name]
}

// EnabledSensors returns the names of all enabled sensors in no
// particular order.
func (b ProjectBrief) EnabledSensors() []string {
	var out []string
	for name, on := range b.Sensors {
		if on {
			out = append(out, name)
		}
	}
	return out
}

// EdgeStorage reports whether any captured data rests on edge devices.
func (b ProjectBrief) EdgeStorage() bool {
	return b.Storage == "edge" || b.Storage == "hybrid"
}
