package workflow

import (
	"strings"

	"github.com/urbannexus/core/state"
	"github.com/urbannexus/core/types"
)

// DeriveBrief builds a project brief from the site assessment and value
// proposals when the caller did not supply one. Sensor flags come from
// proposal hardware features, storage from the zone's storage attribute
// with a cloud default, and corridors from the zone itself.
func DeriveBrief(a *state.Assessment) types.ProjectBrief {
	brief := types.ProjectBrief{
		Sensors: map[string]bool{},
		Storage: "cloud",
	}

	if a.Zone != nil {
		if a.Zone.Name != "" {
			brief.Corridors = []string{a.Zone.Name}
		}
		if s, ok := a.Zone.Attributes["storage"].(string); ok && s != "" {
			brief.Storage = s
		}
		if v, ok := a.Zone.Attributes["vendor"].(string); ok && v != "" {
			brief.VendorHints = []string{v}
		}
	}

	for _, p := range a.Proposals {
		for _, feature := range p.Hardware.Features {
			for sensor, on := range sensorsForFeature(feature) {
				if on {
					brief.Sensors[sensor] = true
				}
			}
		}
	}
	return brief
}

// sensorsForFeature maps a hardware feature label to the sensor kinds
// it implies.
func sensorsForFeature(feature string) map[string]bool {
	f := strings.ToLower(feature)
	out := map[string]bool{}
	if strings.Contains(f, "lpr") || strings.Contains(f, "plate") {
		out["alpr"] = true
	}
	if strings.Contains(f, "camera") || strings.Contains(f, "video") || strings.Contains(f, "edge ai") {
		out["video"] = true
	}
	if strings.Contains(f, "audio") || strings.Contains(f, "acoustic") || strings.Contains(f, "gunshot") {
		out["audio"] = true
	}
	return out
}
