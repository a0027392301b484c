package config

import (
	"sort"

	"github.com/san-kum/waddington/internal/dynamo"
)

// Preset is a named transient state. Anyone can pass through these under
// stress; they describe a state, not a person.
type Preset struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Params      dynamo.Params `yaml:"params"`
}

var Presets = map[string]Preset{
	"baseline": {
		Name:        "baseline",
		Description: "flexible but stable; resting homeostasis",
		Params:      dynamo.Params{Width: 1.5, Depth: 1.5, Noise: 0.5},
	},
	"rigidity": {
		Name:        "rigidity",
		Description: "narrow, deep valley; strong focus, resistant to change",
		Params:      dynamo.Params{Width: 0.8, Depth: 4.0, Noise: 0.4},
	},
	"dispersion": {
		Name:        "dispersion",
		Description: "wide, shallow basin; attention drifts easily",
		Params:      dynamo.Params{Width: 3.0, Depth: 0.5, Noise: 0.8},
	},
	"hyper-rigid": {
		Name:        "hyper-rigid",
		Description: "deeply canalized; chronic stress or rigid defence",
		Params:      dynamo.Params{Width: 0.6, Depth: 4.5, Noise: 0.4},
	},
	"hyper-labile": {
		Name:        "hyper-labile",
		Description: "flattened landscape; low capacity to hold a state",
		Params:      dynamo.Params{Width: 3.5, Depth: 0.4, Noise: 0.9},
	},
	"critical": {
		Name:        "critical",
		Description: "allostatic load beyond what the topology can contain",
		Params:      dynamo.Params{Width: 2.0, Depth: 0.8, Noise: 1.8},
	},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

// ListPresets returns preset names in alphabetical order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
