package conditions

import (
	"fmt"
	"strings"

	"github.com/san-kum/waddington/internal/dynamo"
)

// Profile is a population archetype with its own baseline landscape.
type Profile int

const (
	Neurotypical Profile = iota
	Rigid
	Dispersed
)

var profileNames = map[Profile]string{
	Neurotypical: "neurotypical",
	Rigid:        "rigid",
	Dispersed:    "dispersed",
}

func (p Profile) String() string {
	if s, ok := profileNames[p]; ok {
		return s
	}
	return fmt.Sprintf("profile(%d)", int(p))
}

// Label is the display name used in reports.
func (p Profile) Label() string {
	switch p {
	case Neurotypical:
		return "Neurotypical (NT)"
	case Rigid:
		return "ASD-like (Rigid)"
	case Dispersed:
		return "ADHD-like (Dispersed)"
	}
	return p.String()
}

// Note summarizes the physiological reading of the baseline.
func (p Profile) Note() string {
	switch p {
	case Neurotypical:
		return "baseline HRV, balanced DLPFC activation"
	case Rigid:
		return "high HRV (rigid regulation), low noise when isolated"
	case Dispersed:
		return "variable HRV, low DLPFC sustain"
	}
	return ""
}

// Baseline returns the level-1 landscape of the profile.
func (p Profile) Baseline() (dynamo.Params, bool) {
	b, ok := baselines[p]
	return b, ok
}

var baselines = map[Profile]dynamo.Params{
	Neurotypical: {Width: 1.5, Depth: 1.5, Noise: 0.4},
	Rigid:        {Width: 0.6, Depth: 4.0, Noise: 0.3},
	Dispersed:    {Width: 3.0, Depth: 0.5, Noise: 0.6},
}

func Profiles() []Profile { return []Profile{Neurotypical, Rigid, Dispersed} }

func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "neurotypical", "nt":
		return Neurotypical, nil
	case "rigid", "asd":
		return Rigid, nil
	case "dispersed", "adhd":
		return Dispersed, nil
	}
	return 0, fmt.Errorf("%w: unknown profile %q", dynamo.ErrUnmappedCondition, s)
}

// Condition is the learning environment applied on top of a profile.
type Condition int

const (
	Control Condition = iota
	Supported
	ToolAssisted
)

var conditionNames = map[Condition]string{
	Control:      "control",
	Supported:    "supported",
	ToolAssisted: "tool-assisted",
}

func (c Condition) String() string {
	if s, ok := conditionNames[c]; ok {
		return s
	}
	return fmt.Sprintf("condition(%d)", int(c))
}

func (c Condition) Label() string {
	switch c {
	case Control:
		return "Book (control)"
	case Supported:
		return "Human tutor"
	case ToolAssisted:
		return "LLM (active)"
	}
	return c.String()
}

func Conditions() []Condition { return []Condition{Control, Supported, ToolAssisted} }

func ParseCondition(s string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "control", "book":
		return Control, nil
	case "supported", "tutor", "human":
		return Supported, nil
	case "tool-assisted", "tool", "llm":
		return ToolAssisted, nil
	}
	return 0, fmt.Errorf("%w: unknown condition %q", dynamo.ErrUnmappedCondition, s)
}
