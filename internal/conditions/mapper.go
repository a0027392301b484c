package conditions

import (
	"fmt"

	"github.com/san-kum/waddington/internal/dynamo"
)

const TagUndefined = "undefined"

// Modifier adjusts a baseline landscape. Width is never touched by any
// condition.
type Modifier struct {
	DepthScale float64
	NoiseScale float64
	NoiseShift float64
}

func Identity() Modifier { return Modifier{DepthScale: 1, NoiseScale: 1} }

func (m Modifier) Apply(p dynamo.Params) dynamo.Params {
	return dynamo.Params{
		Width: p.Width,
		Depth: p.Depth * m.DepthScale,
		Noise: p.Noise*m.NoiseScale + m.NoiseShift,
	}
}

func (m Modifier) IsIdentity() bool { return m == Identity() }

type key struct {
	p Profile
	c Condition
}

type cell struct {
	mod    Modifier
	tag    string
	labels map[Channel]string
}

var controlLabels = map[Channel]string{
	Emotional:       "Low (blue)",
	Executive:       "Moderate (green)",
	Vagal:           "Stable",
	SkinConductance: "Low",
}

// table holds every profile/condition pair explicitly. A missing pair is an
// error, never a fallback to the baseline.
var table = map[key]cell{
	{Neurotypical, Control}: {Identity(), "baseline control", controlLabels},
	{Rigid, Control}:        {Identity(), "baseline control", controlLabels},
	{Dispersed, Control}:    {Identity(), "baseline control", controlLabels},

	{Neurotypical, Supported}: {
		mod: Modifier{DepthScale: 1.5, NoiseScale: 0.5},
		tag: "social scaffolding",
		labels: map[Channel]string{
			Emotional:       "Moderate (social engagement)",
			Executive:       "High (boosted by scaffolding)",
			Vagal:           "High (co-regulation)",
			SkinConductance: "Optimal arousal",
		},
	},
	{Rigid, Supported}: {
		mod: Modifier{DepthScale: 1, NoiseScale: 1, NoiseShift: 1.5},
		tag: "social friction (high cost)",
		labels: map[Channel]string{
			Emotional:       "High alert (red)",
			Executive:       "Low (steal effect)",
			Vagal:           "Collapsing (vagal withdrawal)",
			SkinConductance: "Spiking",
		},
	},
	{Dispersed, Supported}: {
		mod: Modifier{DepthScale: 3.0, NoiseScale: 1},
		tag: "external regulation",
		labels: map[Channel]string{
			Emotional:       "Low",
			Executive:       "High (supported)",
			Vagal:           "Increased (external pacing)",
			SkinConductance: "Moderate",
		},
	},

	{Neurotypical, ToolAssisted}: {
		mod: Modifier{DepthScale: 0.8, NoiseScale: 1, NoiseShift: 0.2},
		tag: "neutral / low social",
		labels: map[Channel]string{
			Emotional:       "Low (no social cues)",
			Executive:       "Moderate",
			Vagal:           "Baseline",
			SkinConductance: "Low",
		},
	},
	{Rigid, ToolAssisted}: {
		mod: Identity(),
		tag: "social bypass (low cost)",
		labels: map[Channel]string{
			Emotional:       "Low/baseline (no friction)",
			Executive:       "High (resources freed)",
			Vagal:           "Stable (safety)",
			SkinConductance: "Low",
		},
	},
	{Dispersed, ToolAssisted}: {
		mod: Modifier{DepthScale: 1, NoiseScale: 1, NoiseShift: 1.0},
		tag: "constructivist burnout",
		labels: map[Channel]string{
			Emotional:       "Rising (frustration)",
			Executive:       "Fading (fatigue)",
			Vagal:           "Dropping fast",
			SkinConductance: "High (effort)",
		},
	},
}

// Mapping is everything a profile/condition pair determines about a run.
type Mapping struct {
	Profile     Profile
	Condition   Condition
	Baseline    dynamo.Params
	Modifier    Modifier
	Params      dynamo.Params
	Start       float64
	Tag         string
	Predictions map[Channel]string
}

// Reading is one prediction rendered in a vocabulary.
type Reading struct {
	Channel string `json:"channel"`
	Label   string `json:"label"`
}

// Sensors renders the predictions in channel order.
func (m Mapping) Sensors(v Vocabulary) []Reading {
	out := make([]Reading, 0, len(m.Predictions))
	for _, c := range Channels() {
		if l, ok := m.Predictions[c]; ok {
			out = append(out, Reading{Channel: v.ChannelName(c), Label: l})
		}
	}
	return out
}

// Map resolves a profile under a condition. Unknown pairs return a mapping
// tagged undefined together with an error wrapping ErrUnmappedCondition.
func Map(p Profile, c Condition) (Mapping, error) {
	undefined := Mapping{Profile: p, Condition: c, Tag: TagUndefined}

	base, ok := p.Baseline()
	if !ok {
		return undefined, fmt.Errorf("%w: profile %v", dynamo.ErrUnmappedCondition, p)
	}
	entry, ok := table[key{p, c}]
	if !ok {
		return undefined, fmt.Errorf("%w: %v under %v", dynamo.ErrUnmappedCondition, p, c)
	}

	preds := make(map[Channel]string, len(entry.labels))
	for ch, l := range entry.labels {
		preds[ch] = l
	}

	return Mapping{
		Profile:     p,
		Condition:   c,
		Baseline:    base,
		Modifier:    entry.mod,
		Params:      entry.mod.Apply(base),
		Start:       dynamo.DefaultStart,
		Tag:         entry.tag,
		Predictions: preds,
	}, nil
}

// MapNames parses both names before mapping.
func MapNames(profile, condition string) (Mapping, error) {
	p, err := ParseProfile(profile)
	if err != nil {
		return Mapping{Tag: TagUndefined}, err
	}
	c, err := ParseCondition(condition)
	if err != nil {
		return Mapping{Profile: p, Tag: TagUndefined}, err
	}
	return Map(p, c)
}

// All maps every pair, profiles outermost.
func All() []Mapping {
	out := make([]Mapping, 0, len(table))
	for _, p := range Profiles() {
		for _, c := range Conditions() {
			m, err := Map(p, c)
			if err == nil {
				out = append(out, m)
			}
		}
	}
	return out
}
