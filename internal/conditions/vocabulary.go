package conditions

import (
	"fmt"
	"strings"

	"github.com/san-kum/waddington/internal/dynamo"
)

// Channel is an abstract measurement channel. Vocabularies give it a name.
type Channel int

const (
	Emotional Channel = iota
	Executive
	Vagal
	SkinConductance
)

// Channels lists every channel in display order.
func Channels() []Channel { return []Channel{Emotional, Executive, Vagal, SkinConductance} }

// Vocabulary names channels for display. It never changes the numbers.
type Vocabulary struct {
	Name  string
	names map[Channel]string
}

func (v Vocabulary) ChannelName(c Channel) string {
	if n, ok := v.names[c]; ok {
		return n
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

var (
	Physiological = Vocabulary{
		Name: "physiological",
		names: map[Channel]string{
			Emotional:       "fNIRS (Amygdala)",
			Executive:       "fNIRS (DLPFC)",
			Vagal:           "HRV (Vagal Tone)",
			SkinConductance: "GSR (Stress)",
		},
	}
	Plain = Vocabulary{
		Name: "plain",
		names: map[Channel]string{
			Emotional:       "Emotional reactivity",
			Executive:       "Executive control",
			Vagal:           "Vagal tone",
			SkinConductance: "Skin conductance",
		},
	}
)

func Vocabularies() []Vocabulary { return []Vocabulary{Physiological, Plain} }

func ParseVocabulary(s string) (Vocabulary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "physiological", "physio":
		return Physiological, nil
	case "plain":
		return Plain, nil
	}
	return Vocabulary{}, fmt.Errorf("%w: unknown vocabulary %q", dynamo.ErrInvalidParameter, s)
}
