package dialogue

import (
	"HospitalKiosk/pkg/simulator"
	"context"
	"strings"
)

type Confirmation int

const (
	Unclear Confirmation = iota
	Affirmative
	Negative
)

func (c Confirmation) String() string {
	switch c {
	case Affirmative:
		return "affirmative"
	case Negative:
		return "negative"
	default:
		return "unclear"
	}
}

// Gateway is the live backend as seen by the dialogue.
type Gateway interface {
	// Ask always answers, falling back to the simulator when the backend fails.
	Ask(ctx context.Context, text string, tag simulator.Tag) string
	// Query reports whether the backend itself answered.
	Query(ctx context.Context, text string, tag simulator.Tag) (string, bool)
}

type Classifier struct {
	gateway Gateway
}

func NewClassifier(gateway Gateway) *Classifier {
	return &Classifier{gateway: gateway}
}

func (c *Classifier) Classify(ctx context.Context, mode Mode, text string) Confirmation {
	label := simulator.Classify(text)
	if mode == ModeLive && c.gateway != nil {
		reply, ok := c.gateway.Query(ctx, text, simulator.TagClassify)
		if !ok {
			return Unclear
		}
		label = reply
	}

	switch {
	case strings.Contains(label, simulator.LabelAffirmative):
		return Affirmative
	case strings.Contains(label, simulator.LabelNegative):
		return Negative
	default:
		return Unclear
	}
}
