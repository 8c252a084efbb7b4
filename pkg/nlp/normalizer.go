package nlp

import (
	"regexp"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pick selects which side of an "(A)/(B)" dual transcription survives.
type Pick int

const (
	PickRight Pick = iota
	PickLeft
)

var (
	slashPattern   = regexp.MustCompile(`\(([^/)]+)\)/\(([^)]+)\)`)
	leadingNoise   = regexp.MustCompile(`^n/\s*`)
	bracketPattern = regexp.MustCompile(`\[[^\]]*\]`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

type INormalizer interface {
	Normalize(text string) string
}

type Normalizer struct {
	pick Pick
}

func NewNormalizer(pick Pick) INormalizer {
	return &Normalizer{pick: pick}
}

// Normalize strips transcription markup from recognized speech:
// dual forms, the leading noise tag, bracketed annotations and
// break markers. Hangul is recomposed to NFC so keyword matching
// sees one form.
func (n *Normalizer) Normalize(text string) string {
	if composed, _, err := transform.String(norm.NFC, text); err == nil {
		text = composed
	}

	replacement := `$2`
	if n.pick == PickLeft {
		replacement = `$1`
	}
	text = slashPattern.ReplaceAllString(text, replacement)
	text = leadingNoise.ReplaceAllString(text, "")
	text = bracketPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "+", "")
	text = strings.ReplaceAll(text, "/", "")
	text = spacePattern.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
