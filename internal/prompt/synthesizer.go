package prompt

import (
	"fmt"
	"strings"
)

// Branch identifies which policy rule produced a prompt.
type Branch string

// Possible policy branches
const (
	BranchGlobalStyle Branch = "global_style"
	BranchArtistic    Branch = "artistic"
	BranchClipart     Branch = "clipart"
)

// DefaultStyleKeywords is the keyword vocabulary that marks a per-card hint as
// artistic direction rather than a description of the subject.
var DefaultStyleKeywords = []string{
	"style", "painting", "drawing", "photo", "realistic", "art",
	"gogh", "picasso", "monet", "dali", "sketch", "3d",
}

const (
	qualityClause = "High quality, detailed. Visual depiction only. Unlabeled."
	clipartClause = "Isolated on white background. Vector style, vibrant colors. Visual depiction only. Unlabeled."
)

// Prompt is a synthesized image-generation instruction.
type Prompt struct {
	// Text is the full prompt, constraint clause included.
	Text string
	// NegativeConstraint is the clause forbidding text inside the image.
	NegativeConstraint string
	// Branch is the policy rule that produced the prompt.
	Branch Branch
}

// String returns the full prompt text.
func (p Prompt) String() string {
	return p.Text
}

// Synthesizer builds prompts. The zero value uses DefaultStyleKeywords.
type Synthesizer struct {
	keywords []string
}

// NewSynthesizer creates a Synthesizer with the given style keywords.
// Keywords are matched case-insensitively as substrings of the hint.
// An empty list falls back to DefaultStyleKeywords.
func NewSynthesizer(keywords []string) *Synthesizer {
	normalized := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			normalized = append(normalized, kw)
		}
	}
	return &Synthesizer{keywords: normalized}
}

// Keywords returns the style keywords in use.
func (s *Synthesizer) Keywords() []string {
	if s == nil || len(s.keywords) == 0 {
		return DefaultStyleKeywords
	}
	return s.keywords
}

// IsArtistic reports whether a hint contains a style-indicating keyword.
func (s *Synthesizer) IsArtistic(hint string) bool {
	lowered := strings.ToLower(hint)
	for _, kw := range s.Keywords() {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Build composes the prompt for a term, an optional per-card hint and an
// optional deck-wide style.
func (s *Synthesizer) Build(term, customPrompt, globalStyle string) Prompt {
	term = strings.TrimSpace(term)
	customPrompt = strings.TrimSpace(customPrompt)
	globalStyle = strings.TrimSpace(globalStyle)

	negative := NegativeConstraint(term)

	var b strings.Builder
	var branch Branch

	switch {
	case globalStyle != "":
		branch = BranchGlobalStyle
		fmt.Fprintf(&b, "A strictly wordless, text-free image of %s, with an overarching style of %s.", term, globalStyle)
		if customPrompt != "" {
			fmt.Fprintf(&b, " %s.", customPrompt)
		}
		b.WriteString(" " + qualityClause)

	case customPrompt != "" && s.IsArtistic(customPrompt):
		branch = BranchArtistic
		fmt.Fprintf(&b, "A strictly wordless, text-free image of %s, %s. %s", term, customPrompt, qualityClause)

	default:
		branch = BranchClipart
		fmt.Fprintf(&b, "A strictly wordless, text-free clipart icon of %s", term)
		if customPrompt != "" {
			fmt.Fprintf(&b, " described as %s", customPrompt)
		}
		b.WriteString(". " + clipartClause)
	}

	b.WriteString(" " + negative)

	return Prompt{
		Text:               b.String(),
		NegativeConstraint: negative,
		Branch:             branch,
	}
}

// NegativeConstraint returns the clause that stops the generator from
// rendering the term, or any other text, inside the image.
func NegativeConstraint(term string) string {
	return fmt.Sprintf(
		"Do not spell the word \"%s\". Do not write any text, letters, or numbers. "+
			"No typography, no signage, no labels inside the image. Symbolism only.",
		term,
	)
}
