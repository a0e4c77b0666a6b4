package analyzer

import (
	"strings"

	"github.com/xrash/smetrics"

	"github.com/ludo-technologies/clumpscn/internal/model"
)

// NameMatcher scores how alike two variable names are, in [0,1]
type NameMatcher interface {
	Similarity(a, b string) float64
}

// ExactNameMatcher accepts identical names only
type ExactNameMatcher struct{}

// Similarity implements NameMatcher
func (ExactNameMatcher) Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	return 0
}

// LevenshteinNameMatcher scores names by normalized edit distance.
// Names are compared lowercased with everything but letters stripped, so
// "user_id2" and "userId" are equal. A name that sanitizes to nothing scores 0.
// Scores below Threshold are reported as 0.
type LevenshteinNameMatcher struct {
	Threshold float64
}

// Similarity implements NameMatcher
func (m LevenshteinNameMatcher) Similarity(a, b string) float64 {
	a, b = sanitizeName(a), sanitizeName(b)
	if a == "" || b == "" {
		return 0
	}

	// sanitized names are ASCII, so byte lengths match the edit distance unit
	longest := max(len(a), len(b))
	distance := smetrics.WagnerFischer(a, b, 1, 1, 1)
	score := 1 - float64(distance)/float64(longest)
	if score < m.Threshold {
		return 0
	}
	return score
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, strings.ToLower(name))
}

// NewNameMatcher returns the matcher registered under name
func NewNameMatcher(name string, threshold float64) NameMatcher {
	if name == NameSimilarityLevenshtein {
		return LevenshteinNameMatcher{Threshold: threshold}
	}
	return ExactNameMatcher{}
}

// Scorer compares variables pairwise. It is safe for concurrent use.
type Scorer struct {
	names                   NameMatcher
	unknownTypeModifier     float64
	typeVariablesConsidered bool
}

// NewScorer creates a scorer; a nil matcher means exact name matching
func NewScorer(options DetectorOptions, names NameMatcher) *Scorer {
	if names == nil {
		names = ExactNameMatcher{}
	}
	return &Scorer{
		names:                   names,
		unknownTypeModifier:     options.SimilarityModifierOfVariablesWithUnknownType,
		typeVariablesConsidered: options.TypeVariablesConsidered,
	}
}

// Similarity scores a pair of variables. Field-field comparisons pass
// ignoreModifiers=false; anything involving a parameter passes true.
func (s *Scorer) Similarity(a, b *model.Variable, ignoreModifiers bool) float64 {
	return Similarity(s.effective(a), s.effective(b), s.unknownTypeModifier, ignoreModifiers, s.names)
}

// TypeKey is the type part of an index signature
func (s *Scorer) TypeKey(v *model.Variable) string {
	return s.effective(v).TypeName()
}

// effective hides generic type variables unless they are considered
func (s *Scorer) effective(v *model.Variable) *model.Variable {
	if s.typeVariablesConsidered || !v.HasTypeVariable || v.Type == nil {
		return v
	}
	hidden := *v
	hidden.Type = nil
	return &hidden
}

// Similarity is the multiplicative scoring function: modifier term, type term, name term.
func Similarity(a, b *model.Variable, unknownTypeModifier float64, ignoreModifiers bool, names NameMatcher) float64 {
	if unknownTypeModifier < 0 {
		unknownTypeModifier = 0
	}

	score := 1.0
	if !ignoreModifiers && !SameModifiers(a.Modifiers, b.Modifiers) {
		score = 0
	}
	score *= typeTerm(a, b, unknownTypeModifier)
	if score == 0 {
		return 0
	}
	return score * names.Similarity(a.Name, b.Name)
}

func typeTerm(a, b *model.Variable, unknownTypeModifier float64) float64 {
	bothTyped := a.HasType() && b.HasType()
	bothUntyped := !a.HasType() && !b.HasType()
	if (bothTyped && *a.Type == *b.Type) || bothUntyped {
		return 1
	}
	return unknownTypeModifier
}

// SameModifiers compares modifier sets ignoring order. A nil set only
// equals another nil set.
func SameModifiers(a, b []string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return containsAll(a, b) && containsAll(b, a)
}

func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if h == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
