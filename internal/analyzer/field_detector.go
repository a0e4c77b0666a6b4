package analyzer

import (
	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/model"
)

// FieldFieldStrategy finds classes sharing a group of member fields
type FieldFieldStrategy struct {
	*detection
}

// Type implements Strategy
func (s *FieldFieldStrategy) Type() domain.DataClumpType {
	return domain.FieldsToFieldsDataClump
}

// Label implements Strategy
func (s *FieldFieldStrategy) Label() string {
	return "Field Detector"
}

// Containers implements Strategy
func (s *FieldFieldStrategy) Containers() []string {
	return s.project.ClassKeys()
}

// Detect compares the fields of one class against every candidate class
func (s *FieldFieldStrategy) Detect(key string) ([]*domain.DataClump, error) {
	c, err := s.class(key)
	if err != nil {
		return nil, err
	}
	if c.Auxclass {
		return nil, nil
	}

	modifier := s.options.FieldsOfClassesWithUnknownHierarchyProbabilityModifier
	complete, eligible := s.classComplete(c, modifier)
	if !eligible {
		return nil, nil
	}

	minimum := s.options.SharedFieldsToFieldsAmountMinimum
	fields := s.fields.Fields(c, s.includeInherited())
	if len(fields) < minimum {
		return nil, nil
	}

	var candidates []*model.ClassOrInterface
	if s.index != nil {
		candidates = s.index.CandidateClassesForFields(c, fields)
	} else {
		candidates = s.allClasses()
	}

	var clumps []*domain.DataClump
	for _, other := range candidates {
		if other.Auxclass || other.Key == c.Key {
			continue
		}
		otherComplete, otherEligible := s.classComplete(other, modifier)
		if !otherEligible {
			continue
		}

		sources, targets := fields, s.fields.Fields(other, s.includeInherited())
		// Within one inheritance line only explicitly declared fields count;
		// a field merely passed down is the same field, not a repetition.
		if s.hierarchy.IsAncestorOrDescendant(c, other) {
			sources, targets = s.fields.Fields(c, false), s.fields.Fields(other, false)
		}

		pairs := MatchVariables(s.scorer, fieldVariables(sources), fieldVariables(targets), false)
		if len(pairs) < minimum {
			continue
		}

		probability := ClumpProbability(
			HierarchyModifier(complete, modifier),
			HierarchyModifier(otherComplete, modifier),
			pairs,
		)
		clumps = append(clumps, newDataClump(s.Type(), clumpEnds{from: c, to: other}, pairs, probability))
	}
	return clumps, nil
}
