package analyzer

import (
	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/model"
)

// ParameterFieldStrategy finds methods whose parameters repeat the fields
// of a class. The method's own class is a valid target.
type ParameterFieldStrategy struct {
	*detection
}

// Type implements Strategy
func (s *ParameterFieldStrategy) Type() domain.DataClumpType {
	return domain.ParametersToFieldsDataClump
}

// Label implements Strategy
func (s *ParameterFieldStrategy) Label() string {
	return "Parameter Field Detector"
}

// Containers implements Strategy
func (s *ParameterFieldStrategy) Containers() []string {
	return s.project.MethodKeys()
}

// Detect compares the parameters of one method against candidate classes
func (s *ParameterFieldStrategy) Detect(key string) ([]*domain.DataClump, error) {
	m, err := s.method(key)
	if err != nil {
		return nil, err
	}

	minimum := s.options.SharedParametersToFieldsAmountMinimum
	owner, complete, ok, err := s.eligibleMethod(m, minimum)
	if err != nil || !ok {
		return nil, err
	}

	var candidates []*model.ClassOrInterface
	if s.index != nil {
		candidates = s.index.CandidateClassesForParameters(m)
	} else {
		candidates = s.allClasses()
	}

	methodModifier := s.options.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier
	fieldModifier := s.options.FieldsOfClassesWithUnknownHierarchyProbabilityModifier
	params := parameterVariables(activeParameters(m))

	var clumps []*domain.DataClump
	for _, other := range candidates {
		if other.Auxclass {
			continue
		}
		otherComplete, otherEligible := s.classComplete(other, fieldModifier)
		if !otherEligible {
			continue
		}

		fields := s.fields.Fields(other, s.includeInherited())
		pairs := MatchVariables(s.scorer, params, fieldVariables(fields), true)
		if len(pairs) < minimum {
			continue
		}

		probability := ClumpProbability(
			HierarchyModifier(complete, methodModifier),
			HierarchyModifier(otherComplete, fieldModifier),
			pairs,
		)
		ends := clumpEnds{from: owner, fromMethod: m, to: other}
		clumps = append(clumps, newDataClump(s.Type(), ends, pairs, probability))
	}
	return clumps, nil
}
