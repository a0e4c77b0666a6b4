package analyzer

import (
	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/model"
)

// ParameterParameterStrategy finds methods sharing a group of parameters
type ParameterParameterStrategy struct {
	*detection
}

// Type implements Strategy
func (s *ParameterParameterStrategy) Type() domain.DataClumpType {
	return domain.ParametersToParametersDataClump
}

// Label implements Strategy
func (s *ParameterParameterStrategy) Label() string {
	return "Parameter Detector"
}

// Containers implements Strategy
func (s *ParameterParameterStrategy) Containers() []string {
	return s.project.MethodKeys()
}

// Detect compares the parameters of one method against every candidate method
func (s *ParameterParameterStrategy) Detect(key string) ([]*domain.DataClump, error) {
	m, err := s.method(key)
	if err != nil {
		return nil, err
	}

	minimum := s.options.SharedParametersToParametersAmountMinimum
	owner, complete, ok, err := s.eligibleMethod(m, minimum)
	if err != nil || !ok {
		return nil, err
	}

	var candidates []*model.Method
	if s.index != nil {
		candidates = s.index.CandidateMethodsForParameters(m)
	} else {
		candidates = s.allMethods()
	}

	modifier := s.options.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier
	params := parameterVariables(activeParameters(m))

	var clumps []*domain.DataClump
	for _, other := range candidates {
		if other.Key == m.Key {
			continue
		}
		otherOwner, otherComplete, otherOK, err := s.eligibleMethod(other, minimum)
		if err != nil {
			return nil, err
		}
		if !otherOK {
			continue
		}

		pairs := MatchVariables(s.scorer, params, parameterVariables(activeParameters(other)), true)
		if len(pairs) < minimum {
			continue
		}

		probability := ClumpProbability(
			HierarchyModifier(complete, modifier),
			HierarchyModifier(otherComplete, modifier),
			pairs,
		)
		ends := clumpEnds{from: owner, fromMethod: m, to: otherOwner, toMethod: other}
		clumps = append(clumps, newDataClump(s.Type(), ends, pairs, probability))
	}
	return clumps, nil
}
