package analyzer

import (
	"strings"

	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/model"
)

// VariablePair is one accepted source/target match
type VariablePair struct {
	Source      *model.Variable
	Target      *model.Variable
	Probability float64
}

// MatchVariables compares every source variable against every target
// variable and keeps pairs scoring above domain.PairAcceptanceBound.
// A source may pair with several targets; pairs are in source order.
func MatchVariables(scorer *Scorer, sources, targets []*model.Variable, ignoreModifiers bool) []VariablePair {
	var pairs []VariablePair
	for _, s := range sources {
		for _, t := range targets {
			p := scorer.Similarity(s, t, ignoreModifiers)
			if p > domain.PairAcceptanceBound {
				pairs = append(pairs, VariablePair{Source: s, Target: t, Probability: p})
			}
		}
	}
	return pairs
}

// HierarchyModifier is 1 for a complete hierarchy, else the configured damping
func HierarchyModifier(complete bool, modifier float64) float64 {
	if complete {
		return 1
	}
	return modifier
}

// ClumpProbability is fromModifier × toModifier × mean pair similarity
func ClumpProbability(fromModifier, toModifier float64, pairs []VariablePair) float64 {
	if len(pairs) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range pairs {
		sum += p.Probability
	}
	return fromModifier * toModifier * (sum / float64(len(pairs)))
}

// clumpEnds names the two containers of a clump
type clumpEnds struct {
	from       *model.ClassOrInterface
	fromMethod *model.Method
	to         *model.ClassOrInterface
	toMethod   *model.Method
}

func (e clumpEnds) fromContainerKey() string {
	if e.fromMethod != nil {
		return e.fromMethod.Key
	}
	return e.from.Key
}

func (e clumpEnds) toContainerKey() string {
	if e.toMethod != nil {
		return e.toMethod.Key
	}
	return e.to.Key
}

// newDataClump assembles the report record. The key concatenates matched
// source names in pair order, so a source paired twice appears twice in the
// key while data_clump_data keeps its last pairing.
func newDataClump(kind domain.DataClumpType, ends clumpEnds, pairs []VariablePair, probability float64) *domain.DataClump {
	var names strings.Builder
	data := make(map[string]*domain.DataClumpVariable, len(pairs))
	for _, p := range pairs {
		names.WriteString(p.Source.Name)
		data[p.Source.Key] = &domain.DataClumpVariable{
			Key:         p.Source.Key,
			Name:        p.Source.Name,
			Type:        p.Source.Type,
			Probability: p.Probability,
			Modifiers:   p.Source.Modifiers,
			Position:    reportPosition(p.Source.Position),
			ToVariable: &domain.DataClumpTargetVariable{
				Key:       p.Target.Key,
				Name:      p.Target.Name,
				Type:      p.Target.Type,
				Modifiers: p.Target.Modifiers,
				Position:  reportPosition(p.Target.Position),
			},
		}
	}

	key := strings.Join([]string{
		string(kind),
		ends.from.FilePath,
		ends.fromContainerKey(),
		ends.toContainerKey(),
		names.String(),
	}, "-")

	clump := &domain.DataClump{
		Type:                     domain.DataClumpRecordType,
		Key:                      key,
		Probability:              probability,
		FromFilePath:             ends.from.FilePath,
		FromClassOrInterfaceName: ends.from.Name,
		FromClassOrInterfaceKey:  ends.from.Key,
		ToFilePath:               ends.to.FilePath,
		ToClassOrInterfaceName:   ends.to.Name,
		ToClassOrInterfaceKey:    ends.to.Key,
		DataClumpType:            kind,
		DataClumpData:            data,
	}
	if ends.fromMethod != nil {
		clump.FromMethodName = domain.StringPtr(ends.fromMethod.Name)
		clump.FromMethodKey = domain.StringPtr(ends.fromMethod.Key)
	}
	if ends.toMethod != nil {
		clump.ToMethodName = domain.StringPtr(ends.toMethod.Name)
		clump.ToMethodKey = domain.StringPtr(ends.toMethod.Key)
	}
	return clump
}

func reportPosition(p *model.Position) *domain.Position {
	if p == nil {
		return nil
	}
	return &domain.Position{
		StartLine:   p.StartLine,
		StartColumn: p.StartColumn,
		EndLine:     p.EndLine,
		EndColumn:   p.EndColumn,
	}
}

func fieldVariables(fields []*model.Field) []*model.Variable {
	vars := make([]*model.Variable, len(fields))
	for i, f := range fields {
		vars[i] = &f.Variable
	}
	return vars
}

func parameterVariables(params []*model.Parameter) []*model.Variable {
	vars := make([]*model.Variable, len(params))
	for i, p := range params {
		vars[i] = &p.Variable
	}
	return vars
}
