package analyzer

import (
	"strings"

	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/model"
)

// v describes a field or parameter in test fixtures
type v struct {
	name      string
	typ       string
	modifiers []string
}

func typePtr(t string) *string {
	if t == "" {
		return nil
	}
	return &t
}

func classKey(name string) string {
	return name + ".java/class/" + name
}

func newClass(name string, fields ...v) *model.ClassOrInterface {
	key := classKey(name)
	c := model.NewClassOrInterface(key, name, model.KindClass, name+".java")
	for i, f := range fields {
		addField(c, f, i+1)
	}
	return c
}

func addField(c *model.ClassOrInterface, f v, line int) *model.Field {
	key := model.FieldKey(c.Key, f.name)
	field := &model.Field{
		Variable: model.Variable{
			Key:       key,
			Name:      f.name,
			Type:      typePtr(f.typ),
			Modifiers: f.modifiers,
			Position:  &model.Position{StartLine: line, StartColumn: 5, EndLine: line, EndColumn: 20},
		},
		ClassOrInterfaceKey: c.Key,
	}
	c.Fields[key] = field
	return field
}

func addMethod(c *model.ClassOrInterface, name string, params ...v) *model.Method {
	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.typ
	}
	key := model.MethodKey(c.Key, name+"("+strings.Join(types, ",")+")")

	m := &model.Method{Key: key, Name: name, ClassOrInterfaceKey: c.Key}
	for i, p := range params {
		m.Parameters = append(m.Parameters, &model.Parameter{
			Variable: model.Variable{
				Key:      model.ParameterKey(key, p.name),
				Name:     p.name,
				Type:     typePtr(p.typ),
				Position: &model.Position{StartLine: 10, StartColumn: 10 + i*10},
			},
			MethodKey: key,
			Index:     i,
		})
	}
	c.Methods[key] = m
	return m
}

func extends(c *model.ClassOrInterface, parents ...string) *model.ClassOrInterface {
	c.Extends = append(c.Extends, parents...)
	return c
}

func buildProject(classes ...*model.ClassOrInterface) *model.Project {
	p := model.NewProject()
	for _, c := range classes {
		p.AddClass(c)
	}
	return p
}

func exactOptions() DetectorOptions {
	opts := DefaultDetectorOptions()
	opts.MaxGoroutines = 2
	return opts
}

// clumpsOf filters detected clumps by type, sorted by key
func clumpsOf(result *DetectionResult, kind domain.DataClumpType) []*domain.DataClump {
	var out []*domain.DataClump
	for _, key := range result.Keys {
		if c := result.DataClumps[key]; c.DataClumpType == kind {
			out = append(out, c)
		}
	}
	return out
}

// between returns the clumps pointing from one container key to another
func between(clumps []*domain.DataClump, from, to string) []*domain.DataClump {
	var out []*domain.DataClump
	for _, c := range clumps {
		fromKey, toKey := c.FromClassOrInterfaceKey, c.ToClassOrInterfaceKey
		if c.FromMethodKey != nil {
			fromKey = *c.FromMethodKey
		}
		if c.ToMethodKey != nil {
			toKey = *c.ToMethodKey
		}
		if fromKey == from && toKey == to {
			out = append(out, c)
		}
	}
	return out
}

var private = []string{"private"}
