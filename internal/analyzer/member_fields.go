package analyzer

import (
	"sync"

	"github.com/ludo-technologies/clumpscn/internal/model"
)

// memberFieldCache memoizes field lists per class and inheritance mode
type memberFieldCache struct {
	project *model.Project

	mu        sync.RWMutex
	declared  map[string][]*model.Field
	flattened map[string][]*model.Field
}

func newMemberFieldCache(project *model.Project) *memberFieldCache {
	return &memberFieldCache{
		project:   project,
		declared:  make(map[string][]*model.Field),
		flattened: make(map[string][]*model.Field),
	}
}

// Fields returns the non-ignored fields of c in source order. With
// includeInherited, the fields of resolved superclasses (extends only,
// depth first) follow as copies whose InheritedFrom names the direct
// superclass they were reached through. The slice must not be modified.
func (m *memberFieldCache) Fields(c *model.ClassOrInterface, includeInherited bool) []*model.Field {
	cache := m.declared
	if includeInherited {
		cache = m.flattened
	}

	m.mu.RLock()
	fields, ok := cache[c.Key]
	m.mu.RUnlock()
	if ok {
		return fields
	}

	fields = declaredFields(c)
	if includeInherited {
		fields = append(fields, m.inheritedFields(c)...)
	}

	m.mu.Lock()
	cache[c.Key] = fields
	m.mu.Unlock()
	return fields
}

func declaredFields(c *model.ClassOrInterface) []*model.Field {
	var fields []*model.Field
	for _, f := range c.SortedFields() {
		if !f.Ignore {
			fields = append(fields, f)
		}
	}
	return fields
}

type inheritanceStep struct {
	class *model.ClassOrInterface
	via   string
}

func (m *memberFieldCache) inheritedFields(c *model.ClassOrInterface) []*model.Field {
	visited := map[string]bool{c.Key: true}
	var stack []inheritanceStep
	for i := len(c.Extends) - 1; i >= 0; i-- {
		if super, ok := m.project.Class(c.Extends[i]); ok {
			stack = append(stack, inheritanceStep{class: super, via: super.Key})
		}
	}

	var fields []*model.Field
	for len(stack) > 0 {
		step := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[step.class.Key] {
			continue
		}
		visited[step.class.Key] = true

		for _, f := range declaredFields(step.class) {
			copied := *f
			copied.InheritedFrom = step.via
			fields = append(fields, &copied)
		}

		for i := len(step.class.Extends) - 1; i >= 0; i-- {
			if super, ok := m.project.Class(step.class.Extends[i]); ok {
				stack = append(stack, inheritanceStep{class: super, via: step.via})
			}
		}
	}
	return fields
}
