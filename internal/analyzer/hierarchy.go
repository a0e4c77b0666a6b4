package analyzer

import (
	"sync"

	"github.com/ludo-technologies/clumpscn/internal/model"
)

// HierarchyReasoner answers inheritance queries over project keys.
// Results are memoized; the project must not change after construction.
type HierarchyReasoner struct {
	project *model.Project

	mu        sync.RWMutex
	ancestors map[string][]string
	complete  map[string]bool
	inherited map[string]bool
}

// NewHierarchyReasoner creates a reasoner for the project
func NewHierarchyReasoner(project *model.Project) *HierarchyReasoner {
	return &HierarchyReasoner{
		project:   project,
		ancestors: make(map[string][]string),
		complete:  make(map[string]bool),
		inherited: make(map[string]bool),
	}
}

// AncestorKeys returns the keys of all superclasses and interfaces of c,
// resolved or not, in breadth-first discovery order. With recursive=false
// only the direct extends and implements keys are returned.
// The returned slice must not be modified.
func (h *HierarchyReasoner) AncestorKeys(c *model.ClassOrInterface, recursive bool) []string {
	if !recursive {
		return dedupe(c.AncestorKeys(), c.Key)
	}

	h.mu.RLock()
	keys, ok := h.ancestors[c.Key]
	h.mu.RUnlock()
	if ok {
		return keys
	}

	keys = h.collectAncestors(c)

	h.mu.Lock()
	h.ancestors[c.Key] = keys
	h.mu.Unlock()
	return keys
}

// collectAncestors walks the inheritance graph with an explicit worklist.
// Every key is expanded at most once, so diamonds and cycles terminate.
func (h *HierarchyReasoner) collectAncestors(c *model.ClassOrInterface) []string {
	visited := map[string]bool{c.Key: true}
	var found []string
	queue := c.AncestorKeys()

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		if visited[key] {
			continue
		}
		visited[key] = true
		found = append(found, key)

		if ancestor, ok := h.project.Class(key); ok {
			queue = append(queue, ancestor.AncestorKeys()...)
		}
	}
	return found
}

func dedupe(keys []string, exclude string) []string {
	seen := map[string]bool{exclude: true}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// IsHierarchyComplete reports whether every ancestor key resolves in the project
func (h *HierarchyReasoner) IsHierarchyComplete(c *model.ClassOrInterface) bool {
	h.mu.RLock()
	complete, ok := h.complete[c.Key]
	h.mu.RUnlock()
	if ok {
		return complete
	}

	complete = true
	for _, key := range h.AncestorKeys(c, true) {
		if _, resolved := h.project.Class(key); !resolved {
			complete = false
			break
		}
	}

	h.mu.Lock()
	h.complete[c.Key] = complete
	h.mu.Unlock()
	return complete
}

// IsSubclassOf reports whether ancestor is reachable from c
func (h *HierarchyReasoner) IsSubclassOf(c, ancestor *model.ClassOrInterface) bool {
	for _, key := range h.AncestorKeys(c, true) {
		if key == ancestor.Key {
			return true
		}
	}
	return false
}

// IsAncestorOrDescendant reports whether a and b lie on one inheritance line
func (h *HierarchyReasoner) IsAncestorOrDescendant(a, b *model.ClassOrInterface) bool {
	return h.IsSubclassOf(a, b) || h.IsSubclassOf(b, a)
}

// IsInherited reports whether m overrides or re-declares an ancestor method.
// An explicit override annotation is trusted; otherwise any resolved ancestor
// declaring the same name and ordered parameter types counts.
func (h *HierarchyReasoner) IsInherited(m *model.Method) bool {
	if m.OverrideAnnotation {
		return true
	}

	h.mu.RLock()
	inherited, ok := h.inherited[m.Key]
	h.mu.RUnlock()
	if ok {
		return inherited
	}

	inherited = h.declaredByAncestor(m)

	h.mu.Lock()
	h.inherited[m.Key] = inherited
	h.mu.Unlock()
	return inherited
}

func (h *HierarchyReasoner) declaredByAncestor(m *model.Method) bool {
	owner, ok := h.project.Class(m.ClassOrInterfaceKey)
	if !ok {
		return false
	}
	for _, key := range h.AncestorKeys(owner, true) {
		ancestor, ok := h.project.Class(key)
		if !ok {
			continue
		}
		for _, candidate := range ancestor.Methods {
			if m.HasSameSignatureAs(candidate) {
				return true
			}
		}
	}
	return false
}
