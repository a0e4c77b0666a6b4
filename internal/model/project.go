package model

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ludo-technologies/clumpscn/domain"
)

// Project is the entity arena: one dictionary per entity kind.
// It is populated once by a loader and is read-only during detection.
type Project struct {
	classes    map[string]*ClassOrInterface
	methods    map[string]*Method
	fields     map[string]*Field
	parameters map[string]*Parameter

	mu         sync.Mutex
	classKeys  []string
	methodKeys []string
	sorted     bool
}

// ProjectStats summarizes the size of a project
type ProjectStats struct {
	Files      int
	Classes    int
	Methods    int
	Fields     int
	Parameters int
}

// NewProject creates an empty project
func NewProject() *Project {
	return &Project{
		classes:    make(map[string]*ClassOrInterface),
		methods:    make(map[string]*Method),
		fields:     make(map[string]*Field),
		parameters: make(map[string]*Parameter),
	}
}

// AddClass registers a class together with its fields, methods and parameters.
// Registering a key twice replaces the previous definition and everything it owned.
func (p *Project) AddClass(c *ClassOrInterface) {
	if previous, ok := p.classes[c.Key]; ok {
		p.forget(previous)
	}
	p.classes[c.Key] = c
	for _, f := range c.Fields {
		p.fields[f.Key] = f
	}
	for _, m := range c.Methods {
		p.methods[m.Key] = m
		for _, param := range m.Parameters {
			p.parameters[param.Key] = param
		}
	}
	p.mu.Lock()
	p.sorted = false
	p.mu.Unlock()
}

func (p *Project) forget(c *ClassOrInterface) {
	for _, f := range c.Fields {
		if p.fields[f.Key] == f {
			delete(p.fields, f.Key)
		}
	}
	for _, m := range c.Methods {
		if p.methods[m.Key] != m {
			continue
		}
		delete(p.methods, m.Key)
		for _, param := range m.Parameters {
			if p.parameters[param.Key] == param {
				delete(p.parameters, param.Key)
			}
		}
	}
}

// Class resolves a class or interface key
func (p *Project) Class(key string) (*ClassOrInterface, bool) {
	c, ok := p.classes[key]
	return c, ok
}

// Method resolves a method key
func (p *Project) Method(key string) (*Method, bool) {
	m, ok := p.methods[key]
	return m, ok
}

// Field resolves a member field key
func (p *Project) Field(key string) (*Field, bool) {
	f, ok := p.fields[key]
	return f, ok
}

// Parameter resolves a method parameter key
func (p *Project) Parameter(key string) (*Parameter, bool) {
	param, ok := p.parameters[key]
	return param, ok
}

// OwnerOf returns the class owning a method. A missing owner is a loader bug.
func (p *Project) OwnerOf(m *Method) (*ClassOrInterface, error) {
	c, ok := p.classes[m.ClassOrInterfaceKey]
	if !ok {
		return nil, domain.NewContractViolationError(
			fmt.Sprintf("method %q references unknown class or interface %q", m.Key, m.ClassOrInterfaceKey), nil)
	}
	return c, nil
}

// ClassKeys returns all class keys in sorted order
func (p *Project) ClassKeys() []string {
	p.ensureSorted()
	return p.classKeys
}

// MethodKeys returns all method keys in sorted order
func (p *Project) MethodKeys() []string {
	p.ensureSorted()
	return p.methodKeys
}

func (p *Project) ensureSorted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sorted {
		return
	}
	p.classKeys = sortedKeys(p.classes)
	p.methodKeys = sortedKeys(p.methods)
	p.sorted = true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that every owner reference resolves.
// The first violation is returned as a CONTRACT_VIOLATION error.
func (p *Project) Validate() error {
	for _, key := range sortedKeys(p.fields) {
		f := p.fields[key]
		if _, ok := p.classes[f.ClassOrInterfaceKey]; !ok {
			return domain.NewContractViolationError(
				fmt.Sprintf("field %q references unknown class or interface %q", f.Key, f.ClassOrInterfaceKey), nil)
		}
	}
	for _, key := range sortedKeys(p.methods) {
		if _, err := p.OwnerOf(p.methods[key]); err != nil {
			return err
		}
	}
	for _, key := range sortedKeys(p.parameters) {
		param := p.parameters[key]
		if _, ok := p.methods[param.MethodKey]; !ok {
			return domain.NewContractViolationError(
				fmt.Sprintf("parameter %q references unknown method %q", param.Key, param.MethodKey), nil)
		}
	}
	return nil
}

// Stats counts every registered entity, auxiliary classes included.
// Files are the distinct file paths of registered classes.
func (p *Project) Stats() ProjectStats {
	files := make(map[string]struct{})
	for _, c := range p.classes {
		if c.FilePath != "" {
			files[c.FilePath] = struct{}{}
		}
	}
	return ProjectStats{
		Files:      len(files),
		Classes:    len(p.classes),
		Methods:    len(p.methods),
		Fields:     len(p.fields),
		Parameters: len(p.parameters),
	}
}
