package model

import (
	"sort"
	"strings"
)

// Kind discriminates classes from interfaces
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
)

// Position is a source span as reported by the extractor
type Position struct {
	StartLine   int `json:"startLine" yaml:"startLine"`
	StartColumn int `json:"startColumn" yaml:"startColumn"`
	EndLine     int `json:"endLine" yaml:"endLine"`
	EndColumn   int `json:"endColumn" yaml:"endColumn"`
}

// Variable is the common part of fields and parameters.
// Type and Modifiers are nil when the extractor could not determine them.
type Variable struct {
	Key       string
	Name      string
	Type      *string
	Modifiers []string
	Ignore    bool
	Position  *Position

	// HasTypeVariable marks generic type variables such as T in List<T>.
	HasTypeVariable bool

	// InheritedFrom is set on field copies reached through a superclass.
	InheritedFrom string
}

// TypeName returns the declared type or an empty string when unknown
func (v *Variable) TypeName() string {
	if v.Type == nil {
		return ""
	}
	return *v.Type
}

// HasType reports whether the declared type is known
func (v *Variable) HasType() bool {
	return v.Type != nil && *v.Type != ""
}

// Field is a member variable owned by a class or interface
type Field struct {
	Variable
	ClassOrInterfaceKey string
}

// Parameter is a method parameter; Index is the declaration order
type Parameter struct {
	Variable
	MethodKey string
	Index     int
}

// Method belongs to exactly one class or interface
type Method struct {
	Key                 string
	Name                string
	Modifiers           []string
	OverrideAnnotation  bool
	ReturnType          *string
	Parameters          []*Parameter
	ClassOrInterfaceKey string
	Constructor         bool
}

// Signature renders name(type1, type2) used for override detection
func (m *Method) Signature() string {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i, p := range m.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.TypeName())
	}
	b.WriteByte(')')
	return b.String()
}

// HasSameSignatureAs compares parameter count first, then the rendered signature
func (m *Method) HasSameSignatureAs(other *Method) bool {
	if len(m.Parameters) != len(other.Parameters) {
		return false
	}
	return m.Signature() == other.Signature()
}

// ClassOrInterface is a detection container for fields and methods
type ClassOrInterface struct {
	Key        string
	Name       string
	Kind       Kind
	FilePath   string
	Modifiers  []string
	Fields     map[string]*Field
	Methods    map[string]*Method
	Extends    []string
	Implements []string
	Auxclass   bool
	Anonymous  bool

	// DefinedIn is the key of the enclosing class for inner definitions.
	DefinedIn string

	// Constructors are kept apart from Methods and never take part in detection.
	Constructors map[string]*Method
}

// NewClassOrInterface creates an empty container
func NewClassOrInterface(key, name string, kind Kind, filePath string) *ClassOrInterface {
	return &ClassOrInterface{
		Key:      key,
		Name:     name,
		Kind:     kind,
		FilePath: filePath,
		Fields:   make(map[string]*Field),
		Methods:  make(map[string]*Method),

		Constructors: make(map[string]*Method),
	}
}

// SortedFields returns the owned fields in source order, falling back to key order
func (c *ClassOrInterface) SortedFields() []*Field {
	fields := make([]*Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		return lessVariable(&fields[i].Variable, &fields[j].Variable)
	})
	return fields
}

func lessVariable(a, b *Variable) bool {
	pa, pb := a.Position, b.Position
	if (pa == nil) != (pb == nil) {
		return pa != nil
	}
	if pa != nil {
		if pa.StartLine != pb.StartLine {
			return pa.StartLine < pb.StartLine
		}
		if pa.StartColumn != pb.StartColumn {
			return pa.StartColumn < pb.StartColumn
		}
	}
	return a.Key < b.Key
}

// SortedMethods returns the owned methods ordered by key
func (c *ClassOrInterface) SortedMethods() []*Method {
	keys := make([]string, 0, len(c.Methods))
	for k := range c.Methods {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	methods := make([]*Method, 0, len(keys))
	for _, k := range keys {
		methods = append(methods, c.Methods[k])
	}
	return methods
}

// AncestorKeys returns extends followed by implements, in declaration order
func (c *ClassOrInterface) AncestorKeys() []string {
	keys := make([]string, 0, len(c.Extends)+len(c.Implements))
	keys = append(keys, c.Extends...)
	keys = append(keys, c.Implements...)
	return keys
}

// FieldKey composes the key of a member field
func FieldKey(classKey, local string) string {
	return classKey + "/memberField/" + local
}

// MethodKey composes the key of a method
func MethodKey(classKey, local string) string {
	return classKey + "/method/" + local
}

// ConstructorKey composes the key of a constructor
func ConstructorKey(classKey, local string) string {
	return classKey + "/constructor/" + local
}

// ParameterKey composes the key of a method parameter
func ParameterKey(methodKey, local string) string {
	return methodKey + "/parameter/" + local
}
