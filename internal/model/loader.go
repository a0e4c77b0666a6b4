package model

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/ludo-technologies/clumpscn/domain"
)

// ASTFilePattern selects extractor output files below the input directory
const ASTFilePattern = "**/*.json"

type astVariable struct {
	Key                 string    `json:"key"`
	Name                string    `json:"name"`
	Type                *string   `json:"type"`
	Modifiers           []string  `json:"modifiers"`
	Ignore              bool      `json:"ignore"`
	Position            *Position `json:"position"`
	HasTypeVariable     bool      `json:"hasTypeVariable"`
	ClassOrInterfaceKey string    `json:"classOrInterfaceKey"`
	MethodKey           string    `json:"methodKey"`
}

type astMethod struct {
	Key                 string        `json:"key"`
	Name                string        `json:"name"`
	Type                *string       `json:"type"`
	ReturnType          *string       `json:"returnType"`
	Modifiers           []string      `json:"modifiers"`
	OverrideAnnotation  bool          `json:"overrideAnnotation"`
	Parameters          []astVariable `json:"parameters"`
	ClassOrInterfaceKey string        `json:"classOrInterfaceKey"`
}

type astClass struct {
	Key                    string                 `json:"key"`
	Name                   string                 `json:"name"`
	Type                   string                 `json:"type"`
	FilePath               string                 `json:"file_path"`
	Modifiers              []string               `json:"modifiers"`
	Fields                 map[string]astVariable `json:"fields"`
	Methods                map[string]astMethod   `json:"methods"`
	Constructors           map[string]astMethod   `json:"constructors"`
	Extends                []string               `json:"extends_"`
	Implements             []string               `json:"implements_"`
	Auxclass               bool                   `json:"auxclass"`
	Anonymous              bool                   `json:"anonymous"`
	DefinedIn              string                 `json:"definedInClassOrInterfaceTypeKey"`
	InnerDefinedClasses    map[string]astClass    `json:"innerDefinedClasses"`
	InnerDefinedInterfaces map[string]astClass    `json:"innerDefinedInterfaces"`
}

// Loader populates a Project from extracted AST JSON files
type Loader struct {
	ignorePatterns []string
	logger         *zap.Logger
}

// NewLoader creates a loader. Classes whose file path matches one of the
// doublestar ignore patterns are never registered.
func NewLoader(ignorePatterns []string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		ignorePatterns: ignorePatterns,
		logger:         logger,
	}
}

// CollectASTFiles lists all AST files below dir in sorted order
func CollectASTFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, domain.NewFileNotFoundError(dir, err)
	}
	if !info.IsDir() {
		return []string{dir}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), ASTFilePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid AST file pattern for %s", dir), err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir loads every AST file below dir into a new project and validates it
func (l *Loader) LoadDir(ctx context.Context, dir string) (*Project, error) {
	files, err := CollectASTFiles(dir)
	if err != nil {
		return nil, err
	}

	project := NewProject()
	for _, file := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := l.loadFile(file, project); err != nil {
			return nil, err
		}
	}

	l.logger.Debug("loaded AST files",
		zap.String("dir", dir),
		zap.Int("files", len(files)),
		zap.Int("classes", len(project.ClassKeys())))

	if err := project.Validate(); err != nil {
		return nil, err
	}
	return project, nil
}

func (l *Loader) loadFile(path string, project *Project) error {
	f, err := os.Open(path)
	if err != nil {
		return domain.NewFileNotFoundError(path, err)
	}
	defer f.Close()

	if err := l.Load(f, project); err != nil {
		return domain.NewParseError(path, err)
	}
	return nil
}

// Load decodes one class or interface document and registers it
func (l *Loader) Load(r io.Reader, project *Project) error {
	var doc astClass
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode class: %w", err)
	}
	if doc.Key == "" {
		return fmt.Errorf("class without key")
	}
	l.register(&doc, project)
	return nil
}

func (l *Loader) register(doc *astClass, project *Project) {
	if l.isIgnored(doc.FilePath) {
		l.logger.Debug("class ignored by pattern", zap.String("class", doc.Key), zap.String("file", doc.FilePath))
		return
	}

	if _, exists := project.Class(doc.Key); exists {
		l.logger.Warn("duplicate class key, keeping the last definition", zap.String("class", doc.Key))
	}
	project.AddClass(convertClass(doc))

	for _, name := range sortedKeys(doc.InnerDefinedClasses) {
		inner := doc.InnerDefinedClasses[name]
		l.register(&inner, project)
	}
	for _, name := range sortedKeys(doc.InnerDefinedInterfaces) {
		inner := doc.InnerDefinedInterfaces[name]
		l.register(&inner, project)
	}
}

func (l *Loader) isIgnored(filePath string) bool {
	if filePath == "" {
		return false
	}
	slashed := filepath.ToSlash(filePath)
	for _, pattern := range l.ignorePatterns {
		if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
			return true
		}
	}
	return false
}

func convertClass(doc *astClass) *ClassOrInterface {
	kind := KindClass
	if doc.Type == string(KindInterface) {
		kind = KindInterface
	}

	c := NewClassOrInterface(doc.Key, doc.Name, kind, doc.FilePath)
	c.Modifiers = doc.Modifiers
	c.Extends = append([]string(nil), doc.Extends...)
	c.Implements = append([]string(nil), doc.Implements...)
	c.Auxclass = doc.Auxclass
	c.Anonymous = doc.Anonymous
	c.DefinedIn = doc.DefinedIn

	for _, local := range sortedKeys(doc.Fields) {
		v := doc.Fields[local]
		key := v.Key
		if key == "" {
			key = FieldKey(c.Key, local)
		}
		owner := v.ClassOrInterfaceKey
		if owner == "" {
			owner = c.Key
		}
		c.Fields[key] = &Field{
			Variable:            convertVariable(v, key),
			ClassOrInterfaceKey: owner,
		}
	}

	for _, local := range sortedKeys(doc.Methods) {
		m := convertMethod(doc.Methods[local], c.Key, local, false)
		c.Methods[m.Key] = m
	}
	for _, local := range sortedKeys(doc.Constructors) {
		m := convertMethod(doc.Constructors[local], c.Key, local, true)
		c.Constructors[m.Key] = m
	}
	return c
}

func convertMethod(doc astMethod, classKey, local string, constructor bool) *Method {
	key := doc.Key
	if key == "" {
		if constructor {
			key = ConstructorKey(classKey, local)
		} else {
			key = MethodKey(classKey, local)
		}
	}
	owner := doc.ClassOrInterfaceKey
	if owner == "" {
		owner = classKey
	}
	returnType := doc.ReturnType
	if returnType == nil {
		returnType = doc.Type
	}

	m := &Method{
		Key:                 key,
		Name:                doc.Name,
		Modifiers:           doc.Modifiers,
		OverrideAnnotation:  doc.OverrideAnnotation,
		ReturnType:          returnType,
		ClassOrInterfaceKey: owner,
		Constructor:         constructor,
		Parameters:          make([]*Parameter, 0, len(doc.Parameters)),
	}
	for i, v := range doc.Parameters {
		pkey := v.Key
		if pkey == "" {
			pkey = ParameterKey(key, v.Name)
		}
		methodKey := v.MethodKey
		if methodKey == "" {
			methodKey = key
		}
		m.Parameters = append(m.Parameters, &Parameter{
			Variable:  convertVariable(v, pkey),
			MethodKey: methodKey,
			Index:     i,
		})
	}
	return m
}

func convertVariable(v astVariable, key string) Variable {
	return Variable{
		Key:       key,
		Name:      v.Name,
		Type:      v.Type,
		Modifiers: v.Modifiers,
		Ignore:    v.Ignore,
		Position:  v.Position,

		HasTypeVariable: v.HasTypeVariable,
	}
}
