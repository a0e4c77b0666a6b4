package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/model"
)

// Strategy detects one kind of clump, one container at a time.
// Detect must only read shared state; results go to the returned slice.
type Strategy interface {
	Type() domain.DataClumpType
	// Label prefixes progress messages
	Label() string
	// Containers lists the keys to visit in deterministic order
	Containers() []string
	Detect(key string) ([]*domain.DataClump, error)
}

// detection is the read-only state every strategy shares during a run
type detection struct {
	project   *model.Project
	options   DetectorOptions
	scorer    *Scorer
	hierarchy *HierarchyReasoner
	fields    *memberFieldCache

	// index is nil when fast detection is disabled
	index *InvertedIndex
}

func newDetection(project *model.Project, options DetectorOptions, names NameMatcher) *detection {
	d := &detection{
		project:   project,
		options:   options,
		scorer:    NewScorer(options, names),
		hierarchy: NewHierarchyReasoner(project),
		fields:    newMemberFieldCache(project),
	}
	if options.FastDetection {
		d.index = BuildInvertedIndex(project, options, d.scorer, d.fields)
	}
	return d
}

func (d *detection) class(key string) (*model.ClassOrInterface, error) {
	c, ok := d.project.Class(key)
	if !ok {
		return nil, domain.NewContractViolationError(fmt.Sprintf("class %q is not registered", key), nil)
	}
	return c, nil
}

func (d *detection) method(key string) (*model.Method, error) {
	m, ok := d.project.Method(key)
	if !ok {
		return nil, domain.NewContractViolationError(fmt.Sprintf("method %q is not registered", key), nil)
	}
	return m, nil
}

func (d *detection) allClasses() []*model.ClassOrInterface {
	keys := d.project.ClassKeys()
	classes := make([]*model.ClassOrInterface, 0, len(keys))
	for _, key := range keys {
		c, _ := d.project.Class(key)
		classes = append(classes, c)
	}
	return classes
}

func (d *detection) allMethods() []*model.Method {
	keys := d.project.MethodKeys()
	methods := make([]*model.Method, 0, len(keys))
	for _, key := range keys {
		m, _ := d.project.Method(key)
		methods = append(methods, m)
	}
	return methods
}

// includeInherited reports whether superclass fields join member field lists
func (d *detection) includeInherited() bool {
	return d.options.AnalyseFieldsInClassesOrInterfacesInheritedFromSuperClassesOrInterfaces
}

// classComplete returns the hierarchy state of c and whether c may take part
// under the given damping modifier
func (d *detection) classComplete(c *model.ClassOrInterface, modifier float64) (complete, eligible bool) {
	complete = d.hierarchy.IsHierarchyComplete(c)
	return complete, complete || modifier > 0
}

// eligibleMethod applies the owner checks shared by both parameter
// strategies. It returns the owner and its completeness, or ok=false.
func (d *detection) eligibleMethod(m *model.Method, minimum int) (owner *model.ClassOrInterface, complete, ok bool, err error) {
	owner, err = d.project.OwnerOf(m)
	if err != nil {
		return nil, false, false, err
	}
	if owner.Auxclass {
		return owner, false, false, nil
	}
	complete, eligible := d.classComplete(owner, d.options.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier)
	if !eligible {
		return owner, complete, false, nil
	}
	if d.hierarchy.IsInherited(m) {
		return owner, complete, false, nil
	}
	if len(activeParameters(m)) < minimum {
		return owner, complete, false, nil
	}
	return owner, complete, true, nil
}

// activeParameters drops parameters flagged as synthetic
func activeParameters(m *model.Method) []*model.Parameter {
	params := make([]*model.Parameter, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		if !p.Ignore {
			params = append(params, p)
		}
	}
	return params
}
