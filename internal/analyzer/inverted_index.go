package analyzer

import (
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/ludo-technologies/clumpscn/internal/model"
)

// InvertedIndex maps exact variable signatures to the containers declaring
// them. Posting lists are roaring bitmaps over dense ids assigned in sorted
// key order, so iterating a bitmap yields containers in key order.
//
// Signatures are stored as xxhash digests. A collision can only add a
// candidate, which the scorer then rejects, so pruning stays lossless.
type InvertedIndex struct {
	project *model.Project
	scorer  *Scorer
	typed   bool

	classKeys  []string
	classIDs   map[string]uint32
	methodKeys []string
	methodIDs  map[string]uint32

	fieldField     map[uint64]*roaring.Bitmap
	parameterParam map[uint64]*roaring.Bitmap
	parameterField map[uint64]*roaring.Bitmap
}

// BuildInvertedIndex indexes every class and method of the project once
func BuildInvertedIndex(project *model.Project, options DetectorOptions, scorer *Scorer, fields *memberFieldCache) *InvertedIndex {
	idx := &InvertedIndex{
		project:        project,
		scorer:         scorer,
		typed:          options.SimilarityModifierOfVariablesWithUnknownType != 1,
		classKeys:      project.ClassKeys(),
		methodKeys:     project.MethodKeys(),
		classIDs:       make(map[string]uint32),
		methodIDs:      make(map[string]uint32),
		fieldField:     make(map[uint64]*roaring.Bitmap),
		parameterParam: make(map[uint64]*roaring.Bitmap),
		parameterField: make(map[uint64]*roaring.Bitmap),
	}

	includeInherited := options.AnalyseFieldsInClassesOrInterfacesInheritedFromSuperClassesOrInterfaces
	for i, key := range idx.classKeys {
		id := uint32(i)
		idx.classIDs[key] = id
		c, _ := project.Class(key)
		for _, f := range fields.Fields(c, includeInherited) {
			add(idx.fieldField, idx.fieldSignature(&f.Variable), id)
			add(idx.parameterField, idx.variableSignature(&f.Variable), id)
		}
	}

	for i, key := range idx.methodKeys {
		id := uint32(i)
		idx.methodIDs[key] = id
		m, _ := project.Method(key)
		for _, p := range activeParameters(m) {
			add(idx.parameterParam, idx.variableSignature(&p.Variable), id)
		}
	}

	return idx
}

func add(postings map[uint64]*roaring.Bitmap, signature uint64, id uint32) {
	bm, ok := postings[signature]
	if !ok {
		bm = roaring.New()
		postings[signature] = bm
	}
	bm.Add(id)
}

// variableSignature hashes "type name", or just the name when every type
// mismatch is fully credited and types cannot separate candidates.
func (idx *InvertedIndex) variableSignature(v *model.Variable) uint64 {
	return xxhash.Sum64String(idx.variableKey(v))
}

func (idx *InvertedIndex) variableKey(v *model.Variable) string {
	if idx.typed {
		return idx.scorer.TypeKey(v) + " " + v.Name
	}
	return v.Name
}

// fieldSignature prefixes the variable key with the modifier set,
// sorted and de-duplicated to agree with SameModifiers
func (idx *InvertedIndex) fieldSignature(v *model.Variable) uint64 {
	key := idx.variableKey(v)
	if len(v.Modifiers) > 0 {
		modifiers := append([]string(nil), v.Modifiers...)
		slices.Sort(modifiers)
		modifiers = slices.Compact(modifiers)
		key = strings.Join(modifiers, " ") + " " + key
	}
	return xxhash.Sum64String(key)
}

func union(postings map[uint64]*roaring.Bitmap, signatures []uint64) *roaring.Bitmap {
	var lists []*roaring.Bitmap
	for _, s := range signatures {
		if bm, ok := postings[s]; ok {
			lists = append(lists, bm)
		}
	}
	if len(lists) == 0 {
		return roaring.New()
	}
	return roaring.FastOr(lists...)
}

// CandidateClassesForFields returns the classes sharing at least one
// field signature with fields, excluding c itself
func (idx *InvertedIndex) CandidateClassesForFields(c *model.ClassOrInterface, fields []*model.Field) []*model.ClassOrInterface {
	signatures := make([]uint64, 0, len(fields))
	for _, f := range fields {
		signatures = append(signatures, idx.fieldSignature(&f.Variable))
	}
	hits := union(idx.fieldField, signatures)
	if id, ok := idx.classIDs[c.Key]; ok {
		hits.Remove(id)
	}
	return idx.classes(hits)
}

// CandidateMethodsForParameters returns the methods sharing at least one
// parameter signature with m, excluding m itself
func (idx *InvertedIndex) CandidateMethodsForParameters(m *model.Method) []*model.Method {
	hits := union(idx.parameterParam, idx.parameterSignatures(m))
	if id, ok := idx.methodIDs[m.Key]; ok {
		hits.Remove(id)
	}

	methods := make([]*model.Method, 0, hits.GetCardinality())
	it := hits.Iterator()
	for it.HasNext() {
		other, _ := idx.project.Method(idx.methodKeys[it.Next()])
		methods = append(methods, other)
	}
	return methods
}

// CandidateClassesForParameters returns the classes declaring a field whose
// signature equals one of m's parameters. The owner of m is not excluded.
func (idx *InvertedIndex) CandidateClassesForParameters(m *model.Method) []*model.ClassOrInterface {
	return idx.classes(union(idx.parameterField, idx.parameterSignatures(m)))
}

func (idx *InvertedIndex) parameterSignatures(m *model.Method) []uint64 {
	params := activeParameters(m)
	signatures := make([]uint64, 0, len(params))
	for _, p := range params {
		signatures = append(signatures, idx.variableSignature(&p.Variable))
	}
	return signatures
}

func (idx *InvertedIndex) classes(hits *roaring.Bitmap) []*model.ClassOrInterface {
	classes := make([]*model.ClassOrInterface, 0, hits.GetCardinality())
	it := hits.Iterator()
	for it.HasNext() {
		c, _ := idx.project.Class(idx.classKeys[it.Next()])
		classes = append(classes, c)
	}
	return classes
}

// Size returns the number of distinct signatures per map
func (idx *InvertedIndex) Size() (fieldField, parameterParameter, parameterField int) {
	return len(idx.fieldField), len(idx.parameterParam), len(idx.parameterField)
}
