package expr

import "github.com/gogpu/vectortile/value"

// FastFilter is the subset of filter expressions the feature index
// (package featureindex) can evaluate directly against its precomputed
// bitsets instead of walking the full expression tree per feature:
// conjunctions of (field == literal), (field has), (field !has), and
// ($type == literal) tests. See spec.md §4.3 "fast-path tagging" and
// §4.5's indexable-filter requirement.
type FastFilter struct {
	// Equals holds one or more required (field, value) equality tests,
	// ANDed together.
	Equals []FastEquals
	// Has/NotHas hold field-presence tests, ANDed together.
	Has    []string
	NotHas []string
	// GeomType is non-empty if the filter requires a specific $type.
	GeomType string
}

// FastEquals is one (field == literal) test.
type FastEquals struct {
	Field string
	Value value.Value
}

// extractFastFilter walks a compiled tree looking for a top-level `all(...)`
// (or a single predicate) built entirely from get/has/!has/comparison nodes
// against literals. Returns nil if the tree isn't expressible that way —
// the caller falls back to full tree evaluation.
func extractFastFilter(root Node) *FastFilter {
	f := &FastFilter{}
	if collectFastPredicates(root, f) {
		return f
	}
	return nil
}

func collectFastPredicates(n Node, f *FastFilter) bool {
	switch v := n.(type) {
	case logicalNode:
		if v.op != "all" {
			return false
		}
		for _, a := range v.args {
			if !collectFastPredicates(a, f) {
				return false
			}
		}
		return true
	case comparisonNode:
		if v.op != "==" || v.collator != nil {
			return false
		}
		get, ok := v.lhs.(getNode)
		if ok {
			field, ok := literalString(get.key)
			if !ok {
				return false
			}
			lit, ok := v.rhs.(literalNode)
			if !ok {
				return false
			}
			f.Equals = append(f.Equals, FastEquals{Field: field, Value: lit.v})
			return true
		}
		if _, ok := v.lhs.(geomTypeNode); ok {
			lit, ok := v.rhs.(literalNode)
			if !ok {
				return false
			}
			s, ok := lit.v.GetString()
			if !ok {
				return false
			}
			f.GeomType = s
			return true
		}
		return false
	case hasNode:
		field, ok := literalString(v.key)
		if !ok {
			return false
		}
		if v.negate {
			f.NotHas = append(f.NotHas, field)
		} else {
			f.Has = append(f.Has, field)
		}
		return true
	default:
		return false
	}
}

func literalString(n Node) (string, bool) {
	lit, ok := n.(literalNode)
	if !ok {
		return "", false
	}
	return lit.v.GetString()
}
