// Package element implements the shared machinery for the three catalog
// kinds: the generic CRUD pipeline, the relationship graph and the wire
// representations. Kinds are described by value, not by subclassing; the
// postgres subpackage contributes one repository per kind.
package element

import (
	"sort"

	"github.com/sciadvances/catalog-api/internal"
)

// Kind identifies one of the three catalog element kinds.
type Kind string

const (
	KindOrganization Kind = "organization"
	KindPerson       Kind = "person"
	KindProduct      Kind = "product"
)

// Kinds lists every catalog kind.
var Kinds = []Kind{KindOrganization, KindPerson, KindProduct}

func (k Kind) Singular() string {
	return string(k)
}

func (k Kind) Plural() string {
	return string(k) + "s"
}

// Counterparts returns the two other kinds a kind relates to. An entity kind
// never relates to itself.
func (k Kind) Counterparts() []Kind {
	var others []Kind
	for _, other := range Kinds {
		if other != k {
			others = append(others, other)
		}
	}
	return others
}

// KindFromPlural resolves a path segment such as "persons" back to its kind,
// returning false for anything unknown.
func KindFromPlural(segment string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Plural() == segment {
			return k, true
		}
	}
	return "", false
}

// Element is the in-memory model shared by organizations, persons and
// products. Related holds the ids of associated elements per counterpart
// kind, always sorted ascending.
type Element struct {
	ID        int64
	Name      string
	BirthDate *internal.Date
	DeathDate *internal.Date
	ImageURL  *string
	WikiURL   *string
	Related   map[Kind][]int64
}

// RelatedIDs returns the sorted ids associated with a counterpart kind.
func (e *Element) RelatedIDs(other Kind) []int64 {
	ids := append([]int64(nil), e.Related[other]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// attrs builds the canonical field map of an element for kind k. Maps
// marshal with sorted keys, so the encoding is deterministic and usable as
// fingerprint input.
func attrs(k Kind, e *Element) map[string]interface{} {
	m := map[string]interface{}{
		"id":        e.ID,
		"name":      e.Name,
		"birthDate": nil,
		"deathDate": nil,
		"imageUrl":  nil,
		"wikiUrl":   nil,
	}
	if e.BirthDate != nil {
		m["birthDate"] = e.BirthDate.String()
	}
	if e.DeathDate != nil {
		m["deathDate"] = e.DeathDate.String()
	}
	if e.ImageURL != nil {
		m["imageUrl"] = *e.ImageURL
	}
	if e.WikiURL != nil {
		m["wikiUrl"] = *e.WikiURL
	}
	for _, other := range k.Counterparts() {
		ids := e.RelatedIDs(other)
		if len(ids) == 0 {
			m[other.Plural()] = nil
		} else {
			m[other.Plural()] = ids
		}
	}
	return m
}

// Wrap builds the single-resource body: {"<singular>": {...}}.
func Wrap(k Kind, e *Element) map[string]interface{} {
	return map[string]interface{}{k.Singular(): attrs(k, e)}
}

// Collection builds the list body: {"<plural>": [wrapped elements]}.
func Collection(k Kind, elements []*Element) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(elements))
	for _, e := range elements {
		items = append(items, Wrap(k, e))
	}
	return map[string]interface{}{k.Plural(): items}
}

// RelatedCollection builds the relationship list body:
// {"<counterpart plural>": [wrapped counterparts]}.
func RelatedCollection(other Kind, elements []*Element) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(elements))
	for _, e := range elements {
		items = append(items, Wrap(other, e))
	}
	return map[string]interface{}{other.Plural(): items}
}
