package card

import (
	"fmt"
	"strings"
)

// MatchKind reports how FindByName arrived at its result. Substring hits are
// a correctness risk (near-miss names can resolve to the wrong card), so call
// sites log them as warnings rather than treating them like exact hits.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchSubstring
)

func (m MatchKind) String() string {
	switch m {
	case MatchNone:
		return "none"
	case MatchExact:
		return "exact"
	case MatchSubstring:
		return "substring"
	}
	return "unknown"
}

// Registry resolves card identifiers and names against the catalog and the
// loaded deck templates. It is constructed once and passed to whatever needs
// lookups; there is no package-level instance.
type Registry struct {
	catalog *Catalog
	handler Template
	pets    []Template
}

// NewRegistry builds a registry from a catalog and its deck templates.
func NewRegistry(cat *Catalog, templates []Template) (*Registry, error) {
	r := &Registry{catalog: cat}
	for _, t := range templates {
		switch t.Kind {
		case AffinityHandler:
			r.handler = t
		case AffinityPet:
			r.pets = append(r.pets, t)
		}
	}
	if r.handler.Name == "" {
		return nil, fmt.Errorf("no handler deck template")
	}
	if len(r.pets) == 0 {
		return nil, fmt.Errorf("no pet deck templates")
	}
	return r, nil
}

// ByID returns the definition for id. This is the primary resolution path:
// everything replicated or persisted refers to cards by ID.
func (r *Registry) ByID(id ID) (*Data, bool) {
	return r.catalog.ByID(id)
}

// FindByName resolves a display name to a definition. Search order: the
// handler deck template, then every pet deck template. Each pass is
// case-insensitive; the first pass wants an exact name, the second settles for
// a substring. A substring hit is reported as MatchSubstring so the caller can
// log it; no match at all returns (nil, MatchNone).
func (r *Registry) FindByName(name string) (*Data, MatchKind) {
	if name == "" {
		return nil, MatchNone
	}
	lower := strings.ToLower(name)

	for _, t := range r.searchOrder() {
		for _, id := range t.Cards {
			d, ok := r.catalog.ByID(id)
			if !ok {
				continue
			}
			if strings.ToLower(d.Name) == lower {
				return d, MatchExact
			}
		}
	}

	for _, t := range r.searchOrder() {
		for _, id := range t.Cards {
			d, ok := r.catalog.ByID(id)
			if !ok {
				continue
			}
			if strings.Contains(strings.ToLower(d.Name), lower) {
				return d, MatchSubstring
			}
		}
	}

	return nil, MatchNone
}

func (r *Registry) searchOrder() []Template {
	order := make([]Template, 0, 1+len(r.pets))
	order = append(order, r.handler)
	order = append(order, r.pets...)
	return order
}

// HandlerTemplate returns the single handler starter template.
func (r *Registry) HandlerTemplate() Template {
	return r.handler
}

// PetTemplates returns the pet starter templates in file order.
func (r *Registry) PetTemplates() []Template {
	return r.pets
}

// PetTemplateAt returns the pet template at index (file order).
func (r *Registry) PetTemplateAt(index int) (Template, bool) {
	if index < 0 || index >= len(r.pets) {
		return Template{}, false
	}
	return r.pets[index], true
}

// PetTemplateNamed returns the pet template with the given name,
// case-insensitively.
func (r *Registry) PetTemplateNamed(name string) (Template, bool) {
	for _, t := range r.pets {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Template{}, false
}

// All returns every catalog definition in catalog order.
func (r *Registry) All() []*Data {
	return r.catalog.All()
}

// Catalog returns the underlying catalog.
func (r *Registry) Catalog() *Catalog {
	return r.catalog
}
