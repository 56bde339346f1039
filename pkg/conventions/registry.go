package conventions

// Registry holds marker patterns grouped by category. The zero value is an
// empty registry ready for use.
type Registry struct {
	order      []string
	byID       map[string]Pattern
	byCategory map[Category][]string
}

// NewRegistry returns a Registry loaded with DefaultPatterns.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, p := range DefaultPatterns() {
		r.Register(p)
	}
	return r
}

// Register adds p. A pattern whose ID is already registered replaces the
// earlier one and keeps its position; registration order is match order.
func (r *Registry) Register(p Pattern) {
	if r.byID == nil {
		r.byID = make(map[string]Pattern)
		r.byCategory = make(map[Category][]string)
	}

	if old, ok := r.byID[p.ID]; ok {
		r.byID[p.ID] = p
		if old.Category != p.Category {
			r.byCategory[old.Category] = without(r.byCategory[old.Category], p.ID)
			r.byCategory[p.Category] = append(r.byCategory[p.Category], p.ID)
		}
		return
	}

	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	r.byCategory[p.Category] = append(r.byCategory[p.Category], p.ID)
}

// Patterns returns every pattern in registration order.
func (r *Registry) Patterns() []Pattern {
	return r.lookup(r.order)
}

// Find returns the patterns accepted by predicate
func (r *Registry) Find(predicate func(Pattern) bool) []Pattern {
	var matches []Pattern
	for _, id := range r.order {
		if p := r.byID[id]; predicate(p) {
			matches = append(matches, p)
		}
	}
	return matches
}

// ByCategory returns the patterns of one category in registration order.
func (r *Registry) ByCategory(c Category) []Pattern {
	return r.lookup(r.byCategory[c])
}

func (r *Registry) lookup(ids []string) []Pattern {
	out := make([]Pattern, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id])
	}
	return out
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
