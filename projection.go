package docquery

// Projection is a typed view produced by Map. It keeps the feedback
// contract of a Selector but leaves the string domain, so it cannot chain
// into further CSS or XPath queries.
type Projection[T any] struct {
	values []T
}

// Map applies fn to every extracted string of the Selector.
func Map[T any](s *Selector, fn func(string) T) *Projection[T] {
	values := make([]T, 0, s.Count())
	for _, str := range s.GetAll() {
		values = append(values, fn(str))
	}
	return &Projection[T]{values: values}
}

// Ok reports whether the projection holds any values.
func (p *Projection[T]) Ok() bool { return len(p.values) > 0 }

// Count returns the number of projected values.
func (p *Projection[T]) Count() int { return len(p.values) }

// Get returns the first projected value, or the zero value.
func (p *Projection[T]) Get() T {
	if len(p.values) == 0 {
		var zero T
		return zero
	}
	return p.values[0]
}

// GetOr returns the first projected value, or def.
func (p *Projection[T]) GetOr(def T) T {
	if len(p.values) == 0 {
		return def
	}
	return p.values[0]
}

// GetAll returns every projected value.
func (p *Projection[T]) GetAll() []T {
	out := make([]T, len(p.values))
	copy(out, p.values)
	return out
}
