package core

// valueStore maps attribute names to resolved values with provenance.
// Each parse starts from the post-registration snapshot: defaults only.
type valueStore struct {
	values  map[string]any
	sources map[string]ValueSource
}

func newValueStore() *valueStore {
	return &valueStore{
		values:  map[string]any{},
		sources: map[string]ValueSource{},
	}
}

func (s *valueStore) get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// reset restores the defaults-only snapshot for the given options.
// Variadic options seed an empty sequence so they are never absent.
func (s *valueStore) reset(options []*Option) {
	s.values = map[string]any{}
	s.sources = map[string]ValueSource{}

	for _, opt := range options {
		name := opt.AttributeName()

		if opt.variadic {
			s.set(name, []any{}, SourceDefault)
			continue
		}

		if opt.defaultValue != nil {
			s.set(name, opt.defaultValue, SourceDefault)
		}
	}
}

func (s *valueStore) set(name string, value any, source ValueSource) {
	s.values[name] = value
	s.sources[name] = source
}

func (s *valueStore) source(name string) ValueSource {
	return s.sources[name]
}

// snapshot copies the resolved value map for handing to callers.
func (s *valueStore) snapshot() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}

	return out
}
