package wakfulog

// compiledFilter is a precomputed include/exclude set over string-typed
// kinds. Exclude takes precedence over include. A nil filter allows
// everything.
type compiledFilter struct {
	include map[string]struct{}
	exclude map[string]struct{}
}

func newCompiledFilter(include, exclude []string) *compiledFilter {
	f := &compiledFilter{}
	if len(include) > 0 {
		f.include = make(map[string]struct{}, len(include))
		for _, k := range include {
			f.include[k] = struct{}{}
		}
	}
	if len(exclude) > 0 {
		f.exclude = make(map[string]struct{}, len(exclude))
		for _, k := range exclude {
			f.exclude[k] = struct{}{}
		}
	}
	return f
}

// Allows reports whether the kind passes the filter.
func (f *compiledFilter) Allows(kind string) bool {
	if f == nil {
		return true
	}
	if _, excluded := f.exclude[kind]; excluded {
		return false
	}
	if f.include == nil {
		return true
	}
	_, included := f.include[kind]
	return included
}
