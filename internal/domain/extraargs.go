package domain

// ExtraArgs carries free-form --key=value options the primary flag parser
// did not recognize. Built once at startup, read-only afterwards, so
// concurrent reads from filter invocations are safe.
type ExtraArgs map[string]string

// Get returns the value for key, or "" when the key is absent.
func (a ExtraArgs) Get(key string) string {
	return a[key]
}

// Clone returns an independent copy. A nil receiver yields an empty map,
// never nil, so callers can seed keys into the result.
func (a ExtraArgs) Clone() ExtraArgs {
	out := make(ExtraArgs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
