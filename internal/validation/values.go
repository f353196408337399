package validation

// Values holds the coerced fields of a request after validation. Keys are
// field names; values are string, int, float64 or bool according to the
// declared Type.
type Values map[string]any

// String returns the named string value, or "" when absent.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Int returns the named integer value, or 0 when absent.
func (v Values) Int(name string) int {
	n, _ := v[name].(int)
	return n
}

// Float returns the named number value, or 0 when absent.
func (v Values) Float(name string) float64 {
	f, _ := v[name].(float64)
	return f
}

// Bool returns the named boolean value, or false when absent.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Has reports whether name was present and valid.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Merge returns a new Values containing v overlaid with other.
func (v Values) Merge(other Values) Values {
	out := make(Values, len(v)+len(other))
	for k, val := range v {
		out[k] = val
	}
	for k, val := range other {
		out[k] = val
	}
	return out
}
