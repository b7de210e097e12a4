package config

// Secret wraps a sensitive string so it cannot leak through default
// formatting. Reading the value requires an explicit Expose call, keeping
// every access greppable.
type Secret struct {
	value string
}

// NewSecret wraps the provided value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Expose returns the wrapped value.
func (s Secret) Expose() string {
	return s.value
}

// String implements fmt.Stringer with a masked representation.
func (s Secret) String() string {
	return "***"
}

// GoString masks the value under %#v as well.
func (s Secret) GoString() string {
	return "config.Secret(***)"
}

// MarshalJSON ensures the value never serializes into logs or responses.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"***"`), nil
}
