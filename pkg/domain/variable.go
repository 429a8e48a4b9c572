package domain

// Variable is a named slot a flow may read and write.
// A nil Value means the variable is unbound.
type Variable struct {
	ID    string  `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Value *string `json:"value,omitempty" yaml:"value,omitempty"`
}

// IsBound reports whether the variable carries a value.
func (v Variable) IsBound() bool {
	return v.Value != nil
}

// StringValue returns the bound value or an empty string.
func (v Variable) StringValue() string {
	if v.Value == nil {
		return ""
	}
	return *v.Value
}
