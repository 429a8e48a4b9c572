package runtime

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/botflow/pkg/domain"
)

// VariableStore maps variable identity to an optional bound value.
// Lookups accept either the variable ID or its case-insensitive name.
type VariableStore struct {
	vars []domain.Variable
}

// NewVariableStore creates a store seeded with a copy of the given variables.
func NewVariableStore(vars []domain.Variable) *VariableStore {
	s := &VariableStore{}
	s.Merge(vars)
	return s
}

func (s *VariableStore) find(nameOrID string) int {
	if nameOrID == "" {
		return -1
	}
	for i := range s.vars {
		if s.vars[i].ID == nameOrID {
			return i
		}
	}
	return s.findByName(nameOrID)
}

func (s *VariableStore) findByName(name string) int {
	for i := range s.vars {
		if strings.EqualFold(s.vars[i].Name, name) {
			return i
		}
	}
	return -1
}

// Get returns a copy of the variable identified by ID or name.
func (s *VariableStore) Get(nameOrID string) (domain.Variable, bool) {
	idx := s.find(nameOrID)
	if idx < 0 {
		return domain.Variable{}, false
	}
	return copyVariable(s.vars[idx]), true
}

// Bind sets a variable's value, overwriting any prior value.
func (s *VariableStore) Bind(nameOrID, value string) error {
	idx := s.find(nameOrID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", domain.ErrVariableNotFound, nameOrID)
	}
	v := value
	s.vars[idx].Value = &v
	return nil
}

// InjectPredefined binds externally supplied values by case-insensitive name.
// Unknown keys, empty values and variables that are already bound are skipped.
// Keys are visited in sorted order and the bound variables are returned in that order.
func (s *VariableStore) InjectPredefined(external map[string]string) []domain.Variable {
	if len(external) == 0 {
		return nil
	}

	keys := make([]string, 0, len(external))
	for k := range external {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var bound []domain.Variable
	for _, key := range keys {
		value := external[key]
		if value == "" {
			continue
		}
		idx := s.findByName(key)
		if idx < 0 || s.vars[idx].IsBound() {
			continue
		}
		v := value
		s.vars[idx].Value = &v
		bound = append(bound, copyVariable(s.vars[idx]))
	}
	return bound
}

// Merge adds variables whose IDs are not yet known. Existing variables keep their values.
func (s *VariableStore) Merge(vars []domain.Variable) {
	for _, v := range vars {
		exists := false
		for i := range s.vars {
			if s.vars[i].ID == v.ID {
				exists = true
				break
			}
		}
		if !exists {
			s.vars = append(s.vars, copyVariable(v))
		}
	}
}

// Snapshot returns a copy of every variable in declaration order.
func (s *VariableStore) Snapshot() []domain.Variable {
	out := make([]domain.Variable, len(s.vars))
	for i, v := range s.vars {
		out[i] = copyVariable(v)
	}
	return out
}

// Values returns the bound variables keyed by name.
func (s *VariableStore) Values() map[string]string {
	out := make(map[string]string)
	for _, v := range s.vars {
		if v.IsBound() {
			out[v.Name] = *v.Value
		}
	}
	return out
}

func copyVariable(v domain.Variable) domain.Variable {
	if v.Value != nil {
		val := *v.Value
		v.Value = &val
	}
	return v
}
