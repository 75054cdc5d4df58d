package kind

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set is an immutable, duplicate-free set of kinds, ordered by code.
// The zero value is the empty set and matches nothing.
type Set struct {
	bits uint32
}

// NewSet builds a Set from the given kinds. Duplicates collapse and
// out-of-range values are ignored.
func NewSet(kinds ...Kind) Set {
	var s Set
	for _, k := range kinds {
		if int(k) < len(names) {
			s.bits |= 1 << k
		}
	}
	return s
}

// ParseSet parses a comma-separated list of kind names such as
// "headset, headphones". Empty tokens are skipped, so an empty string
// yields the empty set. The first unknown name aborts parsing.
func ParseSet(input string) (Set, error) {
	var s Set
	for _, term := range strings.Split(input, ",") {
		if strings.TrimSpace(term) == "" {
			continue
		}
		k, err := Parse(term)
		if err != nil {
			return Set{}, err
		}
		s.bits |= 1 << k
	}
	return s, nil
}

// Contains reports whether k is in the set.
func (s Set) Contains(k Kind) bool {
	if int(k) >= len(names) {
		return false
	}
	return s.bits&(1<<k) != 0
}

// Len returns the number of kinds in the set.
func (s Set) Len() int {
	n := 0
	for b := s.bits; b != 0; b &= b - 1 {
		n++
	}
	return n
}

// Kinds returns the members in code order.
func (s Set) Kinds() []Kind {
	out := make([]Kind, 0, s.Len())
	for i := range names {
		if s.bits&(1<<i) != 0 {
			out = append(out, Kind(i))
		}
	}
	return out
}

// String joins the canonical names with ", ".
func (s Set) String() string {
	kinds := s.Kinds()
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// Set implements flag.Value.
func (s *Set) Set(value string) error {
	parsed, err := ParseSet(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML accepts either a comma-separated scalar or a sequence of
// kind names.
func (s *Set) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return s.Set(value.Value)
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		return s.Set(strings.Join(list, ","))
	default:
		return fmt.Errorf("unsupported kinds format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Set.
func (s Set) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}
