// Package catalog defines the fixed selection sets offered during the
// guided dialogue. Option labels double as match values, so the catalog
// is configuration data rather than business logic.
package catalog

import "strings"

// Option is a single selectable menu entry.
type Option struct {
	Label string
	Value string
}

// OptionSet is an ordered list of options presented as one menu.
type OptionSet []Option

// FromValues builds an OptionSet where each value labels itself.
func FromValues(values []string) OptionSet {
	set := make(OptionSet, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		set = append(set, Option{Label: v, Value: v})
	}
	return set
}

// Known reports whether value belongs to the set.
func (s OptionSet) Known(value string) bool {
	for _, o := range s {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Values returns the match values in presentation order.
func (s OptionSet) Values() []string {
	out := make([]string, len(s))
	for i, o := range s {
		out[i] = o.Value
	}
	return out
}

// Catalog holds the service category and governorate menus.
type Catalog struct {
	Services     OptionSet
	Governorates OptionSet
}

// Default returns the stock deployment catalog.
func Default() Catalog {
	return Catalog{
		Services:     FromValues([]string{"صحة", "تعليم", "غذاء", "مياه", "حماية"}),
		Governorates: FromValues([]string{"حلب", "إدلب", "درعا", "حمص", "دمشق"}),
	}
}

// New builds a catalog from configured value lists, falling back to the
// defaults for any empty list.
func New(services, governorates []string) Catalog {
	c := Default()
	if set := FromValues(services); len(set) > 0 {
		c.Services = set
	}
	if set := FromValues(governorates); len(set) > 0 {
		c.Governorates = set
	}
	return c
}
