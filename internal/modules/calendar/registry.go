package calendar

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds the service's calendars keyed by exchange code. The set is
// fixed at construction; only the calendars' built tables change at runtime.
type Registry struct {
	byCode map[string]*Calendar
	codes  []string
}

// NewRegistry builds a registry from calendars. Codes are case-insensitive
// and must be unique.
func NewRegistry(calendars ...*Calendar) (*Registry, error) {
	r := &Registry{byCode: make(map[string]*Calendar, len(calendars))}
	for _, c := range calendars {
		code := strings.ToUpper(c.Code())
		if _, dup := r.byCode[code]; dup {
			return nil, fmt.Errorf("duplicate calendar code %s", code)
		}
		r.byCode[code] = c
		r.codes = append(r.codes, code)
	}
	sort.Strings(r.codes)
	return r, nil
}

// Get looks up a calendar by code, case-insensitively.
func (r *Registry) Get(code string) (*Calendar, bool) {
	c, ok := r.byCode[strings.ToUpper(code)]
	return c, ok
}

// Codes returns the registered exchange codes, sorted.
func (r *Registry) Codes() []string {
	return r.codes
}

// All returns the calendars in code order.
func (r *Registry) All() []*Calendar {
	out := make([]*Calendar, 0, len(r.codes))
	for _, code := range r.codes {
		out = append(out, r.byCode[code])
	}
	return out
}
