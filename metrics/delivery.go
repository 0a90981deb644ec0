package metrics

import (
	"sort"
)

// Delivery maps canonical metric names to whether they should be delivered in the current
// environment. It is typically decoded from configuration, so values are untyped; only the exact
// boolean true enables delivery. A Delivery is never mutated by this package.
type Delivery map[string]interface{}

// Enabled reports whether the named metric should be delivered. A nil table enables nothing.
func (d Delivery) Enabled(name string) bool {
	enabled, ok := d[name].(bool)

	return ok && enabled
}

// Invalid lists, in sorted order, the names whose configured value is not a boolean. Such entries
// never deliver and usually indicate a configuration typo.
func (d Delivery) Invalid() []string {
	var names []string

	for name, value := range d {
		if _, ok := value.(bool); !ok {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}
