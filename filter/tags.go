package filter

// TagRouter implements per-sink tag admission (spec.md §4.4 Tag routing):
// a sink admits a record based on an "only" allow-list and an "except"
// deny-list, matched as exact tag strings.
type TagRouter struct {
	only   map[string]bool
	except map[string]bool
}

// NewTagRouter builds a TagRouter from the given only/except tag sets.
// Either may be nil or empty.
func NewTagRouter(only, except []string) *TagRouter {
	r := &TagRouter{only: map[string]bool{}, except: map[string]bool{}}
	for _, t := range only {
		r.only[t] = true
	}
	for _, t := range except {
		r.except[t] = true
	}
	return r
}

// Admits reports whether a record with the given tags is admitted.
func (r *TagRouter) Admits(tags []string) bool {
	if len(r.only) == 0 {
		if len(tags) == 0 {
			return true
		}
		for _, t := range tags {
			if r.except[t] {
				return false
			}
		}
		return true
	}

	for _, t := range tags {
		if r.only[t] {
			return true
		}
	}
	return false
}
