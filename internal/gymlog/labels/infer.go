package labels

import "sort"

type Lookup interface {
	PrimaryMuscle(name string) (string, bool)
}

// MapLookup is a plain name -> muscle lookup, matched case-insensitively.
type MapLookup map[string]string

func (m MapLookup) PrimaryMuscle(name string) (string, bool) {
	key := nameKey(name)
	for n, muscle := range m {
		if nameKey(n) == key && muscle != "" {
			return muscle, true
		}
	}
	return "", false
}

// Infer returns the deduplicated primary muscle groups of the given exercise
// names, sorted. Names the lookup does not know are skipped.
func Infer(lookup Lookup, names []string) []string {
	seen := make(map[string]bool)
	inferred := make([]string, 0)
	for _, name := range names {
		muscle, ok := lookup.PrimaryMuscle(name)
		if !ok || seen[muscle] {
			continue
		}
		seen[muscle] = true
		inferred = append(inferred, muscle)
	}
	sort.Strings(inferred)
	return inferred
}
