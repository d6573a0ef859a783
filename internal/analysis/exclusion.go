package analysis

import "sort"

// ExclusionSet tracks the replicate lane indices marked inactive per group.
// Exclusion is positional within a group's lane numbering: it hides a lane
// from aggregation regardless of which record supplied the value. Record
// data is never touched.
type ExclusionSet struct {
	groups map[string]map[int]bool
}

// NewExclusionSet creates an empty exclusion set.
func NewExclusionSet() *ExclusionSet {
	return &ExclusionSet{groups: make(map[string]map[int]bool)}
}

// Toggle flips the exclusion state of a lane index within a group.
func (e *ExclusionSet) Toggle(group string, lane int) {
	set := e.groups[group]
	if set == nil {
		set = make(map[int]bool)
		e.groups[group] = set
	}
	if set[lane] {
		delete(set, lane)
	} else {
		set[lane] = true
	}
}

// Excluded reports whether a lane index is excluded for a group.
func (e *ExclusionSet) Excluded(group string, lane int) bool {
	return e.groups[group][lane]
}

// Lanes returns the sorted excluded lane indices of a group.
func (e *ExclusionSet) Lanes(group string) []int {
	set := e.groups[group]
	if len(set) == 0 {
		return nil
	}
	lanes := make([]int, 0, len(set))
	for lane := range set {
		lanes = append(lanes, lane)
	}
	sort.Ints(lanes)
	return lanes
}

// Clear removes every exclusion.
func (e *ExclusionSet) Clear() {
	e.groups = make(map[string]map[int]bool)
}
