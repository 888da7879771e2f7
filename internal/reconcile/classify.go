package reconcile

import "github.com/greenstead/pantryd/internal/bring"

// predicate reports whether name satisfies a membership test against the
// snapshot.
type predicate func(name string, snapshot []bring.Item) bool

// classify partitions names by pred, preserving input order and duplicates.
// len(matched)+len(unmatched) always equals len(names).
func classify(snapshot []bring.Item, names []string, pred predicate) (matched, unmatched []string) {
	for _, name := range names {
		if pred(name, snapshot) {
			matched = append(matched, name)
		} else {
			unmatched = append(unmatched, name)
		}
	}
	return matched, unmatched
}

// onList reports whether any snapshot item has exactly this name.
func onList(name string, snapshot []bring.Item) bool {
	for _, item := range snapshot {
		if item.Name == name {
			return true
		}
	}
	return false
}

// notOnList drives the add operation: only absent names need a mutation.
func notOnList(name string, snapshot []bring.Item) bool {
	return !onList(name, snapshot)
}
