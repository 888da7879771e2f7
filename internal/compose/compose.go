// Package compose renders classified item sequences into one spoken
// sentence.
//
// Phrases come from locale-supplied pools. Templates use named
// placeholders: clause templates take {items}, the combiner takes {first}
// and {second}, and the enumeration template takes {first} and {last}.
// End and fallback phrases are used verbatim. The phrase picked within a
// pool is a uniform random draw so repeated answers do not sound robotic;
// everything else is deterministic.
package compose

import (
	"math/rand"
	"strings"
	"time"
)

// Category is the cardinality class of an item sequence. It selects which
// grammar a phrase pool applies.
type Category string

const (
	// CategoryNone is an empty sequence.
	CategoryNone Category = "NONE"
	// CategoryOne is a single item.
	CategoryOne Category = "ONE"
	// CategoryMulti is two or more items, enumerated "a, b and c" style.
	CategoryMulti Category = "MULTI"
)

// CategoryOf returns the cardinality class of a sequence length.
func CategoryOf(n int) Category {
	switch {
	case n == 0:
		return CategoryNone
	case n == 1:
		return CategoryOne
	default:
		return CategoryMulti
	}
}

// ClausePool maps a category to equivalent phrasings. Each phrase takes
// one {items} placeholder.
type ClausePool map[Category][]string

// Pools carries every phrase pool one action needs.
type Pools struct {
	// Primary phrases the goal-achieved clause (added / removed / found).
	Primary ClausePool

	// Secondary phrases the no-op clause (already present / not found /
	// missing).
	Secondary ClausePool

	// Combiner joins a primary and a secondary clause into one sentence.
	// Takes {first} and {second}.
	Combiner []string

	// End is appended to a success-only sentence. Used verbatim.
	End []string

	// Fallback answers an utterance that named no items. Used verbatim.
	Fallback []string
}

// Composer picks and fills phrases from template pools. It holds no state
// across calls beyond the injected random source.
type Composer struct {
	list []string
	rng  *rand.Rand
}

// New creates a composer. list is the locale's enumeration template pool
// ({first} and {last}); rng may be nil to seed from the clock.
func New(list []string, rng *rand.Rand) *Composer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Composer{list: list, rng: rng}
}

// Enumerate folds names into one noun phrase and reports its category.
// Two or more names render through the locale's enumeration template so
// the connector word is never hardcoded.
func (c *Composer) Enumerate(names []string) (Category, string) {
	category := CategoryOf(len(names))
	switch category {
	case CategoryNone:
		return category, ""
	case CategoryOne:
		return category, names[0]
	}
	leading := strings.Join(names[:len(names)-1], ", ")
	last := names[len(names)-1]
	phrase := strings.NewReplacer("{first}", leading, "{last}", last).Replace(c.Pick(c.list))
	return category, phrase
}

// RenderClause wraps the enumerated names in a phrase drawn from the
// pool entry for their category.
func (c *Composer) RenderClause(names []string, pool ClausePool) string {
	category, enumerated := c.Enumerate(names)
	return strings.ReplaceAll(c.Pick(pool[category]), "{items}", enumerated)
}

// Combine builds the full response sentence from both sequences:
//
//   - both empty: one fallback phrase, nothing else;
//   - only primary: primary clause with an end phrase appended to the
//     same sentence;
//   - only secondary: the secondary clause alone;
//   - both: primary and secondary clauses joined by a combiner phrase.
//     The end phrase is dropped in this case.
func (c *Composer) Combine(primary, secondary []string, pools Pools) string {
	if len(primary) == 0 && len(secondary) == 0 {
		return c.Pick(pools.Fallback)
	}

	var head string
	if len(primary) > 0 {
		head = c.RenderClause(primary, pools.Primary)
	}

	if len(secondary) == 0 {
		return head + c.Pick(pools.End)
	}

	tail := c.RenderClause(secondary, pools.Secondary)
	if len(primary) == 0 {
		return tail
	}

	return strings.NewReplacer("{first}", head, "{second}", tail).Replace(c.Pick(pools.Combiner))
}

// Pick draws one phrase uniformly at random from the pool.
func (c *Composer) Pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[c.rng.Intn(len(pool))]
}
