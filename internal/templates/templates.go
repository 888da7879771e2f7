// Package templates loads the per-locale phrase pools the composer draws
// from.
//
// Locales ship embedded in the binary as YAML files and are resolved once
// at startup from the configured locale key; the returned Set is read-only.
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/greenstead/pantryd/internal/compose"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// ErrUnknownLocale is returned when no embedded locale matches the key.
var ErrUnknownLocale = errors.New("unknown locale")

// Set holds every phrase pool for one locale.
type Set struct {
	// Locale is the key this set was loaded for.
	Locale string

	// Add, Remove and Check pool the clause templates per action.
	Add    compose.Pools
	Remove compose.Pools
	Check  compose.Pools

	// Read pools the full-list narration, including the empty-list phrase
	// under the NONE category.
	Read compose.ClausePool

	// List is the enumeration template pool ({first} and {last}).
	List []string

	// Error is spoken when the shopping list cannot be reached.
	Error []string
}

// localeDoc is the YAML shape of one locale file.
type localeDoc struct {
	Locale string              `yaml:"locale"`
	List   []string            `yaml:"list"`
	Error  []string            `yaml:"error"`
	Add    actionDoc           `yaml:"add"`
	Remove actionDoc           `yaml:"remove"`
	Check  actionDoc           `yaml:"check"`
	Read   map[string][]string `yaml:"read"`
}

type actionDoc struct {
	Primary   map[string][]string `yaml:"primary"`
	Secondary map[string][]string `yaml:"secondary"`
	Combiner  []string            `yaml:"combiner"`
	End       []string            `yaml:"end"`
	Fallback  []string            `yaml:"fallback"`
}

// Load resolves the embedded locale file for the key and validates that
// every pool the composer may draw from is non-empty.
func Load(locale string) (*Set, error) {
	data, err := localeFS.ReadFile("locales/" + locale + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownLocale, locale, strings.Join(Locales(), ", "))
	}

	var doc localeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse locale %s: %w", locale, err)
	}

	set := &Set{
		Locale: locale,
		Add:    doc.Add.pools(),
		Remove: doc.Remove.pools(),
		Check:  doc.Check.pools(),
		Read:   clausePool(doc.Read),
		List:   doc.List,
		Error:  doc.Error,
	}

	if err := set.validate(); err != nil {
		return nil, fmt.Errorf("locale %s: %w", locale, err)
	}

	return set, nil
}

// Locales returns the embedded locale keys, sorted.
func Locales() []string {
	entries, err := fs.Glob(localeFS, "locales/*.yaml")
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimPrefix(entry, "locales/")
		keys = append(keys, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(keys)
	return keys
}

func (d actionDoc) pools() compose.Pools {
	return compose.Pools{
		Primary:   clausePool(d.Primary),
		Secondary: clausePool(d.Secondary),
		Combiner:  d.Combiner,
		End:       d.End,
		Fallback:  d.Fallback,
	}
}

func clausePool(m map[string][]string) compose.ClausePool {
	pool := make(compose.ClausePool, len(m))
	for key, phrases := range m {
		pool[compose.Category(key)] = phrases
	}
	return pool
}

func (s *Set) validate() error {
	if len(s.List) == 0 {
		return fmt.Errorf("list pool is empty")
	}
	if len(s.Error) == 0 {
		return fmt.Errorf("error pool is empty")
	}

	for action, pools := range map[string]compose.Pools{
		"add":    s.Add,
		"remove": s.Remove,
		"check":  s.Check,
	} {
		for _, category := range []compose.Category{compose.CategoryOne, compose.CategoryMulti} {
			if len(pools.Primary[category]) == 0 {
				return fmt.Errorf("%s.primary.%s pool is empty", action, category)
			}
			if len(pools.Secondary[category]) == 0 {
				return fmt.Errorf("%s.secondary.%s pool is empty", action, category)
			}
		}
		if len(pools.Combiner) == 0 {
			return fmt.Errorf("%s.combiner pool is empty", action)
		}
		if len(pools.End) == 0 {
			return fmt.Errorf("%s.end pool is empty", action)
		}
		if len(pools.Fallback) == 0 {
			return fmt.Errorf("%s.fallback pool is empty", action)
		}
	}

	for _, category := range []compose.Category{compose.CategoryNone, compose.CategoryOne, compose.CategoryMulti} {
		if len(s.Read[category]) == 0 {
			return fmt.Errorf("read.%s pool is empty", category)
		}
	}

	return nil
}
