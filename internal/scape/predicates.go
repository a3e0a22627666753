package scape

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownPredicate = errors.New("unknown survival predicate")

// Predicate reports whether a creature survives the generation boundary.
type Predicate func(*Creature) bool

const DefaultPredicate = "right-half"

var predicates = map[string]Predicate{
	"right-half": func(c *Creature) bool {
		return float64(c.X) > float64(c.Clock.MaxX)/2
	},
	"left-half": func(c *Creature) bool {
		return float64(c.X) < float64(c.Clock.MaxX)/2
	},
	"top-half": func(c *Creature) bool {
		return float64(c.Y) < float64(c.Clock.MaxY)/2
	},
	"bottom-half": func(c *Creature) bool {
		return float64(c.Y) > float64(c.Clock.MaxY)/2
	},
	"border": (*Creature).TouchingBorder,
}

// ResolvePredicate looks name up case-insensitively, treating "_" and " "
// like "-". An empty name selects DefaultPredicate.
func ResolvePredicate(name string) (Predicate, error) {
	key := NormalizePredicateName(name)
	if key == "" {
		key = DefaultPredicate
	}
	p, ok := predicates[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPredicate, name)
	}
	return p, nil
}

func NormalizePredicateName(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	return strings.Trim(normalized, "-")
}

func ListPredicates() []string {
	names := make([]string, 0, len(predicates))
	for name := range predicates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
