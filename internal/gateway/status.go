package gateway

import (
	"strings"

	"fundflow/internal/core/domain"
)

// StatusTable maps a provider's raw status vocabulary onto the canonical set.
// Lookups are case-insensitive. A value missing from the table is an error, never a default.
type StatusTable struct {
	provider string
	entries  map[string]domain.Status
}

// NewStatusTable builds a table from canonical status to the raw values that mean it.
func NewStatusTable(provider string, byCanonical map[domain.Status][]string) StatusTable {
	t := StatusTable{provider: provider, entries: make(map[string]domain.Status)}
	for canonical, raws := range byCanonical {
		for _, raw := range raws {
			t.entries[strings.ToUpper(raw)] = canonical
		}
	}
	return t
}

// Map returns the canonical status for raw.
func (t StatusTable) Map(raw string) (domain.Status, error) {
	s, ok := t.entries[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", &UnhandledStatusError{Provider: t.provider, Raw: raw}
	}
	return s, nil
}

// Len returns the number of raw values known.
func (t StatusTable) Len() int { return len(t.entries) }
