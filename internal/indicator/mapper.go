// Package indicator maps compact indicator codes to the display names strategies are authored with.
package indicator

// Mapper is an immutable code → display name table.
type Mapper struct {
	names map[string]string
}

var defaultNames = map[string]string{
	"extreme_zones": "Extreme Zones",
	"nautilus":      "Nautilus™",
	"market_core":   "Market Core Pro™",
	"market_waves":  "Market Waves Pro™",
}

// NewMapper copies names into a new Mapper.
func NewMapper(names map[string]string) *Mapper {
	m := &Mapper{names: make(map[string]string, len(names))}
	for code, name := range names {
		m.names[code] = name
	}
	return m
}

// DefaultMapper knows the built-in indicator suite.
func DefaultMapper() *Mapper {
	return NewMapper(defaultNames)
}

// With returns a new Mapper with extra entries layered over m's.
func (m *Mapper) With(extra map[string]string) *Mapper {
	out := NewMapper(m.names)
	for code, name := range extra {
		out.names[code] = name
	}
	return out
}

// Canonicalize returns the display name for code, or code itself when unknown.
func (m *Mapper) Canonicalize(code string) string {
	if name, ok := m.names[code]; ok {
		return name
	}
	return code
}

// Same reports whether two indicator fields name the same indicator.
// Comparison is exact on canonical forms.
func (m *Mapper) Same(a, b string) bool {
	return m.Canonicalize(a) == m.Canonicalize(b)
}
