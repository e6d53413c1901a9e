package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	m := DefaultMapper()
	assert.Equal(t, "Extreme Zones", m.Canonicalize("extreme_zones"))
	assert.Equal(t, "Nautilus™", m.Canonicalize("nautilus"))
	assert.Equal(t, "Market Core Pro™", m.Canonicalize("market_core"))
	assert.Equal(t, "Market Waves Pro™", m.Canonicalize("market_waves"))
	assert.Equal(t, "some_other", m.Canonicalize("some_other"))
	assert.Equal(t, "Nautilus™", m.Canonicalize("Nautilus™"))
}

func TestSameIsExact(t *testing.T) {
	m := DefaultMapper()
	assert.True(t, m.Same("nautilus", "Nautilus™"))
	assert.True(t, m.Same("Extreme Zones", "extreme_zones"))
	assert.False(t, m.Same("nautilus", "Nautilus"))
	assert.False(t, m.Same("extreme zones", "Extreme Zones"))
}

func TestWithDoesNotMutateReceiver(t *testing.T) {
	base := DefaultMapper()
	ext := base.With(map[string]string{"oscillator": "Oscillator Matrix", "nautilus": "Nautilus v2"})

	assert.Equal(t, "Oscillator Matrix", ext.Canonicalize("oscillator"))
	assert.Equal(t, "Nautilus v2", ext.Canonicalize("nautilus"))
	assert.Equal(t, "oscillator", base.Canonicalize("oscillator"))
	assert.Equal(t, "Nautilus™", base.Canonicalize("nautilus"))
}
