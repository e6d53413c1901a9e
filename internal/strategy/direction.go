package strategy

import (
	"strings"

	"AlertSentinel/internal/model"
)

// ActionFromName derives the direction of a live triggered strategy from its name:
// names mentioning "sell" or "premium" sell, everything else buys.
func ActionFromName(name string) model.Action {
	n := strings.ToLower(name)
	if strings.Contains(n, "sell") || strings.Contains(n, "premium") {
		return model.ActionSell
	}
	return model.ActionBuy
}

// ActionFromThreshold derives the direction used by synchronized mode from the
// sign of the strategy threshold. A zero threshold implies no action.
func ActionFromThreshold(threshold float64) (model.Action, bool) {
	switch {
	case threshold > 0:
		return model.ActionBuy, true
	case threshold < 0:
		return model.ActionSell, true
	default:
		return "", false
	}
}
