package strategy

import "AlertSentinel/internal/model"

// FromSummary extracts the backend's precomputed last action, if any.
func FromSummary(summary *model.ScoreSummary) (model.LastAction, bool) {
	if summary == nil || summary.LastAction == nil {
		return model.LastAction{}, false
	}
	sa := summary.LastAction
	return model.LastAction{
		Action:    sa.Action,
		Ticker:    sa.Ticker,
		Strategy:  sa.StrategyName,
		Timestamp: sa.Timestamp,
	}, true
}

// Resolve picks the last action: the backend summary when present, otherwise the
// first candidate in evaluation order. It does not rank candidates by score.
func Resolve(summary *model.ScoreSummary, candidates []model.LastAction) *model.LastAction {
	if la, ok := FromSummary(summary); ok {
		return &la
	}
	if len(candidates) == 0 {
		return nil
	}
	first := candidates[0]
	return &first
}
