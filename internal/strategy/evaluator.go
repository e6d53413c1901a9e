package strategy

import (
	"AlertSentinel/internal/indicator"
	"AlertSentinel/internal/model"
)

// requirement is one (indicator, trigger) pair a strategy needs to see.
type requirement struct {
	indicator string
	trigger   string
}

func groupRequirements(g model.RuleGroup) []requirement {
	reqs := make([]requirement, 0, len(g.Alerts))
	for _, a := range g.Alerts {
		reqs = append(reqs, requirement{indicator: a.Indicator, trigger: a.Trigger})
	}
	return reqs
}

func ruleRequirements(rules []model.Rule) []requirement {
	reqs := make([]requirement, 0, len(rules))
	for _, r := range rules {
		reqs = append(reqs, requirement{indicator: r.Indicator, trigger: r.Trigger})
	}
	return reqs
}

// Evaluator decides whether a strategy completes against one ticker's alerts.
type Evaluator struct {
	indicators *indicator.Mapper
}

// NewEvaluator creates an Evaluator that aligns indicator names through m.
func NewEvaluator(m *indicator.Mapper) *Evaluator {
	return &Evaluator{indicators: m}
}

// Match returns the alerts that satisfied s, or false when s does not trigger.
// Disabled strategies and strategies without rules never trigger.
func (e *Evaluator) Match(s model.Strategy, alerts []model.Alert) ([]model.Alert, bool) {
	if !s.Enabled {
		return nil, false
	}
	switch src := s.Source().(type) {
	case model.GroupsSource:
		return e.matchGroups(src.Groups, alerts)
	case model.FlatSource:
		return e.matchAll(ruleRequirements(src.Rules), alerts)
	default:
		return nil, false
	}
}

// matchGroups stops at the first satisfied group; later groups are never consulted.
func (e *Evaluator) matchGroups(groups []model.RuleGroup, alerts []model.Alert) ([]model.Alert, bool) {
	for _, g := range groups {
		reqs := groupRequirements(g)
		var (
			found []model.Alert
			ok    bool
		)
		if g.IsOr() {
			found, ok = e.matchAny(reqs, alerts)
		} else {
			found, ok = e.matchAll(reqs, alerts)
		}
		if ok {
			return found, true
		}
	}
	return nil, false
}

// matchAll needs every requirement and gives up at the first missing one.
// An empty requirement list is never satisfied.
func (e *Evaluator) matchAll(reqs []requirement, alerts []model.Alert) ([]model.Alert, bool) {
	if len(reqs) == 0 {
		return nil, false
	}
	found := make([]model.Alert, 0, len(reqs))
	for _, r := range reqs {
		a, ok := e.find(r, alerts)
		if !ok {
			return nil, false
		}
		found = append(found, a)
	}
	return found, true
}

// matchAny returns only the first requirement that matches.
func (e *Evaluator) matchAny(reqs []requirement, alerts []model.Alert) ([]model.Alert, bool) {
	for _, r := range reqs {
		if a, ok := e.find(r, alerts); ok {
			return []model.Alert{a}, true
		}
	}
	return nil, false
}

func (e *Evaluator) find(r requirement, alerts []model.Alert) (model.Alert, bool) {
	for _, a := range alerts {
		if a.Trigger == r.trigger && e.indicators.Same(a.Indicator, r.indicator) {
			return a, true
		}
	}
	return model.Alert{}, false
}

// progress reports what a requirement list has matched and what it still lacks,
// without short-circuiting. OR lists stop at their first match.
func (e *Evaluator) progress(reqs []requirement, alerts []model.Alert, or bool) (found []model.Alert, missing []string) {
	for _, r := range reqs {
		a, ok := e.find(r, alerts)
		if !ok {
			missing = append(missing, r.trigger)
			continue
		}
		if or {
			return []model.Alert{a}, nil
		}
		found = append(found, a)
	}
	return found, missing
}
