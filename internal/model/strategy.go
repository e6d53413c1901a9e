package model

import "strings"

// Operator combines the requirements of a rule group.
type Operator string

const (
	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
)

// RuleAlert is one required (indicator, trigger) pair inside a rule group.
type RuleAlert struct {
	Indicator string `json:"indicator"`
	Trigger   string `json:"name"`
}

// RuleGroup is a list of requirements joined by Operator.
type RuleGroup struct {
	Operator Operator    `json:"operator"`
	Alerts   []RuleAlert `json:"alerts"`
}

// IsOr reports whether the group matches on any single requirement.
// Anything other than OR is evaluated as AND.
func (g RuleGroup) IsOr() bool {
	return strings.EqualFold(strings.TrimSpace(string(g.Operator)), string(OperatorOr))
}

// Rule is a requirement of the legacy flat rule list.
type Rule struct {
	Indicator string `json:"indicator"`
	Trigger   string `json:"trigger"`
}

// Strategy is a user-authored matching rule.
type Strategy struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Enabled    bool        `json:"enabled"`
	Timeframe  int         `json:"timeframe"`
	Threshold  float64     `json:"threshold"`
	RuleGroups []RuleGroup `json:"rule_groups,omitempty"`
	Rules      []Rule      `json:"rules,omitempty"`
}

// RuleSource is the set of requirements a strategy is evaluated against.
// It is either GroupsSource or FlatSource.
type RuleSource interface {
	isRuleSource()
}

// GroupsSource holds structured rule groups; any one satisfied group completes the strategy.
type GroupsSource struct {
	Groups []RuleGroup
}

// FlatSource holds legacy rules that must all match.
type FlatSource struct {
	Rules []Rule
}

func (GroupsSource) isRuleSource() {}
func (FlatSource) isRuleSource()   {}

// Source picks the rule source: non-empty rule groups win over flat rules.
// It returns nil when the strategy has neither and can never trigger.
func (s Strategy) Source() RuleSource {
	switch {
	case len(s.RuleGroups) > 0:
		return GroupsSource{Groups: s.RuleGroups}
	case len(s.Rules) > 0:
		return FlatSource{Rules: s.Rules}
	default:
		return nil
	}
}
