package kpi

import "strings"

var defaultRubric = map[Level]string{
	LevelF:  "Did not meet the basic expectations for this KPI.\nWork was missing, late, or had to be redone.",
	LevelUP: "Met part of the expectations for this KPI.\nFrequent follow-up was needed to finish the work.",
	LevelPP: "Met most of the expectations for this KPI.\nSome gaps in quality or timeliness remain.",
	LevelGP: "Fully met the expectations for this KPI.\nWork was complete, correct, and on time.",
	LevelCP: "Exceeded the expectations for this KPI.\nDelivered ahead of schedule with consistently high quality.",
	LevelEP: "Far exceeded the expectations for this KPI.\nImproved how the team works and set the standard for others.",
}

// DefaultRubric returns the built-in rubric text for a level.
func DefaultRubric(level Level) string {
	return defaultRubric[level]
}

// ResolveRubric picks the rubric text for a KPI and level. A level rule for
// the KPI wins over the KPI's own evaluation rules, which win over the
// built-in text.
func ResolveRubric(rules []LevelRule, k KPI, level Level) string {
	for _, rule := range rules {
		if rule.KPIID == k.ID && rule.Level == level && strings.TrimSpace(rule.Description) != "" {
			return rule.Description
		}
	}
	if lines := k.EvaluationRules[level]; len(lines) > 0 {
		return strings.Join(lines, "\n")
	}
	return DefaultRubric(level)
}
