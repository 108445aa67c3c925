package kpi

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestDefaultRubricText(t *testing.T) {
	var b strings.Builder
	for i, level := range Levels() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[" + string(level) + "]\n")
		b.WriteString(DefaultRubric(level))
		b.WriteString("\n")
	}
	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "default_rubric", []byte(b.String()))
}

func TestResolveRubricPriority(t *testing.T) {
	k := KPI{
		ID: "k1",
		EvaluationRules: map[Level][]string{
			LevelGP: {"first", "second"},
		},
	}
	rules := []LevelRule{
		{ID: "lr1", KPIID: "k1", Level: LevelCP, Description: "override for CP"},
		{ID: "lr2", KPIID: "k1", Level: LevelGP, Description: "   "},
		{ID: "lr3", KPIID: "k2", Level: LevelGP, Description: "other kpi"},
	}

	if got := ResolveRubric(rules, k, LevelCP); got != "override for CP" {
		t.Fatalf("expected level rule to win, got %q", got)
	}
	if got := ResolveRubric(rules, k, LevelGP); got != "first\nsecond" {
		t.Fatalf("expected evaluation rules when level rule is blank, got %q", got)
	}
	if got := ResolveRubric(rules, k, LevelF); got != DefaultRubric(LevelF) {
		t.Fatalf("expected default rubric, got %q", got)
	}
}

func TestSeedLevelRulesOverrideKPIWithoutEvaluationRules(t *testing.T) {
	ds := Seed()
	var k3 KPI
	for _, k := range ds.KPIs {
		if k.ID == "k3" {
			k3 = k
		}
	}
	if k3.ID == "" {
		t.Fatalf("expected seed kpi k3")
	}
	got := ResolveRubric(ds.LevelRules, k3, LevelGP)
	if !strings.HasPrefix(got, "100% of unit risks collected") {
		t.Fatalf("expected k3 GP level rule, got %q", got)
	}
}
