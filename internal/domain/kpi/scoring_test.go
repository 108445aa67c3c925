package kpi

import "testing"

func TestWeightedScoreForEveryKPILevel(t *testing.T) {
	cases := []struct {
		level  Level
		weight float64
		want   float64
	}{
		{LevelF, 50, 0},
		{LevelUP, 50, 0.5},
		{LevelPP, 40, 0.8},
		{LevelGP, 40, 1.2},
		{LevelCP, 50, 2.0},
		{LevelEP, 10, 0.5},
		{LevelEP, 33, 1.65},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.level), func(t *testing.T) {
			score, ok := KPIScore(tc.level)
			if !ok {
				t.Fatalf("expected score for %s", tc.level)
			}
			if got := WeightedScore(score, tc.weight); got != tc.want {
				t.Fatalf("expected %.2f, got %.2f", tc.want, got)
			}
		})
	}
}

func TestWeightedScoreForEveryCompetencyLevel(t *testing.T) {
	cases := []struct {
		level  Level
		weight float64
		want   float64
	}{
		{LevelF, 20, 0},
		{LevelUP, 20, 12},
		{LevelPP, 20, 17},
		{LevelGP, 20, 20},
		{LevelCP, 20, 23},
		{LevelEP, 20, 26},
		{LevelCP, 15, 17.25},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.level), func(t *testing.T) {
			score, ok := CompetencyScore(tc.level)
			if !ok {
				t.Fatalf("expected score for %s", tc.level)
			}
			if got := WeightedScore(score, tc.weight); got != tc.want {
				t.Fatalf("expected %.2f, got %.2f", tc.want, got)
			}
		})
	}
}

func TestUnknownLevelHasNoScore(t *testing.T) {
	if _, ok := KPIScore("XX"); ok {
		t.Fatalf("expected unknown level to have no KPI score")
	}
	if _, ok := CompetencyScore(""); ok {
		t.Fatalf("expected empty level to have no competency score")
	}
}

func TestLevelAndStatusForAverage(t *testing.T) {
	cases := []struct {
		avg    float64
		level  Level
		status string
	}{
		{0, LevelF, "Needs Support"},
		{0.5, LevelUP, "Needs Support"},
		{1.5, LevelPP, "Developing"},
		{2.5, LevelGP, "On Track"},
		{3.5, LevelCP, "High Performer"},
		{4.49, LevelCP, "High Performer"},
		{4.5, LevelEP, "Elite Performer"},
	}
	for _, tc := range cases {
		if got := LevelForAverage(tc.avg); got != tc.level {
			t.Fatalf("avg %.2f: expected level %s, got %s", tc.avg, tc.level, got)
		}
		if got := StatusForAverage(tc.avg); got != tc.status {
			t.Fatalf("avg %.2f: expected status %q, got %q", tc.avg, tc.status, got)
		}
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" cp ")
	if err != nil || level != LevelCP {
		t.Fatalf("expected CP, got %q (%v)", level, err)
	}
	if _, err := ParseLevel("A+"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
