package kpi

import "math"

// KPIScore maps a level to its KPI score (F=0 .. EP=5).
func KPIScore(level Level) (float64, bool) {
	rank := level.Rank()
	if rank < 0 {
		return 0, false
	}
	return float64(rank), true
}

// CompetencyScore maps a level to its competency score (F=0 .. EP=130).
func CompetencyScore(level Level) (float64, bool) {
	switch level {
	case LevelF:
		return 0, true
	case LevelUP:
		return 60, true
	case LevelPP:
		return 85, true
	case LevelGP:
		return 100, true
	case LevelCP:
		return 115, true
	case LevelEP:
		return 130, true
	}
	return 0, false
}

// WeightedScore is score * weight / 100, rounded to two decimals.
func WeightedScore(score, weight float64) float64 {
	return round2(score * weight / 100)
}

// LevelForAverage buckets an average KPI score back onto the level scale.
func LevelForAverage(avg float64) Level {
	switch {
	case avg >= 4.5:
		return LevelEP
	case avg >= 3.5:
		return LevelCP
	case avg >= 2.5:
		return LevelGP
	case avg >= 1.5:
		return LevelPP
	case avg >= 0.5:
		return LevelUP
	}
	return LevelF
}

// StatusForAverage returns the dashboard status label for an average KPI score.
func StatusForAverage(avg float64) string {
	switch {
	case avg >= 4.5:
		return "Elite Performer"
	case avg >= 3.5:
		return "High Performer"
	case avg >= 2.5:
		return "On Track"
	case avg >= 1.5:
		return "Developing"
	}
	return "Needs Support"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
