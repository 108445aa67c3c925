package kpi

import (
	"fmt"
	"time"
)

func WeekKey(week, year int) string {
	return fmt.Sprintf("week-%d-%d", week, year)
}

func MonthKey(month, year int) string {
	return fmt.Sprintf("month-%d-%d", month, year)
}

func QuarterKey(quarter, year int) string {
	return fmt.Sprintf("q%d-%d", quarter, year)
}

func AnnualKey(year int) string {
	return fmt.Sprintf("Annual-%d", year)
}

// PeriodOptions lists every period-instance key of the given cadence in a year.
func PeriodOptions(period PeriodType, year int) ([]string, error) {
	var keys []string
	switch period {
	case PeriodWeekly:
		for w := 1; w <= 52; w++ {
			keys = append(keys, WeekKey(w, year))
		}
	case PeriodMonthly:
		for m := 1; m <= 12; m++ {
			keys = append(keys, MonthKey(m, year))
		}
	case PeriodQuarterly:
		for q := 1; q <= 4; q++ {
			keys = append(keys, QuarterKey(q, year))
		}
	case PeriodAnnual:
		keys = append(keys, AnnualKey(year))
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	return keys, nil
}

// CurrentPeriodKey returns the period-instance key containing t.
func CurrentPeriodKey(period PeriodType, t time.Time) (string, error) {
	switch period {
	case PeriodWeekly:
		year, week := t.ISOWeek()
		if week > 52 {
			week = 52
		}
		return WeekKey(week, year), nil
	case PeriodMonthly:
		return MonthKey(int(t.Month()), t.Year()), nil
	case PeriodQuarterly:
		return QuarterKey((int(t.Month())-1)/3+1, t.Year()), nil
	case PeriodAnnual:
		return AnnualKey(t.Year()), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
}

// AssessmentYears lists the years offered for competency assessments.
func AssessmentYears(now time.Time) []int {
	end := max(now.Year()+1, 2030)
	years := make([]int, 0, end-FirstAssessmentYear+1)
	for y := FirstAssessmentYear; y <= end; y++ {
		years = append(years, y)
	}
	return years
}

// DefaultAssessmentPeriod is the annual key preselected for competency assessments.
func DefaultAssessmentPeriod(now time.Time) string {
	return AnnualKey(max(now.Year(), FirstAssessmentYear))
}
