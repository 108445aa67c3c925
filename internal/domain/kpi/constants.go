package kpi

import (
	"fmt"
	"strings"
)

// Level is an evaluation grade. Levels are ordered F < UP < PP < GP < CP < EP.
type Level string

const (
	LevelF  Level = "F"
	LevelUP Level = "UP"
	LevelPP Level = "PP"
	LevelGP Level = "GP"
	LevelCP Level = "CP"
	LevelEP Level = "EP"
)

// Levels lists every evaluation level from lowest to highest.
func Levels() []Level {
	return []Level{LevelF, LevelUP, LevelPP, LevelGP, LevelCP, LevelEP}
}

func (l Level) Valid() bool {
	return l.Rank() >= 0
}

// Rank is the zero-based position of the level, or -1 for an unknown level.
func (l Level) Rank() int {
	switch l {
	case LevelF:
		return 0
	case LevelUP:
		return 1
	case LevelPP:
		return 2
	case LevelGP:
		return 3
	case LevelCP:
		return 4
	case LevelEP:
		return 5
	}
	return -1
}

func ParseLevel(raw string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(raw)))
	if !level.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLevel, raw)
	}
	return level, nil
}

type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleEmployee
}

type PeriodType string

const (
	PeriodWeekly    PeriodType = "weekly"
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
	PeriodAnnual    PeriodType = "annual"
)

const (
	// FirstAssessmentYear is the earliest year offered for competency assessments.
	FirstAssessmentYear = 2026

	DefaultEmployeePassword = "123"
)
