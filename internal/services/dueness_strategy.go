// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurring expense dueness
// checking. Each frequency has a checker deciding whether a template is due
// for another copy.
package services

import (
	"fmt"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// DuenessChecker decides whether a recurring template should produce a copy
// on today. last is the date of the most recent occurrence and anchor the
// template's own date, which fixes the day (and month) the copy lands on.
type DuenessChecker interface {
	IsDue(last, today, anchor core.Date) bool
}

// DailyChecker is due once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(last, today, _ core.Date) bool {
	return last.Before(today)
}

// WeeklyChecker is due when 7 or more days have passed.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(last, today, _ core.Date) bool {
	return !today.Before(last.AddDays(7))
}

// MonthlyChecker is due in a new month once the anchor's day of month is
// reached, clamped to the month's last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(last, today, anchor core.Date) bool {
	if !last.MonthKey().Before(today.MonthKey()) {
		return false
	}
	return today.Day() >= clampDay(anchor.Day(), today.MonthKey())
}

// YearlyChecker is due in a new year once the anchor's month and day are
// reached.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(last, today, anchor core.Date) bool {
	if last.Year() >= today.Year() {
		return false
	}
	if today.Month() != anchor.Month() {
		return today.Month() > anchor.Month()
	}
	return today.Day() >= clampDay(anchor.Day(), today.MonthKey())
}

func clampDay(day int, month core.MonthKey) int {
	if last := month.Days(); day > last {
		return last
	}
	return day
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for a frequency.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, frequency)
	}
	return checker, nil
}
