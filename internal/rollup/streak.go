package rollup

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the key format of commits_by_day.
const DateLayout = "2006-01-02"

// LongestStreak returns the longest run of consecutive active days. Dates
// are compared with their neighbour in sorted order: an active day extends
// the run only when the previous listed date is exactly one day earlier, so
// both a zero-count day and a day missing from the map end the run.
func LongestStreak(commitsByDay map[string]int) int {
	if len(commitsByDay) == 0 {
		return 0
	}

	dates := make([]string, 0, len(commitsByDay))
	for d := range commitsByDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	longest, current := 0, 0
	for i, d := range dates {
		if commitsByDay[d] <= 0 {
			current = 0
			continue
		}

		if i > 0 && consecutive(dates[i-1], d) {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

// consecutive reports whether next is the calendar day after prev. Either
// side failing to parse counts as a break.
func consecutive(prev, next string) bool {
	p, err := time.Parse(DateLayout, prev)
	if err != nil {
		return false
	}
	n, err := time.Parse(DateLayout, next)
	if err != nil {
		return false
	}
	return p.AddDate(0, 0, 1).Equal(n)
}

// FillMissingDays returns a copy of commitsByDay with an explicit zero for
// every calendar day between the earliest and latest parseable dates.
// Unparseable keys are carried over untouched. LongestStreak gives the same
// answer with or without filling.
func FillMissingDays(commitsByDay map[string]int) map[string]int {
	filled := make(map[string]int, len(commitsByDay))
	var first, last time.Time
	for d, n := range commitsByDay {
		filled[d] = n
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if last.IsZero() || t.After(last) {
			last = t
		}
	}
	if first.IsZero() {
		return filled
	}

	for t := first; !t.After(last); t = t.AddDate(0, 0, 1) {
		key := t.Format(DateLayout)
		if _, ok := filled[key]; !ok {
			filled[key] = 0
		}
	}
	return filled
}

// WeeklyBuckets sums counts per ISO week under "Week N" labels. Dates that
// fail to parse are skipped.
func WeeklyBuckets(commitsByDay map[string]int) map[string]int {
	weeks := make(map[string]int)
	for d, n := range commitsByDay {
		t, err := time.Parse(DateLayout, d)
		if err != nil {
			continue
		}
		_, week := t.ISOWeek()
		weeks[fmt.Sprintf("Week %d", week)] += n
	}
	return weeks
}
