package analysis

import (
	"strings"
	"time"
)

// Season is a meteorological season label.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

var (
	northernCycle = [4]Season{Winter, Spring, Summer, Fall}
	southernCycle = [4]Season{Summer, Fall, Winter, Spring}
)

// Title returns the season name with a leading capital.
func (s Season) Title() string {
	return capitalize(string(s))
}

// SeasonAt classifies date's calendar month into a season for the given hemisphere.
func SeasonAt(date time.Time, northern bool) Season {
	var s Season
	switch date.Month() {
	case time.March, time.April, time.May:
		s = Spring
	case time.June, time.July, time.August:
		s = Summer
	case time.September, time.October, time.November:
		s = Fall
	default:
		s = Winter
	}
	if northern {
		return s
	}
	return opposite(s)
}

// SeasonSequence lists the seasons a horizon of days spans, starting at
// current: one per 90 days, rounded up, at most four.
func SeasonSequence(current Season, days int, northern bool) []Season {
	cycle := northernCycle
	if !northern {
		cycle = southernCycle
	}
	idx := 0
	for i, s := range cycle {
		if s == current {
			idx = i
			break
		}
	}
	n := 0
	if days > 0 {
		n = (days + 89) / 90
	}
	if n > len(cycle) {
		n = len(cycle)
	}
	out := make([]Season, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, cycle[(idx+i)%len(cycle)])
	}
	return out
}

func opposite(s Season) Season {
	switch s {
	case Spring:
		return Fall
	case Summer:
		return Winter
	case Fall:
		return Spring
	default:
		return Summer
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
