package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Period is a slot's daily timing category.
type Period string

const (
	PeriodAM Period = "AM"
	PeriodMD Period = "MD"
	PeriodPM Period = "PM"
	PeriodEX Period = "EX"

	// PeriodNone marks a slot carrying no explicit period code. Such
	// slots are excluded from route-occupancy aggregation.
	PeriodNone Period = ""
)

func Periods() []Period {
	return []Period{PeriodAM, PeriodMD, PeriodPM, PeriodEX}
}

var periodPattern = regexp.MustCompile(`(?i)\b(AM|MD|PM|EX)\b`)

// ClassifyPeriod derives the slot's period code from its schedule text.
// The school-schedule label wins over the stop time; the first
// whole-word AM/MD/PM/EX token found is returned uppercased.
func ClassifyPeriod(slot ScheduleSlot) Period {
	if period := matchPeriod(slot.SchoolSchedule); period != PeriodNone {
		return period
	}
	return matchPeriod(slot.StopTime)
}

func matchPeriod(text string) Period {
	match := periodPattern.FindString(text)
	if match == "" {
		return PeriodNone
	}
	return Period(strings.ToUpper(match))
}

// DisplayGroup buckets a slot as a morning pickup ("entrada") or an
// afternoon drop-off ("salida") from its stop time alone. Presentation
// grouping only; never an input to occupancy aggregation.
func DisplayGroup(slot ScheduleSlot) string {
	hour, _, ok := strings.Cut(slot.StopTime, ":")
	if ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(hour)); err == nil && parsed < 12 {
			return "entrada"
		}
	}
	return "salida"
}
