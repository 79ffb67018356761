package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

var weekdayOrder = map[Weekday]int{
	Monday:    1,
	Tuesday:   2,
	Wednesday: 3,
	Thursday:  4,
	Friday:    5,
}

// Weekdays lists the schedulable days in presentation order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
}

func ParseWeekday(value string) (Weekday, error) {
	day := Weekday(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := weekdayOrder[day]; !ok {
		return "", fmt.Errorf("unknown weekday: %q", value)
	}
	return day, nil
}

// DaySet is a de-duplicated set of weekdays kept in monday..friday order.
// The zero value is the empty set. Methods never mutate the receiver.
type DaySet struct {
	days []Weekday
}

func NewDaySet(days ...Weekday) DaySet {
	set := DaySet{}
	for _, day := range days {
		if _, ok := weekdayOrder[day]; !ok {
			continue
		}
		if set.Contains(day) {
			continue
		}
		set.days = append(set.days, day)
	}
	sortDays(set.days)
	return set
}

func ParseDaySet(values []string) (DaySet, error) {
	days := make([]Weekday, 0, len(values))
	for _, value := range values {
		day, err := ParseWeekday(value)
		if err != nil {
			return DaySet{}, err
		}
		days = append(days, day)
	}
	return NewDaySet(days...), nil
}

func (s DaySet) Len() int {
	return len(s.days)
}

func (s DaySet) IsEmpty() bool {
	return len(s.days) == 0
}

func (s DaySet) Contains(day Weekday) bool {
	for _, existing := range s.days {
		if existing == day {
			return true
		}
	}
	return false
}

func (s DaySet) Without(day Weekday) DaySet {
	result := DaySet{}
	for _, existing := range s.days {
		if existing != day {
			result.days = append(result.days, existing)
		}
	}
	return result
}

// Minus removes every day of other from the set.
func (s DaySet) Minus(other DaySet) DaySet {
	result := DaySet{}
	for _, existing := range s.days {
		if !other.Contains(existing) {
			result.days = append(result.days, existing)
		}
	}
	return result
}

// SupersetOf reports whether the set covers every day of other.
func (s DaySet) SupersetOf(other DaySet) bool {
	for _, day := range other.days {
		if !s.Contains(day) {
			return false
		}
	}
	return true
}

func (s DaySet) Equal(other DaySet) bool {
	if len(s.days) != len(other.days) {
		return false
	}
	for i, day := range s.days {
		if other.days[i] != day {
			return false
		}
	}
	return true
}

func (s DaySet) Weekdays() []Weekday {
	result := make([]Weekday, len(s.days))
	copy(result, s.days)
	return result
}

func sortDays(days []Weekday) {
	for i := 1; i < len(days); i++ {
		for j := i; j > 0 && weekdayOrder[days[j]] < weekdayOrder[days[j-1]]; j-- {
			days[j], days[j-1] = days[j-1], days[j]
		}
	}
}

// SlotFields are the per-slot attributes shared by every weekday the
// slot covers.
type SlotFields struct {
	StopTime       string
	SchoolSchedule string
	RouteNumber    string
	Note           string
}

// ScheduleSlot is a recurring weekly stop assignment. StudentID is nil
// for legacy family-level rows, which apply to any student of the family.
type ScheduleSlot struct {
	ID             uuid.UUID
	FamilyID       uuid.UUID
	StudentID      *uuid.UUID
	Days           DaySet
	StopTime       string
	SchoolSchedule string
	RouteNumber    string
	Note           string
}

func (s ScheduleSlot) Fields() SlotFields {
	return SlotFields{
		StopTime:       s.StopTime,
		SchoolSchedule: s.SchoolSchedule,
		RouteNumber:    s.RouteNumber,
		Note:           s.Note,
	}
}

// AppliesTo reports whether the slot belongs to the student, counting
// unattributed family-level rows as applying to every family member.
func (s ScheduleSlot) AppliesTo(studentID uuid.UUID) bool {
	return s.StudentID == nil || *s.StudentID == studentID
}

// SlotUpdate carries a partial update; nil members leave the stored
// value untouched.
type SlotUpdate struct {
	Fields *SlotFields
	Days   *DaySet
}
