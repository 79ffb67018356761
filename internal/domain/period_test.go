package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPeriod(t *testing.T) {
	tests := []struct {
		name           string
		schoolSchedule string
		stopTime       string
		want           Period
	}{
		{"code at the end of the schedule label", "07:15 AM", "06:45", PeriodAM},
		{"lowercase code is canonicalized", "13:00 md", "12:30", PeriodMD},
		{"code embedded in the stop time", "", "14:30 PM", PeriodPM},
		{"schedule label wins over stop time", "07:15 AM", "14:30 PM", PeriodAM},
		{"extra period", "EX 16:00", "15:30", PeriodEX},
		{"no code anywhere", "07:15", "07:15", PeriodNone},
		{"code must be a whole word", "EXAM 07:15", "", PeriodNone},
		{"empty slot", "", "", PeriodNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := ScheduleSlot{SchoolSchedule: tt.schoolSchedule, StopTime: tt.stopTime}
			assert.Equal(t, tt.want, ClassifyPeriod(slot))
		})
	}
}

func TestDisplayGroup(t *testing.T) {
	tests := []struct {
		name     string
		stopTime string
		want     string
	}{
		{"before noon is entrada", "07:15", "entrada"},
		{"noon is salida", "12:00", "salida"},
		{"afternoon is salida", "14:30", "salida"},
		{"unparseable falls back to salida", "mediodia", "salida"},
		{"empty falls back to salida", "", "salida"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayGroup(ScheduleSlot{StopTime: tt.stopTime}))
		})
	}
}

// A slot without a period code still gets a display group, but stays out
// of classification entirely.
func TestDisplayGroupDoesNotImplyPeriod(t *testing.T) {
	slot := ScheduleSlot{SchoolSchedule: "07:15", StopTime: "07:15"}
	assert.Equal(t, "entrada", DisplayGroup(slot))
	assert.Equal(t, PeriodNone, ClassifyPeriod(slot))
}
