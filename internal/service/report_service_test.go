package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-transport/internal/domain"
)

func slotFor(student *uuid.UUID, familyID uuid.UUID, fields domain.SlotFields, days domain.DaySet) domain.ScheduleSlot {
	return domain.ScheduleSlot{
		ID:             uuid.New(),
		FamilyID:       familyID,
		StudentID:      student,
		Days:           days,
		StopTime:       fields.StopTime,
		SchoolSchedule: fields.SchoolSchedule,
		RouteNumber:    fields.RouteNumber,
		Note:           fields.Note,
	}
}

func TestBuildWeeklyMatrix(t *testing.T) {
	familyID := uuid.New()
	student := domain.Student{ID: uuid.New(), FamilyID: familyID, FullName: "Ana Morales"}

	t.Run("slots land in their weekday and period cells", func(t *testing.T) {
		morning := slotFor(&student.ID, familyID, domain.SlotFields{
			StopTime:       "06:45",
			SchoolSchedule: "07:15 AM",
			RouteNumber:    "12",
			Note:           "porton principal",
		}, domain.NewDaySet(domain.Monday, domain.Wednesday))
		afternoon := slotFor(&student.ID, familyID, domain.SlotFields{
			StopTime:       "14:30",
			SchoolSchedule: "14:00 PM",
			RouteNumber:    "7",
		}, domain.NewDaySet(domain.Monday))

		matrix := BuildWeeklyMatrix(StudentSchedule{
			Student: student,
			Slots:   []domain.ScheduleSlot{morning, afternoon},
		})

		cell, ok := matrix.Cell(domain.Monday, domain.PeriodAM)
		require.True(t, ok)
		assert.Equal(t, domain.MatrixCell{StopTime: "06:45", RouteNumber: "12", Note: "porton principal"}, cell)

		_, ok = matrix.Cell(domain.Wednesday, domain.PeriodAM)
		assert.True(t, ok)

		cell, ok = matrix.Cell(domain.Monday, domain.PeriodPM)
		require.True(t, ok)
		assert.Equal(t, "14:30", cell.StopTime)

		_, ok = matrix.Cell(domain.Tuesday, domain.PeriodAM)
		assert.False(t, ok)
	})

	t.Run("first slot to claim a cell wins", func(t *testing.T) {
		first := slotFor(&student.ID, familyID, domain.SlotFields{
			StopTime:       "06:30",
			SchoolSchedule: "07:15 AM",
			RouteNumber:    "1",
		}, domain.NewDaySet(domain.Monday))
		second := slotFor(&student.ID, familyID, domain.SlotFields{
			StopTime:       "06:50",
			SchoolSchedule: "07:15 AM",
			RouteNumber:    "2",
		}, domain.NewDaySet(domain.Monday))

		matrix := BuildWeeklyMatrix(StudentSchedule{
			Student: student,
			Slots:   []domain.ScheduleSlot{first, second},
		})

		cell, ok := matrix.Cell(domain.Monday, domain.PeriodAM)
		require.True(t, ok)
		assert.Equal(t, "1", cell.RouteNumber)
	})

	t.Run("unclassified slots never fill a cell", func(t *testing.T) {
		slot := slotFor(&student.ID, familyID, domain.SlotFields{
			StopTime:       "07:15",
			SchoolSchedule: "07:15",
		}, domain.NewDaySet(domain.Monday))

		matrix := BuildWeeklyMatrix(StudentSchedule{Student: student, Slots: []domain.ScheduleSlot{slot}})
		assert.Empty(t, matrix[domain.Monday])
	})

	t.Run("family-level slots apply only when the student has none", func(t *testing.T) {
		familySlot := slotFor(nil, familyID, domain.SlotFields{
			StopTime:       "06:40",
			SchoolSchedule: "07:15 AM",
			RouteNumber:    "9",
		}, domain.NewDaySet(domain.Friday))

		matrix := BuildWeeklyMatrix(StudentSchedule{
			Student:     student,
			FamilySlots: []domain.ScheduleSlot{familySlot},
		})
		cell, ok := matrix.Cell(domain.Friday, domain.PeriodAM)
		require.True(t, ok)
		assert.Equal(t, "9", cell.RouteNumber)

		owned := slotFor(&student.ID, familyID, domain.SlotFields{
			StopTime:       "06:45",
			SchoolSchedule: "07:15 AM",
			RouteNumber:    "12",
		}, domain.NewDaySet(domain.Monday))
		matrix = BuildWeeklyMatrix(StudentSchedule{
			Student:     student,
			Slots:       []domain.ScheduleSlot{owned},
			FamilySlots: []domain.ScheduleSlot{familySlot},
		})
		_, ok = matrix.Cell(domain.Friday, domain.PeriodAM)
		assert.False(t, ok)
	})
}

func TestAggregateRouteOccupancy(t *testing.T) {
	familyID := uuid.New()
	ana := domain.Student{ID: uuid.New(), FamilyID: familyID, FullName: "Ana Morales"}
	luis := domain.Student{ID: uuid.New(), FamilyID: familyID, FullName: "Luis Morales"}

	amOnRoute12 := func(owner uuid.UUID, days domain.DaySet) domain.ScheduleSlot {
		return slotFor(&owner, familyID, domain.SlotFields{
			StopTime:       "06:45",
			SchoolSchedule: "07:15 AM",
			RouteNumber:    "12",
		}, days)
	}

	t.Run("a student counts once per route and period", func(t *testing.T) {
		counts := AggregateRouteOccupancy([]StudentSchedule{{
			Student: ana,
			Slots: []domain.ScheduleSlot{
				amOnRoute12(ana.ID, domain.NewDaySet(domain.Monday, domain.Wednesday)),
				amOnRoute12(ana.ID, domain.NewDaySet(domain.Friday)),
			},
		}})
		assert.Equal(t, 1, counts["12"].AM)
	})

	t.Run("distinct students add up", func(t *testing.T) {
		counts := AggregateRouteOccupancy([]StudentSchedule{
			{Student: ana, Slots: []domain.ScheduleSlot{amOnRoute12(ana.ID, domain.NewDaySet(domain.Monday))}},
			{Student: luis, Slots: []domain.ScheduleSlot{amOnRoute12(luis.ID, domain.NewDaySet(domain.Tuesday))}},
		})
		assert.Equal(t, 2, counts["12"].AM)
		assert.Equal(t, 0, counts["12"].PM)
	})

	t.Run("unassigned routes bucket under Sin Ruta and unclassified slots are excluded", func(t *testing.T) {
		noRoute := slotFor(&ana.ID, familyID, domain.SlotFields{
			StopTime:       "14:30",
			SchoolSchedule: "14:00 PM",
		}, domain.NewDaySet(domain.Monday))
		noPeriod := slotFor(&ana.ID, familyID, domain.SlotFields{
			StopTime:       "07:15",
			SchoolSchedule: "07:15",
			RouteNumber:    "3",
		}, domain.NewDaySet(domain.Monday))

		counts := AggregateRouteOccupancy([]StudentSchedule{{
			Student: ana,
			Slots:   []domain.ScheduleSlot{noRoute, noPeriod},
		}})
		assert.Equal(t, 1, counts[domain.NoRouteLabel].PM)
		_, ok := counts["3"]
		assert.False(t, ok)
	})

	t.Run("family-level slots count for the student without own slots", func(t *testing.T) {
		familySlot := slotFor(nil, familyID, domain.SlotFields{
			StopTime:       "06:40",
			SchoolSchedule: "07:15 AM",
			RouteNumber:    "5",
		}, domain.NewDaySet(domain.Monday))

		counts := AggregateRouteOccupancy([]StudentSchedule{{
			Student:     ana,
			FamilySlots: []domain.ScheduleSlot{familySlot},
		}})
		assert.Equal(t, 1, counts["5"].AM)
	})
}

func TestSortRouteLabels(t *testing.T) {
	ordered := SortRouteLabels([]string{domain.NoRouteLabel, "2", "10", "A"})
	assert.Equal(t, []string{"2", "10", "A", domain.NoRouteLabel}, ordered)
}

func TestReportServiceRouteOccupancy(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.seedSlot(f.student.ID, domain.SlotFields{
		StopTime:       "06:45",
		SchoolSchedule: "07:15 AM",
		RouteNumber:    "12",
	}, domain.NewDaySet(domain.Monday, domain.Wednesday))
	f.seedSlot(f.sibling.ID, domain.SlotFields{
		StopTime:       "14:30",
		SchoolSchedule: "14:00 PM",
	}, domain.NewDaySet(domain.Monday))

	reports := NewReportService(f.slots, f.students)
	report, err := reports.RouteOccupancy(ctx)
	require.NoError(t, err)

	require.Len(t, report, 2)
	assert.Equal(t, "12", report[0].Route)
	assert.Equal(t, 1, report[0].Counts.AM)
	assert.Equal(t, domain.NoRouteLabel, report[1].Route)
	assert.Equal(t, 1, report[1].Counts.PM)
	assert.Equal(t, 1, report[1].Counts.Total())
}

func TestReportServiceStudentMatrix(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.seedSlot(f.student.ID, domain.SlotFields{
		StopTime:       "06:45",
		SchoolSchedule: "07:15 AM",
		RouteNumber:    "12",
	}, domain.NewDaySet(domain.Monday))

	reports := NewReportService(f.slots, f.students)
	matrix, err := reports.StudentMatrix(ctx, f.student.ID)
	require.NoError(t, err)

	cell, ok := matrix.Cell(domain.Monday, domain.PeriodAM)
	require.True(t, ok)
	assert.Equal(t, "12", cell.RouteNumber)

	_, err = reports.StudentMatrix(ctx, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
