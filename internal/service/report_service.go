package service

import (
	"context"
	"regexp"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"service-transport/internal/domain"
	"service-transport/internal/repository"
)

// StudentSchedule is one student's pre-fetched slot population: the
// slots attributed to the student plus the family's legacy unattributed
// rows, which only apply when the student has no slots of their own.
type StudentSchedule struct {
	Student     domain.Student
	Slots       []domain.ScheduleSlot
	FamilySlots []domain.ScheduleSlot
}

func (s StudentSchedule) effectiveSlots() []domain.ScheduleSlot {
	if len(s.Slots) > 0 {
		return s.Slots
	}
	var slots []domain.ScheduleSlot
	for _, slot := range s.FamilySlots {
		if slot.AppliesTo(s.Student.ID) {
			slots = append(slots, slot)
		}
	}
	return slots
}

// BuildWeeklyMatrix projects a student's slots into the Monday-Friday x
// AM/MD/PM/EX grid. The first slot to claim a cell wins; later slots
// targeting a filled cell are ignored for that cell. Slots without a
// period code never fill a cell.
func BuildWeeklyMatrix(schedule StudentSchedule) domain.WeeklyMatrix {
	matrix := domain.WeeklyMatrix{}
	slots := schedule.effectiveSlots()

	for _, day := range domain.Weekdays() {
		for _, slot := range slots {
			if !slot.Days.Contains(day) {
				continue
			}
			period := domain.ClassifyPeriod(slot)
			if period == domain.PeriodNone {
				continue
			}
			if _, filled := matrix.Cell(day, period); filled {
				continue
			}
			if matrix[day] == nil {
				matrix[day] = map[domain.Period]domain.MatrixCell{}
			}
			matrix[day][period] = domain.MatrixCell{
				StopTime:    slot.StopTime,
				RouteNumber: slot.RouteNumber,
				Note:        slot.Note,
			}
		}
	}
	return matrix
}

type routePeriod struct {
	route  string
	period domain.Period
}

// AggregateRouteOccupancy reduces a population to distinct-student
// counts per route and period. A student counts once per (route, period)
// pair no matter how many weekdays or slots share it; unclassified slots
// are excluded.
func AggregateRouteOccupancy(population []StudentSchedule) map[string]domain.PeriodCounts {
	counts := map[string]domain.PeriodCounts{}

	for _, schedule := range population {
		seen := map[routePeriod]struct{}{}
		for _, slot := range schedule.effectiveSlots() {
			period := domain.ClassifyPeriod(slot)
			if period == domain.PeriodNone {
				continue
			}
			route := slot.RouteNumber
			if route == "" {
				route = domain.NoRouteLabel
			}
			seen[routePeriod{route: route, period: period}] = struct{}{}
		}

		for pair := range seen {
			entry := counts[pair.route]
			entry.Add(pair.period)
			counts[pair.route] = entry
		}
	}
	return counts
}

var routeDigits = regexp.MustCompile(`\d+`)

// SortRouteLabels orders routes for presentation: labels containing a
// number sort ascending numerically, then labels without one sort
// alphabetically after all numeric ones.
func SortRouteLabels(labels []string) []string {
	ordered := make([]string, len(labels))
	copy(ordered, labels)

	sort.SliceStable(ordered, func(i, j int) bool {
		ni, oki := firstNumber(ordered[i])
		nj, okj := firstNumber(ordered[j])
		switch {
		case oki && okj:
			if ni != nj {
				return ni < nj
			}
			return ordered[i] < ordered[j]
		case oki:
			return true
		case okj:
			return false
		default:
			return ordered[i] < ordered[j]
		}
	})
	return ordered
}

func firstNumber(label string) (int, bool) {
	match := routeDigits.FindString(label)
	if match == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// RouteOccupancy is one presentation-ordered row of the occupancy report.
type RouteOccupancy struct {
	Route  string
	Counts domain.PeriodCounts
}

// ReportService pre-fetches slot populations and runs the pure
// projections over the snapshot it assembled.
type ReportService struct {
	slots    repository.SlotRepository
	students repository.StudentRepository
}

func NewReportService(slots repository.SlotRepository, students repository.StudentRepository) *ReportService {
	return &ReportService{slots: slots, students: students}
}

func (s *ReportService) StudentMatrix(ctx context.Context, studentID uuid.UUID) (domain.WeeklyMatrix, error) {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	slots, err := s.slots.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	familySlots, err := s.slots.ListFamilyLevel(ctx, student.FamilyID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	return BuildWeeklyMatrix(StudentSchedule{
		Student:     student,
		Slots:       slots,
		FamilySlots: familySlots,
	}), nil
}

func (s *ReportService) RouteOccupancy(ctx context.Context) ([]RouteOccupancy, error) {
	population, err := s.loadPopulation(ctx)
	if err != nil {
		return nil, err
	}

	counts := AggregateRouteOccupancy(population)
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}

	report := make([]RouteOccupancy, 0, len(counts))
	for _, label := range SortRouteLabels(labels) {
		report = append(report, RouteOccupancy{Route: label, Counts: counts[label]})
	}
	return report, nil
}

func (s *ReportService) loadPopulation(ctx context.Context) ([]StudentSchedule, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}

	byStudent := map[uuid.UUID][]domain.ScheduleSlot{}
	familyLevel := map[uuid.UUID][]domain.ScheduleSlot{}
	for _, slot := range slots {
		if slot.StudentID != nil {
			byStudent[*slot.StudentID] = append(byStudent[*slot.StudentID], slot)
			continue
		}
		familyLevel[slot.FamilyID] = append(familyLevel[slot.FamilyID], slot)
	}

	population := make([]StudentSchedule, 0, len(students))
	for _, student := range students {
		population = append(population, StudentSchedule{
			Student:     student,
			Slots:       byStudent[student.ID],
			FamilySlots: familyLevel[student.FamilyID],
		})
	}
	return population, nil
}
