package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"service-transport/internal/domain"
	"service-transport/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// SlotService owns the create/edit/split/delete semantics for multi-day
// schedule slots. All store calls are sequential; within one edit the
// original slot is updated or deleted before any new slot is created, so
// an interruption can leave a weekday uncovered but never double-covered.
type SlotService struct {
	slots    repository.SlotRepository
	students repository.StudentRepository
}

func NewSlotService(slots repository.SlotRepository, students repository.StudentRepository) *SlotService {
	return &SlotService{slots: slots, students: students}
}

// StudentSlots lists the slots owned by the student. Unknown students
// fail with ErrNotFound; a student without slots yields an empty list.
func (s *SlotService) StudentSlots(ctx context.Context, studentID uuid.UUID) ([]domain.ScheduleSlot, error) {
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, mapStoreError(err)
	}
	slots, err := s.slots.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return slots, nil
}

func (s *SlotService) Create(
	ctx context.Context,
	studentID uuid.UUID,
	fields domain.SlotFields,
	days domain.DaySet,
) (domain.ScheduleSlot, error) {
	if days.IsEmpty() || fields.StopTime == "" || fields.SchoolSchedule == "" {
		return domain.ScheduleSlot{}, ErrInvalidInput
	}

	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return domain.ScheduleSlot{}, mapStoreError(err)
	}

	// No merging with existing slots: duplicate coverage of a weekday
	// and period is allowed on create.
	created, err := s.slots.Create(ctx, student.FamilyID, student.ID, fields, days)
	if err != nil {
		return domain.ScheduleSlot{}, err
	}
	return created, nil
}

// EditDay edits one weekday of a possibly multi-day slot. Depending on
// how newDays relates to the slot's current day set this is an in-place
// update or a split into an untouched remainder plus a new slot. The
// returned slot is the one now covering newDays.
func (s *SlotService) EditDay(
	ctx context.Context,
	studentID uuid.UUID,
	slotID uuid.UUID,
	targetDay domain.Weekday,
	newFields domain.SlotFields,
	newDays domain.DaySet,
) (domain.ScheduleSlot, error) {
	if newDays.IsEmpty() || newFields.StopTime == "" || newFields.SchoolSchedule == "" {
		return domain.ScheduleSlot{}, ErrInvalidInput
	}

	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return domain.ScheduleSlot{}, mapStoreError(err)
	}

	owner, existing, err := s.resolveSlot(ctx, student.FamilyID, student.ID, slotID)
	if err != nil {
		return domain.ScheduleSlot{}, err
	}

	// Single-day slots and edits that subsume every original day are
	// updated in place; splitting would orphan already-covered days.
	if existing.Days.Len() <= 1 || newDays.SupersetOf(existing.Days) {
		return s.updateSlot(ctx, existing.FamilyID, owner, slotID, domain.SlotUpdate{
			Fields: &newFields,
			Days:   &newDays,
		})
	}

	remaining := existing.Days.Without(targetDay).Minus(newDays)
	if remaining.IsEmpty() {
		if err := s.deleteSlot(ctx, existing.FamilyID, owner, slotID); err != nil {
			return domain.ScheduleSlot{}, err
		}
	} else {
		if _, err := s.updateSlot(ctx, existing.FamilyID, owner, slotID, domain.SlotUpdate{
			Days: &remaining,
		}); err != nil {
			return domain.ScheduleSlot{}, err
		}
	}

	created, err := s.slots.Create(ctx, existing.FamilyID, owner, newFields, newDays)
	if err != nil {
		return domain.ScheduleSlot{}, err
	}
	return created, nil
}

// RemoveDay takes one weekday off a slot, deleting the slot when that
// weekday was its last one.
func (s *SlotService) RemoveDay(
	ctx context.Context,
	studentID uuid.UUID,
	slotID uuid.UUID,
	targetDay domain.Weekday,
) error {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return mapStoreError(err)
	}

	owner, existing, err := s.resolveSlot(ctx, student.FamilyID, student.ID, slotID)
	if err != nil {
		return err
	}

	if existing.Days.Len() <= 1 {
		return s.deleteSlot(ctx, existing.FamilyID, owner, slotID)
	}

	remaining := existing.Days.Without(targetDay)
	_, err = s.updateSlot(ctx, existing.FamilyID, owner, slotID, domain.SlotUpdate{Days: &remaining})
	return err
}

func (s *SlotService) Delete(ctx context.Context, studentID uuid.UUID, slotID uuid.UUID) error {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return mapStoreError(err)
	}
	return s.deleteSlot(ctx, student.FamilyID, student.ID, slotID)
}

func (s *SlotService) updateSlot(
	ctx context.Context,
	familyID uuid.UUID,
	believedOwner uuid.UUID,
	slotID uuid.UUID,
	update domain.SlotUpdate,
) (domain.ScheduleSlot, error) {
	var updated domain.ScheduleSlot
	err := s.withOwnershipFallback(ctx, familyID, believedOwner, slotID, func(ctx context.Context, owner uuid.UUID) error {
		slot, err := s.slots.Update(ctx, owner, slotID, update)
		if err != nil {
			return err
		}
		updated = slot
		return nil
	})
	if err != nil {
		return domain.ScheduleSlot{}, err
	}
	return updated, nil
}

func (s *SlotService) deleteSlot(
	ctx context.Context,
	familyID uuid.UUID,
	believedOwner uuid.UUID,
	slotID uuid.UUID,
) error {
	return s.withOwnershipFallback(ctx, familyID, believedOwner, slotID, func(ctx context.Context, owner uuid.UUID) error {
		return s.slots.Delete(ctx, owner, slotID)
	})
}

// withOwnershipFallback runs op against the student believed to own the
// slot. When the store answers "no such slot for that student" the slot
// may have moved to a sibling: every student of the family is rescanned
// for the slot id and op is retried once against the discovered owner.
// Without a discovered owner the original error stands.
func (s *SlotService) withOwnershipFallback(
	ctx context.Context,
	familyID uuid.UUID,
	believedOwner uuid.UUID,
	slotID uuid.UUID,
	op func(ctx context.Context, owner uuid.UUID) error,
) error {
	err := op(ctx, believedOwner)
	if err == nil || !errors.Is(err, sql.ErrNoRows) {
		return mapStoreError(err)
	}

	owner, _, found, lookupErr := s.findOwner(ctx, familyID, slotID)
	if lookupErr != nil {
		return lookupErr
	}
	if !found || owner == believedOwner {
		return mapStoreError(err)
	}
	return mapStoreError(op(ctx, owner))
}

// resolveSlot locates the slot in the claimed student's set, falling
// back to a family-wide scan when the claim is stale.
func (s *SlotService) resolveSlot(
	ctx context.Context,
	familyID uuid.UUID,
	studentID uuid.UUID,
	slotID uuid.UUID,
) (uuid.UUID, domain.ScheduleSlot, error) {
	slots, err := s.slots.ListByStudent(ctx, studentID)
	if err != nil {
		return uuid.Nil, domain.ScheduleSlot{}, mapStoreError(err)
	}
	if slot, ok := findSlot(slots, slotID); ok {
		return studentID, slot, nil
	}

	owner, slot, found, err := s.findOwner(ctx, familyID, slotID)
	if err != nil {
		return uuid.Nil, domain.ScheduleSlot{}, err
	}
	if !found {
		return uuid.Nil, domain.ScheduleSlot{}, ErrNotFound
	}
	return owner, slot, nil
}

func (s *SlotService) findOwner(
	ctx context.Context,
	familyID uuid.UUID,
	slotID uuid.UUID,
) (uuid.UUID, domain.ScheduleSlot, bool, error) {
	students, err := s.students.ListByFamily(ctx, familyID)
	if err != nil {
		return uuid.Nil, domain.ScheduleSlot{}, false, mapStoreError(err)
	}

	for _, student := range students {
		slots, err := s.slots.ListByStudent(ctx, student.ID)
		if err != nil {
			return uuid.Nil, domain.ScheduleSlot{}, false, mapStoreError(err)
		}
		if slot, ok := findSlot(slots, slotID); ok {
			return student.ID, slot, true, nil
		}
	}
	return uuid.Nil, domain.ScheduleSlot{}, false, nil
}

func findSlot(slots []domain.ScheduleSlot, slotID uuid.UUID) (domain.ScheduleSlot, bool) {
	for _, slot := range slots {
		if slot.ID == slotID {
			return slot, true
		}
	}
	return domain.ScheduleSlot{}, false
}

func mapStoreError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
