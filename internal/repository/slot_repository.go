package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"service-transport/internal/domain"
)

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SlotRepository is the durable store for schedule slots. Lookups scoped
// to a student report sql.ErrNoRows when the slot id is not owned by
// that student.
type SlotRepository interface {
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.ScheduleSlot, error)
	ListFamilyLevel(ctx context.Context, familyID uuid.UUID) ([]domain.ScheduleSlot, error)
	ListAll(ctx context.Context) ([]domain.ScheduleSlot, error)
	Create(ctx context.Context, familyID uuid.UUID, studentID uuid.UUID, fields domain.SlotFields, days domain.DaySet) (domain.ScheduleSlot, error)
	Update(ctx context.Context, studentID uuid.UUID, slotID uuid.UUID, update domain.SlotUpdate) (domain.ScheduleSlot, error)
	Delete(ctx context.Context, studentID uuid.UUID, slotID uuid.UUID) error
}

type SlotPostgresRepository struct {
	execer Execer
}

func NewSlotPostgresRepository(execer Execer) *SlotPostgresRepository {
	return &SlotPostgresRepository{execer: execer}
}

const slotColumns = `id, family_id, student_id, days, stop_time, school_schedule, route_number, note`

func (r *SlotPostgresRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.ScheduleSlot, error) {
	const query = `
SELECT ` + slotColumns + `
FROM transport.schedule_slots
WHERE student_id = $1
ORDER BY created_at ASC
`

	rows, err := r.execer.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlots(rows)
}

func (r *SlotPostgresRepository) ListFamilyLevel(ctx context.Context, familyID uuid.UUID) ([]domain.ScheduleSlot, error) {
	const query = `
SELECT ` + slotColumns + `
FROM transport.schedule_slots
WHERE family_id = $1 AND student_id IS NULL
ORDER BY created_at ASC
`

	rows, err := r.execer.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlots(rows)
}

func (r *SlotPostgresRepository) ListAll(ctx context.Context) ([]domain.ScheduleSlot, error) {
	const query = `
SELECT ` + slotColumns + `
FROM transport.schedule_slots
ORDER BY created_at ASC
`

	rows, err := r.execer.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSlots(rows)
}

func (r *SlotPostgresRepository) Create(
	ctx context.Context,
	familyID uuid.UUID,
	studentID uuid.UUID,
	fields domain.SlotFields,
	days domain.DaySet,
) (domain.ScheduleSlot, error) {
	const query = `
INSERT INTO transport.schedule_slots (
	id,
	family_id,
	student_id,
	days,
	stop_time,
	school_schedule,
	route_number,
	note,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
RETURNING ` + slotColumns + `

`

	row := r.execer.QueryRowContext(
		ctx,
		query,
		uuid.New(),
		familyID,
		studentID,
		encodeDays(days),
		fields.StopTime,
		fields.SchoolSchedule,
		nullableString(fields.RouteNumber),
		nullableString(fields.Note),
	)
	return scanSlot(row)
}

func (r *SlotPostgresRepository) Update(
	ctx context.Context,
	studentID uuid.UUID,
	slotID uuid.UUID,
	update domain.SlotUpdate,
) (domain.ScheduleSlot, error) {
	const query = `
UPDATE transport.schedule_slots
SET
	days = COALESCE($3, days),
	stop_time = COALESCE($4, stop_time),
	school_schedule = COALESCE($5, school_schedule),
	route_number = CASE WHEN $7 THEN $6 ELSE route_number END,
	note = CASE WHEN $7 THEN $8 ELSE note END,
	updated_at = now()
WHERE id = $1 AND student_id = $2
RETURNING ` + slotColumns + `
`

	var days sql.NullString
	if update.Days != nil {
		days = sql.NullString{String: encodeDays(*update.Days), Valid: true}
	}

	var stopTime sql.NullString
	var schoolSchedule sql.NullString
	var routeNumber sql.NullString
	var note sql.NullString
	fieldsSet := update.Fields != nil
	if fieldsSet {
		stopTime = sql.NullString{String: update.Fields.StopTime, Valid: true}
		schoolSchedule = sql.NullString{String: update.Fields.SchoolSchedule, Valid: true}
		routeNumber = nullableString(update.Fields.RouteNumber)
		note = nullableString(update.Fields.Note)
	}

	row := r.execer.QueryRowContext(
		ctx,
		query,
		slotID,
		studentID,
		days,
		stopTime,
		schoolSchedule,
		routeNumber,
		fieldsSet,
		note,
	)
	return scanSlot(row)
}

func (r *SlotPostgresRepository) Delete(ctx context.Context, studentID uuid.UUID, slotID uuid.UUID) error {
	const query = `
DELETE FROM transport.schedule_slots
WHERE id = $1 AND student_id = $2
`

	result, err := r.execer.ExecContext(ctx, query, slotID, studentID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (domain.ScheduleSlot, error) {
	var slot domain.ScheduleSlot
	var studentID sql.Null[uuid.UUID]
	var days string
	var routeNumber sql.NullString
	var note sql.NullString
	if err := row.Scan(
		&slot.ID,
		&slot.FamilyID,
		&studentID,
		&days,
		&slot.StopTime,
		&slot.SchoolSchedule,
		&routeNumber,
		&note,
	); err != nil {
		return domain.ScheduleSlot{}, err
	}
	if studentID.Valid {
		id := studentID.V
		slot.StudentID = &id
	}
	decoded, err := decodeDays(days)
	if err != nil {
		return domain.ScheduleSlot{}, err
	}
	slot.Days = decoded
	if routeNumber.Valid {
		slot.RouteNumber = routeNumber.String
	}
	if note.Valid {
		slot.Note = note.String
	}
	return slot, nil
}

func scanSlots(rows *sql.Rows) ([]domain.ScheduleSlot, error) {
	var slots []domain.ScheduleSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// Days are stored as a single comma-separated column; the DaySet type
// exists only on this side of the boundary.
func encodeDays(days domain.DaySet) string {
	tokens := days.Weekdays()
	parts := make([]string, len(tokens))
	for i, day := range tokens {
		parts[i] = string(day)
	}
	return strings.Join(parts, ",")
}

func decodeDays(value string) (domain.DaySet, error) {
	if strings.TrimSpace(value) == "" {
		return domain.DaySet{}, nil
	}
	return domain.ParseDaySet(strings.Split(value, ","))
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
