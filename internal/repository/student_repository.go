package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"service-transport/internal/domain"
)

type StudentRepository interface {
	Get(ctx context.Context, studentID uuid.UUID) (domain.Student, error)
	ListByFamily(ctx context.Context, familyID uuid.UUID) ([]domain.Student, error)
	List(ctx context.Context) ([]domain.Student, error)
}

type StudentPostgresRepository struct {
	execer Execer
}

func NewStudentPostgresRepository(execer Execer) *StudentPostgresRepository {
	return &StudentPostgresRepository{execer: execer}
}

func (r *StudentPostgresRepository) Get(ctx context.Context, studentID uuid.UUID) (domain.Student, error) {
	const query = `
SELECT id, family_id, full_name, grade
FROM transport.students
WHERE id = $1
`

	var student domain.Student
	var grade sql.NullString
	if err := r.execer.QueryRowContext(ctx, query, studentID).Scan(
		&student.ID,
		&student.FamilyID,
		&student.FullName,
		&grade,
	); err != nil {
		return domain.Student{}, err
	}
	if grade.Valid {
		student.Grade = grade.String
	}
	return student, nil
}

func (r *StudentPostgresRepository) ListByFamily(ctx context.Context, familyID uuid.UUID) ([]domain.Student, error) {
	const query = `
SELECT id, family_id, full_name, grade
FROM transport.students
WHERE family_id = $1
ORDER BY full_name ASC
`

	rows, err := r.execer.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStudents(rows)
}

func (r *StudentPostgresRepository) List(ctx context.Context) ([]domain.Student, error) {
	const query = `
SELECT id, family_id, full_name, grade
FROM transport.students
ORDER BY full_name ASC
`

	rows, err := r.execer.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanStudents(rows)
}

func scanStudents(rows *sql.Rows) ([]domain.Student, error) {
	var students []domain.Student
	for rows.Next() {
		var student domain.Student
		var grade sql.NullString
		if err := rows.Scan(
			&student.ID,
			&student.FamilyID,
			&student.FullName,
			&grade,
		); err != nil {
			return nil, err
		}
		if grade.Valid {
			student.Grade = grade.String
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return students, nil
}
