package domain

import "github.com/google/uuid"

type Student struct {
	ID       uuid.UUID
	FamilyID uuid.UUID
	FullName string
	Grade    string
}
