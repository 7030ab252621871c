package entity

type Guardian struct {
	ID                   int64      `json:"id,omitempty"`
	FirstName            string     `json:"firstName" validate:"required,max=255"`
	MiddleInitial        *string    `json:"middleInitial,omitempty" validate:"omitempty,max=1"`
	LastName             string     `json:"lastName" validate:"required,max=255"`
	RelationshipToPlayer string     `json:"relationshipToPlayer" validate:"required,max=255"`
	DateOfBirth          *LocalDate `json:"dateOfBirth,omitempty" validate:"required"`
	TestField            *string    `json:"testField,omitempty"`
	Players              []Player   `json:"players,omitempty" validate:"-"`
}

func (g Guardian) GetID() int64 { return g.ID }
