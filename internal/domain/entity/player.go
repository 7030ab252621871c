package entity

// Player owns the Player<->Guardian association.
type Player struct {
	ID            int64      `json:"id,omitempty"`
	FirstName     string     `json:"firstName" validate:"required,max=255"`
	MiddleInitial *string    `json:"middleInitial,omitempty" validate:"omitempty,max=1"`
	LastName      string     `json:"lastName" validate:"required,max=255"`
	Gender        Gender     `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE"`
	DateOfBirth   *LocalDate `json:"dateOfBirth,omitempty"`
	Guardians     []Guardian `json:"guardians,omitempty" validate:"-"`
	Teams         []Team     `json:"teams,omitempty" validate:"-"`
}

func (p Player) GetID() int64 { return p.ID }
