package entity

// Team owns the Player<->Team association.
type Team struct {
	ID      int64    `json:"id,omitempty"`
	Name    string   `json:"name" validate:"required,max=255"`
	Players []Player `json:"players,omitempty" validate:"-"`
}

func (t Team) GetID() int64 { return t.ID }
