package entity

import "time"

type Checkin struct {
	ID        int64      `json:"id,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty" validate:"required"`
	Player    *Player    `json:"player,omitempty" validate:"-"`
}

func (c Checkin) GetID() int64 { return c.ID }
