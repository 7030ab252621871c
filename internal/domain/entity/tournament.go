package entity

import "time"

type Tournament struct {
	ID             int64             `json:"id,omitempty"`
	Name           string            `json:"name" validate:"required,max=255"`
	AdditionalInfo *string           `json:"additionalInfo,omitempty"`
	Status         CompetitionStatus `json:"status,omitempty" validate:"required,oneof=ACTIVE INACTIVE"`
	Start          *time.Time        `json:"start,omitempty"`
	Ends           *time.Time        `json:"ends,omitempty"`
	Image          *FileData         `json:"image,omitempty" validate:"-"`
}

func (t Tournament) GetID() int64 { return t.ID }
