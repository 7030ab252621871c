package entity

import "time"

type Season struct {
	ID             int64             `json:"id,omitempty"`
	Name           string            `json:"name" validate:"required,max=255"`
	AdditionalInfo *string           `json:"additionalInfo,omitempty"`
	Status         CompetitionStatus `json:"status,omitempty" validate:"required,oneof=ACTIVE INACTIVE"`
	Start          *time.Time        `json:"start,omitempty" validate:"required"`
	Ends           *time.Time        `json:"ends,omitempty" validate:"required"`
	Image          *FileData         `json:"image,omitempty" validate:"-"`
	Organization   *Organization     `json:"organization,omitempty" validate:"-"`
}

func (s Season) GetID() int64 { return s.ID }
