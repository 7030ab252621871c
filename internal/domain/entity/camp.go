package entity

type Camp struct {
	ID             int64             `json:"id,omitempty"`
	Name           string            `json:"name" validate:"required,max=255"`
	AdditionalInfo *string           `json:"additionalInfo,omitempty"`
	Status         CompetitionStatus `json:"status,omitempty" validate:"required,oneof=ACTIVE INACTIVE"`
	Image          *FileData         `json:"image,omitempty" validate:"-"`
}

func (c Camp) GetID() int64 { return c.ID }
