package entity

type Organization struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name" validate:"required,max=255"`
}

func (o Organization) GetID() int64 { return o.ID }
