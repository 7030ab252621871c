package entity

// FileData describes an uploaded attachment referenced by other records.
type FileData struct {
	ID       int64  `json:"id,omitempty"`
	UID      string `json:"uid" validate:"required,max=255"`
	FileName string `json:"fileName" validate:"required,max=255"`
}

func (f FileData) GetID() int64 { return f.ID }
