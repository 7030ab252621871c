package entity

import (
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// Record is implemented by every entity the admin client manages.
// Identifiers are assigned by the backend; zero means "not persisted yet".
type Record interface {
	GetID() int64
}

// Ref is the write-side form of a relation: only the identifier travels.
type Ref struct {
	ID int64 `json:"id"`
}

func (r Ref) GetID() int64 { return r.ID }

// Stubs maps identifiers to {id} references, keeping the given order.
func Stubs(ids []int64) []Ref {
	out := make([]Ref, 0, len(ids))
	for _, id := range ids {
		out = append(out, Ref{ID: id})
	}
	return out
}

type CompetitionStatus string

const (
	StatusActive   CompetitionStatus = "ACTIVE"
	StatusInactive CompetitionStatus = "INACTIVE"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

const LocalDateLayout = "2006-01-02"

// LocalDate is a calendar date without zone, encoded as "2006-01-02".
type LocalDate struct {
	time.Time
}

func NewLocalDate(year int, month time.Month, day int) LocalDate {
	return LocalDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseLocalDate(value string) (LocalDate, error) {
	parsed, err := time.Parse(LocalDateLayout, strings.TrimSpace(value))
	if err != nil {
		return LocalDate{}, crerr.Wrapf(err, "parse local date %q", value)
	}
	return LocalDate{Time: parsed}, nil
}

func (d LocalDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(LocalDateLayout)
}

func (d LocalDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(LocalDateLayout) + `"`), nil
}

func (d *LocalDate) UnmarshalJSON(raw []byte) error {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseLocalDate(text)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

// String returns a pointer to v, handy for optional text fields.
func String(v string) *string {
	return ptr(v)
}

// Time returns a pointer to v, handy for optional instant fields.
func Time(v time.Time) *time.Time {
	return ptr(v)
}
