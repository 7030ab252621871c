package form

import (
	"net/url"
	"strconv"

	"github.com/riskibarqy/tournament-admin/internal/crud"
	"github.com/riskibarqy/tournament-admin/internal/schema"
)

type InputType string

const (
	InputText          InputType = "text"
	InputSelect        InputType = "select"
	InputDateTimeLocal InputType = "datetime-local"
	InputDate          InputType = "date"
	InputMultiSelect   InputType = "multiselect"
)

type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Input is one rendered form control with its current value.
type Input struct {
	Name      string    `json:"name"`
	Type      InputType `json:"type"`
	Required  bool      `json:"required,omitempty"`
	MaxLength int       `json:"maxLength,omitempty"`
	ReadOnly  bool      `json:"readOnly,omitempty"`
	Choices   []Choice  `json:"choices,omitempty"`
	Values    []string  `json:"values"`
}

// Inputs lays out the controls for desc in declaration order: id (when
// editing), fields, then relations populated from options.
func (b *Binder) Inputs(desc schema.Descriptor, values url.Values, options map[string][]crud.Option) []Input {
	out := make([]Input, 0, len(desc.Fields)+len(desc.Relations)+1)
	if values.Get("id") != "" {
		out = append(out, Input{Name: "id", Type: InputText, Required: true, ReadOnly: true, Values: values["id"]})
	}

	for _, field := range desc.Fields {
		input := Input{
			Name:      field.Name,
			Type:      InputText,
			Required:  field.Required,
			MaxLength: field.MaxLength,
			Values:    values[field.Name],
		}
		switch field.Kind {
		case schema.KindEnum:
			input.Type = InputSelect
			for _, member := range b.EnumOptions(field) {
				input.Choices = append(input.Choices, Choice{Value: member, Label: member})
			}
		case schema.KindInstant:
			input.Type = InputDateTimeLocal
		case schema.KindLocalDate:
			input.Type = InputDate
		}
		out = append(out, input)
	}

	for _, rel := range desc.Relations {
		input := Input{
			Name:     rel.Name,
			Type:     InputSelect,
			Required: rel.Required,
			Values:   values[rel.Name],
		}
		if rel.Cardinality == schema.Many {
			input.Type = InputMultiSelect
		}
		for _, option := range options[rel.Name] {
			input.Choices = append(input.Choices, Choice{
				Value: strconv.FormatInt(option.ID, 10),
				Label: option.Label,
			})
		}
		out = append(out, input)
	}

	return out
}
