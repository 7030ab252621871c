package crud

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/tournament-admin/internal/schema"
)

// NewValidator reports violations under their wire (json) field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkRecord runs struct constraints and required relations. It returns a
// *ValidationError when the record must not be submitted.
func checkRecord(ctx context.Context, v *validator.Validate, desc schema.Descriptor, record any) error {
	violations := make([]FieldViolation, 0)

	if err := v.StructCtx(ctx, record); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		for _, fieldErr := range fieldErrs {
			violations = append(violations, FieldViolation{
				Field: fieldErr.Field(),
				Rule:  fieldErr.Tag(),
				Param: fieldErr.Param(),
			})
		}
	}

	required := make([]schema.Relation, 0)
	for _, rel := range desc.Relations {
		if rel.Required {
			required = append(required, rel)
		}
	}
	if len(required) > 0 {
		payload, err := WritePayload(desc, record)
		if err != nil {
			return err
		}
		for _, rel := range required {
			if value, ok := payload[rel.Name]; !ok || value == nil {
				violations = append(violations, FieldViolation{Field: rel.Name, Rule: "required"})
			}
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Entity: desc.Name, Violations: violations}
}

// checkCleared rejects nulls on fields a merge patch may not remove.
func checkCleared(desc schema.Descriptor, cleared []string) error {
	violations := make([]FieldViolation, 0)
	for _, name := range cleared {
		if name == "id" {
			violations = append(violations, FieldViolation{Field: name, Rule: "required"})
			continue
		}
		if field, ok := desc.Field(name); ok {
			if field.Required {
				violations = append(violations, FieldViolation{Field: name, Rule: "required"})
			}
			continue
		}
		if rel, ok := desc.Relation(name); ok {
			if rel.Required {
				violations = append(violations, FieldViolation{Field: name, Rule: "required"})
			}
			continue
		}
		violations = append(violations, FieldViolation{Field: name, Rule: "unknown"})
	}

	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Entity: desc.Name, Violations: violations}
}

func missingID(desc schema.Descriptor) error {
	return &ValidationError{
		Entity:     desc.Name,
		Violations: []FieldViolation{{Field: "id", Rule: "required"}},
	}
}
