package app

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a rejected create request; Message is safe to show.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var errPinInUse = &ValidationError{Field: "view_code", Message: "Ese código de consulta ya está asignado a otra evaluación"}

var fieldLabels = map[string]string{
	"StudentName": "El nombre del estudiante",
	"StudentID":   "El identificador",
	"Course":      "El curso",
	"Date":        "La fecha",
	"Score":       "La nota",
	"Comments":    "El comentario",
	"Pin":         "El código de consulta",
}

var fieldNames = map[string]string{
	"StudentName": "student_name",
	"StudentID":   "student_id",
	"Course":      "course",
	"Date":        "date",
	"Score":       "score",
	"Comments":    "comments",
	"Pin":         "view_code",
}

// validationErrorFrom converts the first validator failure into a ValidationError.
func validationErrorFrom(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}

	msg := label + " no es válido"
	switch fe.Tag() {
	case "required":
		msg = label + " es obligatorio"
	case "max":
		msg = label + " es demasiado largo"
	}

	return &ValidationError{Field: fieldNames[fe.Field()], Message: msg}
}
