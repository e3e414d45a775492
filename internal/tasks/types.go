package tasks

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrNotFound = errors.New("task not found")

// Input is the body of create and update requests.
type Input struct {
	Title       string    `json:"title" validate:"required,min=1,max=100"`
	Description string    `json:"description" validate:"required,min=1,max=500"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	Status      Status    `json:"status" validate:"required,oneof=pending in_progress completed"`
}

var validate = validator.New()

// Validate trims surrounding whitespace and checks the field constraints.
func (in *Input) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	return validate.Struct(in)
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if field == "duedate" {
			field = "due_date"
		}
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "max":
			parts = append(parts, field+" must be at most "+fe.Param()+" characters")
		case "min":
			parts = append(parts, field+" must be at least "+fe.Param()+" characters")
		case "oneof":
			parts = append(parts, field+" must be one of: "+fe.Param())
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
