package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/valter-silva-au/todo/pkg/models"
)

// ErrInvalidTask is returned when a task fails validation on add or edit.
var ErrInvalidTask = errors.New("invalid task")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("taskname", validateTaskName)
	_ = validate.RegisterValidation("duedate", validateDueDate)
}

// validateTaskName rejects names that would break the line format.
func validateTaskName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if strings.TrimSpace(name) == "" {
		return false
	}
	return !strings.Contains(name, "|") && !strings.ContainsAny(name, "\r\n")
}

// validateDueDate accepts the sentinel or a DD-MM-YYYY calendar date.
func validateDueDate(fl validator.FieldLevel) bool {
	due := fl.Field().String()
	if due == "" || due == models.NoDueDate {
		return true
	}
	_, err := time.Parse(models.DateInputLayout, due)
	return err == nil
}

// ValidateTask checks a task before it enters the active list.
func ValidateTask(t models.Task) error {
	return validateFields(t, true, "Name", "Status", "DueDate")
}

// ValidateTaskUpdate checks only the fields an edit changed, so a task loaded
// with a legacy name or date can still be edited in its other fields.
func ValidateTaskUpdate(old, edited models.Task) error {
	var fields []string
	if edited.Name != old.Name {
		fields = append(fields, "Name")
	}
	statusChanged := edited.Status != old.Status
	if statusChanged {
		fields = append(fields, "Status")
	}
	if edited.DueDate != old.DueDate {
		fields = append(fields, "DueDate")
	}
	if len(fields) == 0 {
		return nil
	}
	return validateFields(edited, statusChanged, fields...)
}

func validateFields(t models.Task, checkStatus bool, fields ...string) error {
	if checkStatus && strings.ContainsAny(string(t.Status), "|\r\n") {
		return fmt.Errorf("%w: status %q contains a reserved character", ErrInvalidTask, t.Status)
	}
	err := validate.StructPartial(t, fields...)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(e.Field())))
		case "taskname":
			msgs = append(msgs, fmt.Sprintf("name %q must not be blank or contain '|' or line breaks", e.Value()))
		case "duedate":
			msgs = append(msgs, fmt.Sprintf("due date %q must be DD-MM-YYYY", e.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", e.Field(), e.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidTask, strings.Join(msgs, "; "))
}
