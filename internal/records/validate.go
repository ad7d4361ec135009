package records

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/go-playground/validator/v10"
)

// submissionRules adds the mandatory-field rules to a form submission
// without putting validate tags on the transport type itself.
type submissionRules struct {
	Name  string `json:"name"  validate:"required"`
	Reg   string `json:"reg"   validate:"required"`
	Marks string `json:"marks" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name ("reg") rather than the Go name
	// ("Reg"), since that is what the user sees on the form.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Parse trims and validates a form submission and turns it into a
// record. All failures wrap ErrValidation.
func Parse(sub types.Submission) (types.Student, error) {
	sub = sub.Trimmed()

	rules := submissionRules{Name: sub.Name, Reg: sub.Reg, Marks: string(sub.Marks)}
	if err := validate.Struct(rules); err != nil {
		return types.Student{}, validationError(err)
	}

	marks, err := strconv.Atoi(string(sub.Marks))
	if err != nil {
		return types.Student{}, fmt.Errorf("%w: field marks must be a whole number between 0 and 100", ErrValidation)
	}

	student := types.Student{
		Name:  sub.Name,
		Reg:   sub.Reg,
		Dept:  sub.Dept,
		Year:  sub.Year,
		Marks: types.Marks(marks),
	}

	if err := check(student); err != nil {
		return types.Student{}, err
	}

	return student, nil
}

// check runs the struct rules declared on types.Student.
func check(student types.Student) error {
	if err := validate.Struct(student); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts validator output into one human-readable
// message wrapping ErrValidation.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be between 0 and 100", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, ", "))
}
