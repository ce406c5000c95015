package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"agrichain/internal/domain"
)

// Violation is one failed input constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is returned in struct field order.
type Violations []Violation

func (v Violations) Error() string {
	return "usecase: invalid input: " + v.Messages()
}

// Messages joins the human-readable messages with a space.
func (v Violations) Messages() string {
	msgs := make([]string, 0, len(v))
	for _, item := range v {
		msgs = append(msgs, item.Message)
	}
	return strings.Join(msgs, " ")
}

// violationMessages is keyed "Struct.field.tag" first, then "field.tag".
var violationMessages = map[string]string{
	"location.min":       "Location must be at least 3 characters.",
	"soilProperties.min": "Soil properties must be at least 10 characters.",
	"message.min":        "Message must be at least 5 characters.",
	"cropName.min":       "Crop name must be at least 3 characters.",

	"photoDataUri.required":     "Must be a valid data URI.",
	"photoDataUri.imagedatauri": "Must be a valid data URI.",

	"cropTypes.required": "Crop types are required.",
	"cropTypes.notblank": "Crop types must not be blank.",
	"query.notblank":     "Query must not be blank.",

	"NewBatchInput.cropType.min":       "Crop type is required.",
	"NewBatchInput.location.min":       "Location is required.",
	"NewBatchInput.soilProperties.min": "Soil properties are required.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("imagedatauri", isImageDataURI); err != nil {
		panic(err)
	}
	return v
}

func isImageDataURI(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	m, err := domain.ParseDataURI(fl.Field().String())
	if err != nil {
		return false
	}
	return strings.HasPrefix(m.MIMEType, "image/") && len(m.Data) > 0
}

// validateInput checks in against its struct tags. It returns nil or Violations.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("usecase: validate input: %w", err)
	}
	out := make(Violations, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, Violation{
			Field:   fe.Field(),
			Message: violationMessage(fe),
		})
	}
	return out
}

func violationMessage(fe validator.FieldError) string {
	ns := stripIndex(fe.Namespace())
	if msg, ok := violationMessages[ns+"."+fe.Tag()]; ok {
		return msg
	}
	field := stripIndex(fe.Field())
	if msg, ok := violationMessages[field+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s.", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s.", field, fe.Tag())
}

func stripIndex(s string) string {
	if i := strings.IndexByte(s, '['); i != -1 {
		return s[:i]
	}
	return s
}
