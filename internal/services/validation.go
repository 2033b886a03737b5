package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"pos/internal/models"

	"github.com/go-playground/validator/v10"
)

// Validator checks request and record structs and reports failures as
// *models.ValidationError keyed by JSON field path.
type Validator struct {
	validate    *validator.Validate
	imagePrefix string
}

// NewValidator creates a Validator whose `trustedimage` tag accepts URLs
// that start with imagePrefix and have something after it.
func NewValidator(imagePrefix string) *Validator {
	v := &Validator{
		validate:    validator.New(),
		imagePrefix: imagePrefix,
	}
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.validate.RegisterValidation("trustedimage", v.trustedImage)
	return v
}

func (v *Validator) trustedImage(fl validator.FieldLevel) bool {
	url := fl.Field().String()
	return strings.HasPrefix(url, v.imagePrefix) && len(url) > len(v.imagePrefix)
}

// Struct validates any tagged struct.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validation could not run: %w", err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[fieldPath(e.Namespace())] = message(e)
	}
	return &models.ValidationError{Fields: fields}
}

// Product validates a record before it is written.
func (v *Validator) Product(p *models.Product) error {
	return v.Struct(p)
}

// fieldPath drops the leading struct name from a namespace such as
// "Product.images[0]".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "min":
		if e.Kind() == reflect.Slice {
			return "must contain at least " + e.Param() + " item(s)"
		}
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "oneof":
		return "must be one of: " + e.Param()
	case "numeric":
		return "must contain digits only"
	case "trustedimage":
		return fmt.Sprintf("%v is not a trusted image URL", e.Value())
	default:
		return fmt.Sprintf("failed on the '%s' tag", e.Tag())
	}
}
