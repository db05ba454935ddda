package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vzahanych/weather-compare/internal/config"
)

// knownProviders are the names accepted by the "providers" tag. Whether a
// known provider is enabled is decided later by the aggregator.
var knownProviders = []string{
	config.ProviderOpenMeteo,
	config.ProviderVisualCrossing,
	config.ProviderWeatherAPI,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("latitude", validateLatitude)
	_ = v.RegisterValidation("longitude", validateLongitude)
	_ = v.RegisterValidation("providers", validateProviders)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateLatitude(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90.0 && lat <= 90.0
}

func validateLongitude(fl validator.FieldLevel) bool {
	lon := fl.Field().Float()
	return lon >= -180.0 && lon <= 180.0
}

// validateProviders accepts a comma-separated list of provider names. Blank
// entries are ignored, matching how the handler splits the list.
func validateProviders(fl validator.FieldLevel) bool {
	for _, name := range strings.Split(fl.Field().String(), ",") {
		name = strings.TrimSpace(name)
		if name != "" && !isKnownProvider(name) {
			return false
		}
	}
	return true
}

func isKnownProvider(name string) bool {
	for _, known := range knownProviders {
		if name == known {
			return true
		}
	}
	return false
}

type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func FormatValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Tag:     fe.Tag(),
			Message: errorMessage(fe),
		})
	}
	return out
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "latitude":
		return fmt.Sprintf("%s must be a valid latitude between -90 and 90 degrees", fe.Field())
	case "longitude":
		return fmt.Sprintf("%s must be a valid longitude between -180 and 180 degrees", fe.Field())
	case "providers":
		return fmt.Sprintf("%s must list providers from: %s", fe.Field(), strings.Join(knownProviders, ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func ValidateStruct(s any) []ValidationError {
	if err := validate.Struct(s); err != nil {
		return FormatValidationErrors(err)
	}
	return nil
}
