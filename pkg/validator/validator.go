package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// Report failures under the json field name so handlers can return
	// field-keyed error bodies directly.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.Field()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Fields renders validation failures as a field -> message map
func Fields(errs []*ErrorResponse) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		switch e.Tag {
		case "required":
			fields[e.FailedField] = "this field is required"
		case "email":
			fields[e.FailedField] = "must be a valid email address"
		case "min":
			fields[e.FailedField] = "must be at least " + e.Value + " characters"
		case "max":
			fields[e.FailedField] = "must be at most " + e.Value + " characters"
		default:
			fields[e.FailedField] = "failed validation on '" + e.Tag + "'"
		}
	}
	return fields
}
