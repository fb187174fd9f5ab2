package helper

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationMessages flattens validator.v10 errors into the {field: [msgs]} shape.
// Field names come from the json tag when RegisterJSONTagNames was applied.
func ValidationMessages(err error) map[string][]string {
	out := map[string][]string{}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		out["_"] = []string{err.Error()}
		return out
	}
	for _, fe := range ve {
		out[fe.Field()] = append(out[fe.Field()], tagMessage(fe))
	}
	return out
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "uuid", "uuid4":
		return "must be a valid uuid"
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	case "dive":
		return "contains an invalid item"
	default:
		return "failed on " + fe.Tag()
	}
}

// RegisterJSONTagNames makes validator report json field names.
func RegisterJSONTagNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}
