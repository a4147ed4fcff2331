package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func plural(word, n string) string {
	if n == "1" {
		return word
	}
	return word + "s"
}

// boundMessage words a min or max failure for the kind of value that failed.
func boundMessage(field, comparison string, err validator.FieldError) string {
	//exhaustive:ignore
	switch err.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s %s", field, comparison, err.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("%q length must be %s %s %s", field, comparison, err.Param(), plural("element", err.Param()))
	default:
		return fmt.Sprintf("%q length must be %s %s %s", field, comparison, err.Param(), plural("character", err.Param()))
	}
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "gt":
		return fmt.Sprintf("%q must be greater than %s", field, err.Param())
	case "max":
		return boundMessage(field, "less than or equal to", err)
	case "min":
		return boundMessage(field, "greater than or equal to", err)
	case "ne":
		return fmt.Sprintf("%q can't be %q", field, err.Param())
	case "oneof":
		valids := []string{}
		for _, p := range strings.Fields(err.Param()) {
			valids = append(valids, fmt.Sprintf("%q", p))
		}
		return fmt.Sprintf("%q must be one of the following: %s", field, strings.Join(valids, ", "))
	case "required":
		return fmt.Sprintf("%q is required", field)
	case locator:
		return fmt.Sprintf("%q must be an absolute path or a file:// URL", field)
	default:
		return fmt.Sprintf("%q failed the %q check", field, err.Tag())
	}
}
