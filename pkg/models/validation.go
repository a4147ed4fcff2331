package models

import (
	"fmt"
	"strings"

	"github.com/shishobooks/shoka/pkg/errcodes"
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func blank(field string) error {
	return errcodes.ValidationError(field + " can't be blank.")
}

func invalid(field string, value interface{}) error {
	return errcodes.ValidationError(fmt.Sprintf("%s has an invalid value %v.", field, value))
}
