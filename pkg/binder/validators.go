package binder

import (
	"net/url"
	"path"

	"github.com/go-playground/validator/v10"
)

const locator = "locator"

// locatorValidator accepts absolute file paths and file:// URLs, which is
// how books and series are located on disk.
func locatorValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if path.IsAbs(value) {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return u.Scheme == "file" && path.IsAbs(u.Path)
}
