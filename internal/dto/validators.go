package dto

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var rutPattern = regexp.MustCompile(`^\d{1,8}-[\dkK]$`)

// ValidRUT reports whether s is a well-formed Chilean RUT with a correct
// modulo-11 check digit. The expected form is "12345678-9" (no dots).
func ValidRUT(s string) bool {
	if !rutPattern.MatchString(s) {
		return false
	}
	parts := strings.SplitN(s, "-", 2)
	body, dv := parts[0], strings.ToUpper(parts[1])

	sum := 0
	factor := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}

	expected := 11 - sum%11
	switch expected {
	case 11:
		return dv == "0"
	case 10:
		return dv == "K"
	default:
		return dv == string(rune('0'+expected))
	}
}

// RegisterCustomValidations registers the domain-specific binding tags with
// gin's validator engine. Call once at startup.
func RegisterCustomValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
			return ValidRUT(fl.Field().String())
		})
	}
}
