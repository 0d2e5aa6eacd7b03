package utils

import (
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the "step" tag registered.
// `validate:"step=0.5"` accepts a float that is a whole multiple of 0.5.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("step", ValidateStep)
	return v
}

// ValidateStep implements the "step" tag.
func ValidateStep(fl validator.FieldLevel) bool {
	step, err := strconv.ParseFloat(fl.Param(), 64)
	if err != nil || step <= 0 {
		return false
	}
	n := fl.Field().Float() / step
	return math.Abs(n-math.Round(n)) < 1e-9
}
