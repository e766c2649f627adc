package schedule

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/academia/backend/core"
)

var (
	clockTag  = "clock"
	clockText = "{0} must be a time in HH:MM format"

	weekdayTag  = "weekday"
	weekdayText = "{0} must be a day of the week"
)

// InitValidators registers the "clock" and "weekday" validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(clockTag, clockValidation)
	core.RegisterCustomTranslation(validate, translator, clockTag, clockText)

	_ = validate.RegisterValidation(weekdayTag, weekdayValidation)
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)
}

func clockValidation(fl validator.FieldLevel) bool {
	_, err := Normalize(fl.Field().String())
	return err == nil
}

// weekdayValidation accepts a day in any letter case.
func weekdayValidation(fl validator.FieldLevel) bool {
	_, err := ParseDay(fl.Field().String())
	return err == nil
}
