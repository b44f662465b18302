// package validation checks user input before it reaches the catalog.
//
// Validation is opt-in: the engine stores submissions unchecked unless a [Validator] is configured.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/shared"
	"github.com/go-playground/validator/v10"
)

// submission mirrors [models.Submission] with the rules a catalog entry must meet.
//
// Price is only bounded in length; no currency or precision is assumed.
type submission struct {
	Genre      string `validate:"max=64,printable"`
	ArtistName string `validate:"required,max=200"`
	Title      string `validate:"required,max=200"`
	AlbumName  string `validate:"max=200"`
	Price      string `validate:"max=32"`
}

// Validator wraps a go-playground validator configured for songcart input.
type Validator struct {
	validate *validator.Validate
}

// New creates a [Validator].
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(validate, "printable", printable)
	return &Validator{validate: validate}
}

func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: failed to register %q: %v", tag, err))
	}
}

// printable rejects strings containing control or other non-printing runes.
func printable(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// Submission checks a catalog submission. Failures wrap [shared.ErrInvalidInput] and name every offending field.
func (v *Validator) Submission(sub models.Submission) error {
	rules := submission{
		Genre:      sub.Genre,
		ArtistName: strings.TrimSpace(sub.ArtistName),
		Title:      strings.TrimSpace(sub.Title),
		AlbumName:  sub.AlbumName,
		Price:      sub.Price,
	}

	err := v.validate.Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(problems, "; "))
}

func describe(fe validator.FieldError) string {
	field := fieldNames[fe.Field()]
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "printable":
		return field + " must not contain control characters"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// fieldNames maps struct fields to the form parameters users submit them as.
var fieldNames = map[string]string{
	"Genre":      "genre",
	"ArtistName": "artistName",
	"Title":      "title",
	"AlbumName":  "albumName",
	"Price":      "price",
}
