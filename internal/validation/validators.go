package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/benvon/cook-with-ai/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("meal_type", validateMealType); err != nil {
		panic(fmt.Sprintf("failed to register meal_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("meal_date", validateMealDate); err != nil {
		panic(fmt.Sprintf("failed to register meal_date validator: %v", err))
	}
	if err := Validate.RegisterValidation("message_role", validateMessageRole); err != nil {
		panic(fmt.Sprintf("failed to register message_role validator: %v", err))
	}
}

func validateMealType(fl validator.FieldLevel) bool {
	return ValidateMealType(fl.Field().String()) == nil
}

func validateMealDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.MealDateLayout, fl.Field().String())
	return err == nil
}

func validateMessageRole(fl validator.FieldLevel) bool {
	return models.MessageRole(fl.Field().String()).Valid()
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateMealType validates a MealType string value
func ValidateMealType(value string) error {
	switch models.MealType(value) {
	case models.MealTypeBreakfast, models.MealTypeLunch, models.MealTypeDinner:
		return nil
	default:
		return fmt.Errorf("invalid meal_type: %s (must be 'breakfast', 'lunch', or 'dinner')", value)
	}
}

// Struct validates v and flattens validator errors into one readable message
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "meal_type":
		return fmt.Sprintf("%s must be breakfast, lunch, or dinner", field)
	case "meal_date":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "message_role":
		return fmt.Sprintf("%s must be user or assistant", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
