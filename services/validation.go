package services

import (
	"regexp"
	"strings"

	"lunch-menu/models"
)

// FieldRule is one named check on the order form. Required rejects an empty
// value; Pattern must match the whole value when it is not empty.
type FieldRule struct {
	Field    string
	Required bool
	Pattern  *regexp.Regexp
	Message  string
	Value    func(models.OrderForm) string
}

// OrderFormRules run in order; the first failure is reported.
var OrderFormRules = []FieldRule{
	{
		Field:    "name",
		Required: true,
		Pattern:  regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ\s]+$`),
		Message:  MsgInvalidName,
		Value:    func(f models.OrderForm) string { return f.Name },
	},
	{
		Field:    "registration",
		Required: true,
		Pattern:  regexp.MustCompile(`^[0-9]{4}$`),
		Message:  MsgInvalidRegistration,
		Value:    func(f models.OrderForm) string { return f.Registration },
	},
	{
		Field:   "observations",
		Pattern: regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ0-9\s.,!?-]*$`),
		Message: MsgInvalidObservations,
		Value:   func(f models.OrderForm) string { return f.Observations },
	},
}

// NormalizeForm trims surrounding whitespace from every field.
func NormalizeForm(f models.OrderForm) models.OrderForm {
	return models.OrderForm{
		Name:         strings.TrimSpace(f.Name),
		Registration: strings.TrimSpace(f.Registration),
		Observations: strings.TrimSpace(f.Observations),
	}
}

// ValidateOrder checks the form against rules, then that the cart holds at
// least one line.
func ValidateOrder(rules []FieldRule, form models.OrderForm, cartLen int) error {
	for _, r := range rules {
		v := r.Value(form)
		if v == "" {
			if r.Required {
				return &ValidationError{Field: r.Field, Message: r.Message}
			}
			continue
		}
		if r.Pattern != nil && !r.Pattern.MatchString(v) {
			return &ValidationError{Field: r.Field, Message: r.Message}
		}
	}
	if cartLen == 0 {
		return &ValidationError{Field: "cart", Message: MsgEmptyCart}
	}
	return nil
}
