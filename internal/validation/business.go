package validation

import (
	"fmt"
	"regexp"
	"strings"

	"storefront/internal/config"
	"storefront/internal/model"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rules are the configurable limits of the business rule validator.
type Rules struct {
	MaxOrderTotal          float64
	MinOrderTotal          float64
	LargeQuantityThreshold int
}

// DefaultRules returns the stock storefront limits.
func DefaultRules() Rules {
	return Rules{
		MaxOrderTotal:          10000,
		MinOrderTotal:          0,
		LargeQuantityThreshold: 10,
	}
}

// RulesFromConfig derives the rules from the checkout configuration.
func RulesFromConfig(cfg config.CheckoutConfig) Rules {
	return Rules{
		MaxOrderTotal:          cfg.MaxOrderTotal,
		MinOrderTotal:          cfg.MinOrderTotal,
		LargeQuantityThreshold: cfg.LargeQuantityThreshold,
	}
}

// IsValidEmail reports whether s has the shape local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateBusinessRules runs every rule that needs no external data. All
// checks run; none short-circuits.
func ValidateBusinessRules(draft model.OrderDraft, rules Rules) model.ValidationResult {
	result := model.NewValidationResult()

	if len(draft.Items) == 0 {
		result.AddError("cart_items", "Cart is empty", CodeCartEmpty)
	}

	for i, item := range draft.Items {
		field := fmt.Sprintf("cart_items[%d].quantity", i)
		if item.Quantity <= 0 {
			result.AddError(field, fmt.Sprintf("Invalid quantity for product %s", item.ProductID), CodeInvalidQuantity)
		} else if rules.LargeQuantityThreshold > 0 && item.Quantity > rules.LargeQuantityThreshold {
			result.AddWarning(field,
				fmt.Sprintf("Large quantity (%d) ordered for product %s", item.Quantity, item.ProductID),
				CodeLargeQuantity)
		}
	}

	if draft.Total <= 0 {
		result.AddError("total", "Order total must be greater than zero", CodeInvalidTotal)
	}
	if rules.MaxOrderTotal > 0 && draft.Total > rules.MaxOrderTotal {
		result.AddError("total",
			fmt.Sprintf("Order total R%.2f exceeds the maximum of R%.2f", draft.Total, rules.MaxOrderTotal),
			CodeMaximumOrderExceeded)
	}
	if rules.MinOrderTotal > 0 && draft.Total > 0 && draft.Total < rules.MinOrderTotal {
		result.AddError("total",
			fmt.Sprintf("Order total R%.2f is below the minimum of R%.2f", draft.Total, rules.MinOrderTotal),
			CodeMinimumOrderNotMet)
	}

	if blank(draft.DeliveryMethod) {
		result.AddError("delivery_method", "Delivery method is required", CodeMissingDeliveryMethod)
	}

	switch {
	case draft.IsGuest():
		validateGuestDetails(&result, draft.Guest)
	case draft.IsAuthenticated():
		if blank(draft.Account.UserID) {
			result.AddError("user_id", "User ID is required", CodeMissingUserID)
		}
		if blank(draft.Account.AddressID) {
			result.AddError("address_id", "Delivery address is required", CodeMissingAddressID)
		}
	}

	return result
}

func validateGuestDetails(result *model.ValidationResult, guest *model.GuestDetails) {
	c := guest.Customer
	a := guest.Address

	if blank(c.FullName) {
		result.AddError("full_name", "Full name is required", CodeMissingName)
	}
	if blank(c.Email) {
		result.AddError("email", "Email is required", CodeMissingEmail)
	} else if !IsValidEmail(strings.TrimSpace(c.Email)) {
		result.AddError("email", "Email address is invalid", CodeInvalidEmail)
	}
	if blank(c.Phone) {
		result.AddError("phone", "Phone number is required", CodeMissingPhone)
	}
	if blank(a.Street) {
		result.AddError("street", "Street address is required", CodeMissingStreet)
	}
	if blank(a.City) {
		result.AddError("city", "City is required", CodeMissingCity)
	}
	if blank(a.Province) {
		result.AddError("province", "Province is required", CodeMissingProvince)
	}
	if blank(a.PostalCode) {
		result.AddError("postal_code", "Postal code is required", CodeMissingPostalCode)
	}
}
