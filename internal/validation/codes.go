package validation

// Business rule codes.
const (
	CodeCartEmpty             = "CART_EMPTY"
	CodeInvalidQuantity       = "INVALID_QUANTITY"
	CodeLargeQuantity         = "LARGE_QUANTITY"
	CodeInvalidTotal          = "INVALID_TOTAL"
	CodeMaximumOrderExceeded  = "MAXIMUM_ORDER_EXCEEDED"
	CodeMinimumOrderNotMet    = "MINIMUM_ORDER_NOT_MET"
	CodeMissingDeliveryMethod = "MISSING_DELIVERY_METHOD"
	CodeMissingName           = "MISSING_NAME"
	CodeMissingEmail          = "MISSING_EMAIL"
	CodeMissingPhone          = "MISSING_PHONE"
	CodeMissingStreet         = "MISSING_STREET"
	CodeMissingCity           = "MISSING_CITY"
	CodeMissingProvince       = "MISSING_PROVINCE"
	CodeMissingPostalCode     = "MISSING_POSTAL_CODE"
	CodeInvalidEmail          = "INVALID_EMAIL"
	CodeMissingUserID         = "MISSING_USER_ID"
	CodeMissingAddressID      = "MISSING_ADDRESS_ID"
)

// Constraint codes.
const (
	CodeInvalidDeliveryMethod = "INVALID_DELIVERY_METHOD"
	CodeProductNotFound       = "PRODUCT_NOT_FOUND"
	CodeProductUnavailable    = "PRODUCT_UNAVAILABLE"
	CodeInsufficientStock     = "INSUFFICIENT_STOCK"
	CodePriceChanged          = "PRICE_CHANGED"
	CodeGuestNameRequired     = "GUEST_NAME_REQUIRED"
	CodeGuestEmailRequired    = "GUEST_EMAIL_REQUIRED"
	CodeGuestPhoneRequired    = "GUEST_PHONE_REQUIRED"
	CodeStreetRequired        = "STREET_REQUIRED"
	CodeCityRequired          = "CITY_REQUIRED"
	CodeProvinceRequired      = "PROVINCE_REQUIRED"
	CodePostalCodeRequired    = "POSTAL_CODE_REQUIRED"
	CodeInvalidEmailFormat    = "INVALID_EMAIL_FORMAT"
	CodeInvalidUser           = "INVALID_USER"
	CodeInvalidAddress        = "INVALID_ADDRESS"
	CodeInvalidDiscount       = "INVALID_DISCOUNT"
	CodeInvalidDeliveryFee    = "INVALID_DELIVERY_FEE"
	CodeTotalCalculation      = "TOTAL_CALCULATION_ERROR"
	CodeValidationError       = "VALIDATION_ERROR"
)

var guidance = map[string]string{
	CodeCartEmpty:             "Add at least one product to your cart before checking out.",
	CodeInvalidQuantity:       "Set a quantity of at least 1 for every item in your cart.",
	CodeLargeQuantity:         "You are ordering a large quantity. Please confirm this is intended.",
	CodeInvalidTotal:          "Your order total could not be calculated. Refresh your cart and try again.",
	CodeMaximumOrderExceeded:  "Orders above the maximum value must be split or placed with our sales team.",
	CodeMinimumOrderNotMet:    "Add more items to reach the minimum order value.",
	CodeMissingDeliveryMethod: "Choose a delivery method.",
	CodeInvalidDeliveryMethod: "Choose one of the delivery methods offered at checkout.",
	CodeMissingName:           "Enter your full name.",
	CodeGuestNameRequired:     "Enter your full name.",
	CodeMissingEmail:          "Enter your email address so we can send your order confirmation.",
	CodeGuestEmailRequired:    "Enter your email address so we can send your order confirmation.",
	CodeInvalidEmail:          "Check your email address, it should look like name@example.com.",
	CodeInvalidEmailFormat:    "Check your email address, it should look like name@example.com.",
	CodeMissingPhone:          "Enter a phone number our courier can reach you on.",
	CodeGuestPhoneRequired:    "Enter a phone number our courier can reach you on.",
	CodeMissingStreet:         "Enter your street address.",
	CodeStreetRequired:        "Enter your street address.",
	CodeMissingCity:           "Enter your city.",
	CodeCityRequired:          "Enter your city.",
	CodeMissingProvince:       "Select your province.",
	CodeProvinceRequired:      "Select your province.",
	CodeMissingPostalCode:     "Enter your postal code.",
	CodePostalCodeRequired:    "Enter your postal code.",
	CodeMissingUserID:         "Sign in again to continue checking out.",
	CodeInvalidUser:           "Sign in again to continue checking out.",
	CodeMissingAddressID:      "Select a delivery address.",
	CodeInvalidAddress:        "Select one of your saved delivery addresses.",
	CodeProductNotFound:       "An item in your cart is no longer sold. Remove it and try again.",
	CodeProductUnavailable:    "An item in your cart is currently unavailable. Remove it and try again.",
	CodeInsufficientStock:     "Reduce the quantity of items with limited stock.",
	CodePriceChanged:          "A price changed since you added the item. Review your cart before paying.",
	CodeInvalidDiscount:       "Check your discount code or remove it to continue.",
	CodeInvalidDeliveryFee:    "Choose your delivery method again to recalculate the delivery fee.",
	CodeTotalCalculation:      "Your order total is out of date. Refresh your cart and try again.",
	CodeValidationError:       "We could not verify your order right now. Please try again in a moment.",
}

const defaultGuidance = "Please review your order details and try again."

// Guidance returns the customer-facing remediation text for a code.
func Guidance(code string) string {
	if text, ok := guidance[code]; ok {
		return text
	}
	return defaultGuidance
}
