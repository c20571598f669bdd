package validation

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var priceTolerance = decimal.RequireFromString("0.01")

// ProductLookup fetches authoritative product data.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// AddressOwnership checks that a saved address belongs to a user.
type AddressOwnership interface {
	BelongsToUser(ctx context.Context, addressID, userID uuid.UUID) (bool, error)
}

// DiscountChecker runs the remote discount-code validation procedure.
type DiscountChecker interface {
	Validate(ctx context.Context, code string, userID *uuid.UUID, subtotal float64) (*model.DiscountValidation, error)
}

// ConstraintValidator runs the checks that need authoritative data.
type ConstraintValidator struct {
	products        ProductLookup
	addresses       AddressOwnership
	discounts       DiscountChecker
	deliveryMethods []string
	logger          zerolog.Logger
}

// NewConstraintValidator creates a constraint validator accepting the given
// delivery methods.
func NewConstraintValidator(
	products ProductLookup,
	addresses AddressOwnership,
	discounts DiscountChecker,
	deliveryMethods []string,
	logger zerolog.Logger,
) *ConstraintValidator {
	return &ConstraintValidator{
		products:        products,
		addresses:       addresses,
		discounts:       discounts,
		deliveryMethods: deliveryMethods,
		logger:          logger.With().Str("validator", "constraints").Logger(),
	}
}

// ValidateDatabaseConstraints checks the draft against stored products,
// addresses and discount codes. Infrastructure failures and panics never
// escape: they are logged and reported as a single VALIDATION_ERROR.
func (v *ConstraintValidator) ValidateDatabaseConstraints(ctx context.Context, draft model.OrderDraft) (result model.ValidationResult) {
	result = model.NewValidationResult()

	defer func() {
		if r := recover(); r != nil {
			v.logger.Error().
				Interface("panic", r).
				Str("draft_kind", string(draft.Kind)).
				Msg("panic during constraint validation")
			result.AddError("general", "Unable to validate order. Please try again.", CodeValidationError)
		}
	}()

	if err := v.check(ctx, draft, &result); err != nil {
		v.logger.Error().
			Err(err).
			Str("draft_kind", string(draft.Kind)).
			Msg("constraint validation failed")
		result.AddError("general", "Unable to validate order. Please try again.", CodeValidationError)
	}

	return result
}

// check returns an error only for lookup failures, which abort the
// remaining checks.
func (v *ConstraintValidator) check(ctx context.Context, draft model.OrderDraft, result *model.ValidationResult) error {
	if !slices.Contains(v.deliveryMethods, draft.DeliveryMethod) {
		result.AddError("delivery_method",
			fmt.Sprintf("Invalid delivery method: %s", draft.DeliveryMethod),
			CodeInvalidDeliveryMethod)
	}

	if len(draft.Items) == 0 {
		result.AddError("cart_items", "Cart is empty", CodeCartEmpty)
	}

	for i, item := range draft.Items {
		if err := v.checkItem(ctx, i, item, result); err != nil {
			return err
		}
	}

	switch {
	case draft.IsGuest():
		checkGuestDetails(result, draft.Guest)
	case draft.IsAuthenticated():
		if err := v.checkAccount(ctx, draft.Account, result); err != nil {
			return err
		}
	}

	if draft.HasDiscountCode() {
		v.checkDiscount(ctx, draft, result)
	}

	if sum, ok := itemsSubtotal(draft.Items); ok {
		claimed := decimal.NewFromFloat(draft.Subtotal)
		if claimed.Sub(sum).Abs().GreaterThan(priceTolerance) {
			result.AddError("subtotal",
				fmt.Sprintf("Subtotal mismatch: items add up to R%s, got R%s", sum.StringFixed(2), claimed.StringFixed(2)),
				CodeTotalCalculation)
		}
	}

	if draft.Total <= 0 {
		result.AddError("total", "Order total must be greater than zero", CodeInvalidTotal)
	}
	if draft.DeliveryFee < 0 {
		result.AddError("delivery_fee", "Delivery fee cannot be negative", CodeInvalidDeliveryFee)
	}

	expected := decimal.NewFromFloat(draft.Subtotal).
		Add(decimal.NewFromFloat(draft.DeliveryFee)).
		Sub(decimal.NewFromFloat(draft.DiscountAmount))
	actual := decimal.NewFromFloat(draft.Total)
	if actual.Sub(expected).Abs().GreaterThan(priceTolerance) {
		result.AddError("total",
			fmt.Sprintf("Total mismatch: expected R%s, got R%s", expected.StringFixed(2), actual.StringFixed(2)),
			CodeTotalCalculation)
	}

	return nil
}

func (v *ConstraintValidator) checkItem(ctx context.Context, i int, item model.DraftItem, result *model.ValidationResult) error {
	field := fmt.Sprintf("cart_items[%d]", i)

	product, err := v.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("failed to look up product %s: %w", item.ProductID, err)
	}
	if product == nil {
		result.AddError(field+".product_id",
			fmt.Sprintf("Product %s not found", item.ProductID),
			CodeProductNotFound)
		return nil
	}

	if !product.Available {
		result.AddError(field+".product_id",
			fmt.Sprintf("%s is no longer available", product.Name),
			CodeProductUnavailable)
	}

	if product.TracksStock() && *product.StockQuantity < item.Quantity {
		result.AddError(field+".quantity",
			fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d",
				product.Name, *product.StockQuantity, item.Quantity),
			CodeInsufficientStock)
	}

	current := decimal.NewFromFloat(product.Price)
	captured := decimal.NewFromFloat(item.UnitPrice)
	if current.Sub(captured).Abs().GreaterThan(priceTolerance) {
		result.AddWarning(field+".price",
			fmt.Sprintf("Price for %s changed from R%s to R%s",
				product.Name, captured.StringFixed(2), current.StringFixed(2)),
			CodePriceChanged)
	}

	if item.Quantity <= 0 {
		result.AddError(field+".quantity",
			fmt.Sprintf("Invalid quantity for %s", product.Name),
			CodeInvalidQuantity)
	}

	return nil
}

// itemsSubtotal sums the captured line prices. It reports false when the
// cart is empty or holds a non-positive quantity, which are reported on
// their own.
func itemsSubtotal(items []model.DraftItem) (decimal.Decimal, bool) {
	if len(items) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return decimal.Zero, false
		}
		sum = sum.Add(decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum, true
}

func checkGuestDetails(result *model.ValidationResult, guest *model.GuestDetails) {
	c := guest.Customer
	a := guest.Address

	if blank(c.FullName) {
		result.AddError("full_name", "Guest name is required", CodeGuestNameRequired)
	}
	if blank(c.Email) {
		result.AddError("email", "Guest email is required", CodeGuestEmailRequired)
	} else if !IsValidEmail(strings.TrimSpace(c.Email)) {
		result.AddError("email", "Guest email format is invalid", CodeInvalidEmailFormat)
	}
	if blank(c.Phone) {
		result.AddError("phone", "Guest phone is required", CodeGuestPhoneRequired)
	}
	if blank(a.Street) {
		result.AddError("street", "Street address is required", CodeStreetRequired)
	}
	if blank(a.City) {
		result.AddError("city", "City is required", CodeCityRequired)
	}
	if blank(a.Province) {
		result.AddError("province", "Province is required", CodeProvinceRequired)
	}
	if blank(a.PostalCode) {
		result.AddError("postal_code", "Postal code is required", CodePostalCodeRequired)
	}
}

func (v *ConstraintValidator) checkAccount(ctx context.Context, account *model.AccountDetails, result *model.ValidationResult) error {
	draftUser, userErr := uuid.Parse(strings.TrimSpace(account.UserID))
	identity, authenticated := auth.IdentityFromContext(ctx)

	if !authenticated || userErr != nil || identity.UserID != draftUser {
		result.AddError("user_id", "User does not match the signed-in account", CodeInvalidUser)
	}

	addressID, err := uuid.Parse(strings.TrimSpace(account.AddressID))
	if err != nil {
		result.AddError("address_id", "Delivery address is invalid", CodeInvalidAddress)
		return nil
	}

	// Ownership is checked against the signed-in user when there is one.
	owner := draftUser
	if authenticated {
		owner = identity.UserID
	} else if userErr != nil {
		result.AddError("address_id", "Delivery address does not belong to this account", CodeInvalidAddress)
		return nil
	}

	owned, err := v.addresses.BelongsToUser(ctx, addressID, owner)
	if err != nil {
		return fmt.Errorf("failed to check address ownership: %w", err)
	}
	if !owned {
		result.AddError("address_id", "Delivery address does not belong to this account", CodeInvalidAddress)
	}

	return nil
}

// checkDiscount reports any failure of the remote call as INVALID_DISCOUNT
// rather than aborting validation.
func (v *ConstraintValidator) checkDiscount(ctx context.Context, draft model.OrderDraft, result *model.ValidationResult) {
	code := strings.TrimSpace(*draft.DiscountCode)

	var userID *uuid.UUID
	if draft.IsAuthenticated() {
		if id, err := uuid.Parse(draft.Account.UserID); err == nil {
			userID = &id
		}
	}

	resp, err := v.discounts.Validate(ctx, code, userID, draft.Subtotal)
	if err != nil {
		v.logger.Warn().Err(err).Str("code", code).Msg("discount validation call failed")
		result.AddError("discount_code", "Unable to validate discount code", CodeInvalidDiscount)
		return
	}
	if resp == nil || !resp.Valid {
		message := "Invalid discount code"
		if resp != nil && resp.Error != nil && *resp.Error != "" {
			message = *resp.Error
		}
		result.AddError("discount_code", message, CodeInvalidDiscount)
		return
	}

	if resp.DiscountAmount != nil {
		granted := decimal.NewFromFloat(*resp.DiscountAmount)
		claimed := decimal.NewFromFloat(draft.DiscountAmount)
		if granted.Sub(claimed).Abs().GreaterThan(priceTolerance) {
			result.AddError("discount_amount",
				fmt.Sprintf("Discount amount mismatch: code grants R%s, order claims R%s",
					granted.StringFixed(2), claimed.StringFixed(2)),
				CodeInvalidDiscount)
		}
	}
}
