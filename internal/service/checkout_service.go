package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/audit"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/ratelimit"
	"storefront/internal/repository"
	"storefront/internal/validation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	referenceLength            = 12
	referenceAttempts          = 3
	paymentReferenceConstraint = "orders_payment_reference_key"
)

// DraftValidator validates an order draft.
type DraftValidator interface {
	Validate(ctx context.Context, draft model.OrderDraft) model.ValidationResult
}

// CheckoutDeps groups the collaborators of the checkout service.
type CheckoutDeps struct {
	Orders    repository.OrderRepository
	Addresses repository.AddressRepository
	Carts     repository.CartRepository
	Discounts repository.DiscountRepository
	Validator DraftValidator
	Audit     *audit.Factory
	Limiter   ratelimit.Limiter
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	deps    CheckoutDeps
	cfg     config.CheckoutConfig
	payment config.PaymentConfig
	logger  zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(deps CheckoutDeps, cfg config.CheckoutConfig, payment config.PaymentConfig, logger zerolog.Logger) CheckoutService {
	return &checkoutService{
		deps:    deps,
		cfg:     cfg,
		payment: payment,
		logger:  logger.With().Str("service", "checkout").Logger(),
	}
}

// attempt carries the per-request state of one checkout.
type attempt struct {
	kind   model.DraftKind
	draft  model.OrderDraft
	client string
	audit  *audit.Logger
	meta   *model.AuditContext
}

func (s *checkoutService) newAttempt(draft model.OrderDraft, meta model.RequestMeta) *attempt {
	client := meta.IPAddress
	if client == "" {
		client = draft.UserID()
	}
	if client == "" {
		client = "unknown"
	}

	return &attempt{
		kind:   draft.Kind,
		draft:  draft,
		client: client,
		audit:  s.deps.Audit.NewLogger(),
		meta: &model.AuditContext{
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
			Extra:     map[string]any{"checkout": string(draft.Kind)},
		},
	}
}

// GuestCheckout places an order for a customer without an account.
func (s *checkoutService) GuestCheckout(ctx context.Context, req *model.GuestCheckoutRequest, meta model.RequestMeta) (*model.CheckoutResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("checkout request is nil")
	}
	return s.place(ctx, s.newAttempt(req.Draft(), meta))
}

// Checkout places an order for the signed-in customer on ctx.
func (s *checkoutService) Checkout(ctx context.Context, req *model.CheckoutRequest, meta model.RequestMeta) (*model.CheckoutResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("checkout request is nil")
	}
	if _, ok := auth.IdentityFromContext(ctx); !ok {
		return nil, model.ErrUnauthorised
	}
	return s.place(ctx, s.newAttempt(req.Draft(), meta))
}

func (s *checkoutService) place(ctx context.Context, a *attempt) (*model.CheckoutResponse, error) {
	log := s.logger.With().
		Str("session_id", a.audit.SessionID()).
		Str("kind", string(a.kind)).
		Logger()

	if !s.allowAttempt(ctx, a, log) {
		s.count(a, "throttled")
		return nil, model.ErrTooManyAttempts
	}

	result := s.deps.Validator.Validate(ctx, a.draft)
	if !result.IsValid {
		findings := append(append([]model.ValidationError{}, result.Errors...), result.Warnings...)
		a.audit.LogValidationViolation(ctx, a.draft, findings, a.meta)
		s.trackFailure(ctx, a, result, log)

		log.Info().
			Int("errors", len(result.Errors)).
			Int("warnings", len(result.Warnings)).
			Msg("checkout rejected by validation")
		s.count(a, "rejected")
		return nil, &model.ValidationFailedError{Result: result}
	}

	a.audit.LogValidationSuccess(ctx, a.draft, result.Warnings)

	order, items, err := s.buildOrder(ctx, a.draft)
	if err != nil {
		return nil, s.fail(ctx, a, err, log)
	}

	for try := 1; ; try++ {
		err = s.persist(ctx, a.draft, order, items)
		if err == nil {
			break
		}
		if !isReferenceCollision(err) || try == referenceAttempts {
			return nil, s.fail(ctx, a, err, log)
		}
		log.Warn().Str("reference", order.PaymentReference).Msg("payment reference already taken, regenerating")
		order.PaymentReference = s.reference(uuid.New())
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Str("reference", order.PaymentReference).
		Float64("total", order.Total).
		Msg("order placed")
	s.count(a, "placed")

	return &model.CheckoutResponse{
		OrderID:  order.ID,
		Status:   order.Status,
		Total:    order.Total,
		Warnings: result.Warnings,
		Payment:  s.instructions(order),
	}, nil
}

// allowAttempt counts the attempt against the client's budget. Limiter
// failures let the attempt through.
func (s *checkoutService) allowAttempt(ctx context.Context, a *attempt, log zerolog.Logger) bool {
	decision, err := s.deps.Limiter.Allow(ctx, "checkout:attempts:"+a.client, s.cfg.AttemptLimit, s.cfg.FailureWindow)
	if err != nil {
		log.Warn().Err(err).Msg("attempt limiter unavailable")
		return true
	}
	if decision.Allowed {
		return true
	}

	a.audit.LogSuspiciousActivity(ctx,
		fmt.Sprintf("Checkout attempt limit of %d per %s exceeded by %s", s.cfg.AttemptLimit, s.cfg.FailureWindow, a.client),
		a.draft, a.meta)
	log.Warn().Str("client", a.client).Msg("checkout attempt limit exceeded")
	return false
}

// trackFailure raises suspicious activity once the client's failure budget
// is spent or the submitted total does not add up.
func (s *checkoutService) trackFailure(ctx context.Context, a *attempt, result model.ValidationResult, log zerolog.Logger) {
	decision, err := s.deps.Limiter.Allow(ctx, "checkout:failures:"+a.client, s.cfg.FailureLimit, s.cfg.FailureWindow)
	if err != nil {
		log.Warn().Err(err).Msg("failure limiter unavailable")
	}

	var description string
	switch {
	case err == nil && !decision.Allowed:
		description = fmt.Sprintf("%d failed checkouts within %s from %s", s.cfg.FailureLimit, s.cfg.FailureWindow, a.client)
	case result.HasCode(validation.CodeTotalCalculation):
		description = "Submitted order total does not match its line items"
	default:
		return
	}

	a.audit.LogSuspiciousActivity(ctx, description, a.draft, a.meta)
}

func (s *checkoutService) buildOrder(ctx context.Context, draft model.OrderDraft) (*model.Order, []model.OrderItem, error) {
	now := time.Now().UTC()
	order := &model.Order{
		ID:             uuid.New(),
		DeliveryMethod: draft.DeliveryMethod,
		DeliveryFee:    draft.DeliveryFee,
		Subtotal:       draft.Subtotal,
		DiscountAmount: draft.DiscountAmount,
		Total:          draft.Total,
		Status:         model.OrderStatusPendingPayment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	order.PaymentReference = s.reference(order.ID)

	if draft.HasDiscountCode() {
		code := strings.ToUpper(strings.TrimSpace(*draft.DiscountCode))
		order.DiscountCode = &code
	}

	switch {
	case draft.IsGuest():
		c, addr := draft.Guest.Customer, draft.Guest.Address
		order.CustomerName = trimmed(c.FullName)
		order.CustomerEmail = trimmed(strings.ToLower(c.Email))
		order.CustomerPhone = trimmed(c.Phone)
		order.Street = trimmed(addr.Street)
		order.City = trimmed(addr.City)
		order.Province = trimmed(addr.Province)
		order.PostalCode = trimmed(addr.PostalCode)

	case draft.IsAuthenticated():
		userID, err := uuid.Parse(strings.TrimSpace(draft.Account.UserID))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse user id: %w", err)
		}
		addressID, err := uuid.Parse(strings.TrimSpace(draft.Account.AddressID))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse address id: %w", err)
		}

		address, err := s.deps.Addresses.GetByID(ctx, addressID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load delivery address: %w", err)
		}
		if address == nil {
			return nil, nil, errAddressGone
		}

		order.UserID = &userID
		order.AddressID = &addressID
		order.Street = &address.Street
		order.City = &address.City
		order.Province = &address.Province
		order.PostalCode = &address.PostalCode
	}

	items := make([]model.OrderItem, len(draft.Items))
	for i, item := range draft.Items {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	return order, items, nil
}

var errAddressGone = errors.New("delivery address no longer exists")

// persist writes the order, its items, the discount redemption and clears
// the customer's cart in one transaction.
func (s *checkoutService) persist(ctx context.Context, draft model.OrderDraft, order *model.Order, items []model.OrderItem) (err error) {
	tx, err := s.deps.Orders.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Str("order_id", order.ID.String()).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.deps.Orders.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	if err = s.deps.Orders.CreateOrderItems(ctx, tx, items); err != nil {
		return fmt.Errorf("failed to create order items: %w", err)
	}
	if order.DiscountCode != nil {
		if err = s.deps.Discounts.Redeem(ctx, tx, *order.DiscountCode, order.ID, order.UserID); err != nil {
			return err
		}
	}
	if draft.IsAuthenticated() && order.UserID != nil {
		if err = s.deps.Carts.ClearByUser(ctx, tx, *order.UserID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// fail maps a post-validation error to the caller-facing error. Refusals by
// the database are audited as blocked orders.
func (s *checkoutService) fail(ctx context.Context, a *attempt, err error, log zerolog.Logger) error {
	if blocked, reason := blockedReason(err); blocked {
		a.audit.LogOrderBlocked(ctx, a.draft, reason, a.meta)
		log.Warn().Err(err).Str("reason", reason).Msg("order blocked by database")
		s.count(a, "blocked")
		return model.ErrOrderBlocked
	}

	log.Error().Err(err).Msg("failed to place order")
	s.count(a, "error")
	return err
}

func blockedReason(err error) (bool, string) {
	switch {
	case isReferenceCollision(err):
		return false, ""
	case errors.Is(err, repository.ErrDiscountExhausted):
		return true, "Discount code usage limit reached"
	case errors.Is(err, errAddressGone):
		return true, "Delivery address no longer exists"
	case repository.IsConstraintViolation(err):
		return true, fmt.Sprintf("Database rejected order (%s)", repository.ConstraintName(err))
	default:
		return false, ""
	}
}

// isReferenceCollision reports whether the order was refused only because
// its payment reference is already in use.
func isReferenceCollision(err error) bool {
	return repository.IsConstraintViolation(err) &&
		repository.ConstraintName(err) == paymentReferenceConstraint
}

// reference derives a 12 character EFT reference from id.
func (s *checkoutService) reference(id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return s.payment.ReferencePrefix + strings.ToUpper(hex[:referenceLength])
}

func (s *checkoutService) instructions(order *model.Order) model.PaymentInstructions {
	return model.PaymentInstructions{
		BankName:      s.payment.BankName,
		AccountHolder: s.payment.AccountHolder,
		AccountNumber: s.payment.AccountNumber,
		BranchCode:    s.payment.BranchCode,
		Reference:     order.PaymentReference,
		Amount:        order.Total,
		Message: fmt.Sprintf(
			"Please pay R%.2f by EFT using reference %s. Your order is processed once the payment reflects.",
			order.Total, order.PaymentReference),
	}
}

func (s *checkoutService) count(a *attempt, outcome string) {
	metrics.CheckoutsTotal.WithLabelValues(string(a.kind), outcome).Inc()
}

func trimmed(v string) *string {
	t := strings.TrimSpace(v)
	return &t
}
