package validation

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductLookup is a mock implementation of ProductLookup.
type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockAddressOwnership is a mock implementation of AddressOwnership.
type MockAddressOwnership struct {
	mock.Mock
}

func (m *MockAddressOwnership) BelongsToUser(ctx context.Context, addressID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, addressID, userID)
	return args.Bool(0), args.Error(1)
}

// MockDiscountChecker is a mock implementation of DiscountChecker.
type MockDiscountChecker struct {
	mock.Mock
}

func (m *MockDiscountChecker) Validate(ctx context.Context, code string, userID *uuid.UUID, subtotal float64) (*model.DiscountValidation, error) {
	args := m.Called(ctx, code, userID, subtotal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountValidation), args.Error(1)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func inStock(id string, price float64, stock int) *model.Product {
	return &model.Product{ID: id, Name: "Product " + id, Price: price, Category: "General", Available: true, StockQuantity: intPtr(stock)}
}

func validGuestDraft() model.OrderDraft {
	return model.NewGuestDraft(model.GuestDetails{
		Customer: model.CustomerInfo{FullName: "Sipho Dlamini", Email: "sipho@example.co.za", Phone: "0821234567"},
		Address:  model.DeliveryAddress{Street: "5 Loop Street", City: "Cape Town", Province: "Western Cape", PostalCode: "8001"},
	}, model.OrderTotals{
		Items:          []model.DraftItem{{ProductID: "P001", Quantity: 2, UnitPrice: 50}},
		DeliveryMethod: "standard",
		DeliveryFee:    60,
		Subtotal:       100,
		Total:          160,
	})
}

func validAccountDraft(userID, addressID uuid.UUID) model.OrderDraft {
	return model.NewAuthenticatedDraft(model.AccountDetails{
		UserID:    userID.String(),
		AddressID: addressID.String(),
	}, model.OrderTotals{
		Items:          []model.DraftItem{{ProductID: "P001", Quantity: 1, UnitPrice: 100}},
		DeliveryMethod: "express",
		DeliveryFee:    99,
		Subtotal:       100,
		Total:          199,
	})
}

func codes(errs []model.ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}
