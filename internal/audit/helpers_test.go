package audit

import (
	"context"
	"sync"
	"time"

	"storefront/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Append(ctx context.Context, entry *model.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// recordingSender collects dispatched alerts synchronously.
type recordingSender struct {
	mu     sync.Mutex
	alerts []Alert
}

func (s *recordingSender) Dispatch(_ context.Context, alert Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
}

func (s *recordingSender) sent() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Alert(nil), s.alerts...)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func guestDraft() model.OrderDraft {
	return model.NewGuestDraft(model.GuestDetails{
		Customer: model.CustomerInfo{FullName: "Lerato Mokoena", Email: "lerato@example.co.za", Phone: "0821234567"},
		Address:  model.DeliveryAddress{Street: "12 Jan Smuts Ave", City: "Johannesburg", Province: "Gauteng", PostalCode: "2196"},
	}, model.OrderTotals{
		Items:          []model.DraftItem{{ProductID: "P001", Quantity: 1, UnitPrice: 100}},
		DeliveryMethod: "standard",
		DeliveryFee:    60,
		Subtotal:       100,
		Total:          160,
	})
}

func finding(code string, severity model.Severity) model.ValidationError {
	return model.ValidationError{Field: "general", Message: code, Code: code, Severity: severity}
}
