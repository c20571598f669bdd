package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID, caller auth.Identity) (*model.OrderResponse, error) {
	args := m.Called(ctx, id, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func TestOrderHandler_GetByID(t *testing.T) {
	orderID := uuid.New()
	caller := auth.Identity{UserID: uuid.New(), Role: auth.RoleCustomer}

	tests := []struct {
		name           string
		pathID         string
		identity       *auth.Identity
		mockReturn     *model.OrderResponse
		mockError      error
		expectService  bool
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Owner reads order",
			pathID:         orderID.String(),
			identity:       &caller,
			mockReturn:     &model.OrderResponse{Order: model.Order{ID: orderID}},
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "No identity",
			pathID:         orderID.String(),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   model.ErrCodeUnauthorised,
		},
		{
			name:           "Malformed ID",
			pathID:         "ORD-1234",
			identity:       &caller,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeMissingField,
		},
		{
			name:           "Order not visible",
			pathID:         orderID.String(),
			identity:       &caller,
			mockError:      model.ErrOrderNotFound,
			expectService:  true,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeOrderNotFound,
		},
		{
			name:           "Service failure",
			pathID:         orderID.String(),
			identity:       &caller,
			mockError:      errors.New("failed to get order: timeout"),
			expectService:  true,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, zerolog.Nop())

			if tt.expectService {
				mockService.On("GetByID", mock.Anything, orderID, caller).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/orders/"+tt.pathID, nil)
			req.SetPathValue("id", tt.pathID)
			if tt.identity != nil {
				req = req.WithContext(auth.WithIdentity(req.Context(), *tt.identity))
			}
			w := httptest.NewRecorder()

			handler.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var body model.ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.expectedCode, body.Error)
			}
			mockService.AssertExpectations(t)
		})
	}
}
