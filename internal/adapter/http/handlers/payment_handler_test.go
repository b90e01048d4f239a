package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pagamentos_xpto/internal/adapter/http/handlers/mocks"
	"pagamentos_xpto/internal/domain/entities"
	"pagamentos_xpto/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func testPayment() *entities.Payment {
	now := time.Now().UTC()
	return &entities.Payment{
		ID:            "pay-1",
		CPF:           "52998224725",
		Description:   "order 42",
		Amount:        120.5,
		PaymentMethod: entities.PaymentMethodCreditCard,
		Status:        entities.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestPaymentHandler_CreatePayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments", h.CreatePayment)

		req := httptest.NewRequest(http.MethodPost, "/v1/payments", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments", h.CreatePayment)

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(usecase.CreatePaymentOutput{}, &entities.ValidationError{Reason: "cpf is invalid"})

		req := httptest.NewRequest(http.MethodPost, "/v1/payments",
			bytes.NewBufferString(`{"cpf":"123","description":"x","amount":10,"payment_method":"PIX"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success returns payment and workflow id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments", h.CreatePayment)

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(usecase.CreatePaymentOutput{Payment: testPayment(), WorkflowID: "payment-pay-1-7"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/payments",
			bytes.NewBufferString(`{"cpf":"52998224725","description":"order 42","amount":120.5,"payment_method":"CREDIT_CARD"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["id"] != "pay-1" || body["workflow_id"] != "payment-pay-1-7" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("workflow start failure still returns the payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/payments", h.CreatePayment)

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(usecase.CreatePaymentOutput{Payment: testPayment()}, errors.New("engine down"))

		req := httptest.NewRequest(http.MethodPost, "/v1/payments",
			bytes.NewBufferString(`{"cpf":"52998224725","description":"order 42","amount":120.5,"payment_method":"CREDIT_CARD"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["id"] != "pay-1" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
		if _, ok := body["workflow_id"]; ok {
			t.Fatalf("expected no workflow id, got body: %s", w.Body.String())
		}
	})
}

func TestPaymentHandler_GetPayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.GET("/v1/payments/:payment_id", h.GetPayment)

		uc.EXPECT().GetByID(gomock.Any(), "pay-1").Return(nil, usecase.ErrPaymentNotFound)

		req := httptest.NewRequest(http.MethodGet, "/v1/payments/pay-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.GET("/v1/payments/:payment_id", h.GetPayment)

		uc.EXPECT().GetByID(gomock.Any(), "pay-1").Return(testPayment(), nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/payments/pay-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["id"] != "pay-1" || body["status"] != "PENDING" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestPaymentHandler_ListPayments(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	uc := mocks.NewMockIPaymentUseCase(ctrl)
	h := NewPaymentHandler(uc)

	r := gin.New()
	r.GET("/v1/payments", h.ListPayments)

	uc.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, filters any) ([]entities.Payment, error) {
			return []entities.Payment{*testPayment()}, nil
		})

	req := httptest.NewRequest(http.MethodGet, "/v1/payments?cpf=52998224725&limit=5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body []map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if len(body) != 1 || body[0]["id"] != "pay-1" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestPaymentHandler_UpdatePayment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.PATCH("/v1/payments/:payment_id", h.UpdatePayment)

		req := httptest.NewRequest(http.MethodPatch, "/v1/payments/pay-1", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIPaymentUseCase(ctrl)
		h := NewPaymentHandler(uc)

		r := gin.New()
		r.PATCH("/v1/payments/:payment_id", h.UpdatePayment)

		updated := testPayment()
		updated.Description = "updated"
		uc.EXPECT().Update(gomock.Any(), "pay-1", gomock.Any()).DoAndReturn(
			func(_ any, _ string, input usecase.UpdatePaymentInput) (*entities.Payment, error) {
				if input.Description == nil || *input.Description != "updated" {
					t.Fatalf("unexpected input: %+v", input)
				}
				return updated, nil
			})

		req := httptest.NewRequest(http.MethodPatch, "/v1/payments/pay-1",
			bytes.NewBufferString(`{"description":"updated"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestMapPaymentError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{&entities.ValidationError{Reason: "cpf is invalid"}, http.StatusBadRequest},
		{usecase.ErrInvalidPaymentID, http.StatusBadRequest},
		{usecase.ErrPaymentNotFound, http.StatusNotFound},
		{usecase.ErrWorkflowNotFound, http.StatusNotFound},
		{usecase.ErrNoWorkflowNeeded, http.StatusConflict},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		got := mapPaymentError(tc.err)
		if got.HTTPStatus != tc.code {
			t.Fatalf("for err %v expected %d got %d", tc.err, tc.code, got.HTTPStatus)
		}
	}
}
