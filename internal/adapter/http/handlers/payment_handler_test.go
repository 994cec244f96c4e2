package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"payment_service/internal/adapter/http/handlers/mocks"
	"payment_service/internal/domain/cardvalidation"
	"payment_service/internal/domain/entities"
	"payment_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"
)

func newTestRouter(t *testing.T) (*gin.Engine, *mocks.MockIPaymentUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIPaymentUseCase(ctrl)
	h := NewPaymentHandler(uc)

	r := gin.New()
	r.POST("/v1/payments/validate", h.ValidatePayment)
	r.POST("/v1/payments", h.CreatePayment)
	r.POST("/v1/payments/refund", h.RefundPayment)
	r.GET("/v1/payments/:id", h.GetPayment)
	r.GET("/v1/payments/order/:order_id", h.ListPaymentsByOrder)
	r.GET("/v1/payments/user/:user_id", h.ListPaymentsByUser)
	r.PUT("/v1/payments/:id/status", h.UpdatePaymentStatus)
	r.PUT("/v1/payments/:id/capture", h.CapturePayment)
	r.DELETE("/v1/payments/:id/cancel", h.CancelPayment)
	r.DELETE("/v1/payments/:id", h.DeletePayment)
	return r, uc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v (%s)", err, w.Body.String())
	}
	return body
}

func validResult() entities.ValidationResult {
	return entities.ValidationResult{
		CardNumber: entities.CardNumberCheck{Valid: true, Brand: entities.CardBrandVisa},
		ExpiryDate: entities.FieldCheck{Valid: true},
		CVV:        entities.FieldCheck{Valid: true},
		Overall:    entities.OverallCheck{Valid: true, Errors: []string{}},
	}
}

func failedResult() entities.ValidationResult {
	msg := cardvalidation.ErrCardExpired
	return entities.ValidationResult{
		CardNumber: entities.CardNumberCheck{Valid: true, Brand: entities.CardBrandVisa},
		ExpiryDate: entities.FieldCheck{Valid: false, Error: &msg},
		CVV:        entities.FieldCheck{Valid: true},
		Overall:    entities.OverallCheck{Valid: false, Errors: []string{msg}},
	}
}

func TestPaymentHandler_ValidatePayment(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		r, _ := newTestRouter(t)
		w := do(r, http.MethodPost, "/v1/payments/validate", "{")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("valid card", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Validate(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, in usecase.PaymentInput) entities.ValidationResult {
			if in.CardNumber != "4111111111111111" || in.ExpiryMonth != 12 || in.CVV != "123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return validResult()
		})

		w := do(r, http.MethodPost, "/v1/payments/validate", `{"cardNumber":"4111111111111111","expiryMonth":"12","expiryYear":2030,"cvv":"123"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["success"] != true || body["payment"] != nil {
			t.Fatalf("dry run must not return a payment: %v", body)
		}
	})

	t.Run("invalid card", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(failedResult())

		w := do(r, http.MethodPost, "/v1/payments/validate", `{"cardNumber":"4111111111111111","expiryMonth":1,"expiryYear":2020,"cvv":"123"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if errs, ok := body["errors"].([]any); !ok || len(errs) != 1 || errs[0] != cardvalidation.ErrCardExpired {
			t.Fatalf("expected validation errors, got %v", body["errors"])
		}
		validation, ok := body["validation"].(map[string]any)
		if !ok {
			t.Fatalf("expected validation body, got %v", body)
		}
		for _, key := range []string{"cardNumber", "expiryDate", "cvv", "overall"} {
			if _, ok := validation[key]; !ok {
				t.Fatalf("expected %q in validation body, got %v", key, validation)
			}
		}
	})
}

func TestPaymentHandler_CreatePayment(t *testing.T) {
	t.Run("cardless", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ any, in usecase.PaymentInput) (entities.Payment, *entities.ValidationResult, error) {
			if in.Amount == nil || !in.Amount.Equal(decimal.NewFromInt(10)) || in.OrderID != "1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return entities.Payment{ID: "pay-1", Amount: *in.Amount, Status: entities.PaymentStatusCreated}, nil, nil
		})

		w := do(r, http.MethodPost, "/v1/payments", `{"amount":10,"orderId":1}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		body := decodeBody(t, w)
		payment := body["payment"].(map[string]any)
		if payment["status"] != "created" || payment["validation_result"] != nil || payment["amount"] != "10.00" {
			t.Fatalf("unexpected payment: %v", payment)
		}
	})

	t.Run("valid card", func(t *testing.T) {
		r, uc := newTestRouter(t)
		res := validResult()
		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payment{ID: "pay-1", Status: entities.PaymentStatusValidated, ValidationResult: &res}, &res, nil)

		w := do(r, http.MethodPost, "/v1/payments", `{"amount":10,"cardNumber":"4111111111111111","expiryMonth":12,"expiryYear":2030,"cvv":"123"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
		if body := decodeBody(t, w); body["message"] != "Payment created and validated" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("invalid card returns stored record", func(t *testing.T) {
		r, uc := newTestRouter(t)
		res := failedResult()
		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payment{ID: "pay-1", Status: entities.PaymentStatusValidationFailed}, &res, nil)

		w := do(r, http.MethodPost, "/v1/payments", `{"amount":10,"cardNumber":"4111111111111111","expiryMonth":1,"expiryYear":2020,"cvv":"123"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		body := decodeBody(t, w)
		if body["success"] != false || body["payment"] == nil {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("amount required", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payment{}, nil, usecase.ErrAmountRequired)

		w := do(r, http.MethodPost, "/v1/payments", `{"orderId":1}`)
		if w.Code != http.StatusBadRequest || decodeBody(t, w)["code"] != "AMOUNT_REQUIRED" {
			t.Fatalf("expected 400 AMOUNT_REQUIRED, got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("internal error is opaque", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Payment{}, nil, errors.New("ResourceNotFoundException: table payments"))

		w := do(r, http.MethodPost, "/v1/payments", `{"amount":1}`)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		if body := decodeBody(t, w); body["message"] != "An internal error occurred" {
			t.Fatalf("internal details leaked: %v", body)
		}
	})
}

func TestPaymentHandler_GetPayment(t *testing.T) {
	r, uc := newTestRouter(t)
	uc.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.Payment{}, usecase.ErrPaymentNotFound)
	uc.EXPECT().GetByID(gomock.Any(), "pay-1").Return(entities.Payment{ID: "pay-1", Status: entities.PaymentStatusDeleted}, nil)

	if w := do(r, http.MethodGet, "/v1/payments/missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	w := do(r, http.MethodGet, "/v1/payments/pay-1", "")
	if w.Code != http.StatusOK || decodeBody(t, w)["status"] != "deleted" {
		t.Fatalf("expected deleted payment, got %d %s", w.Code, w.Body.String())
	}
}

func TestPaymentHandler_ListPaymentsByUser(t *testing.T) {
	r, uc := newTestRouter(t)
	uc.EXPECT().ListByUserID(gomock.Any(), "user-1", 10, 20).Return([]entities.Payment{{ID: "p2"}, {ID: "p1"}}, nil)
	uc.EXPECT().ListByUserID(gomock.Any(), "user-1", 0, 0).Return(nil, nil)

	w := do(r, http.MethodGet, "/v1/payments/user/user-1?limit=10&offset=20", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 2 || list[0]["id"] != "p2" {
		t.Fatalf("unexpected list: %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/v1/payments/user/user-1", "")
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("expected empty json array, got %d %s", w.Code, w.Body.String())
	}

	if w := do(r, http.MethodGet, "/v1/payments/user/user-1?limit=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPaymentHandler_ListPaymentsByOrder(t *testing.T) {
	r, uc := newTestRouter(t)
	uc.EXPECT().ListByOrderID(gomock.Any(), "order-1").Return([]entities.Payment{{ID: "p1"}}, nil)

	if w := do(r, http.MethodGet, "/v1/payments/order/order-1", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestPaymentHandler_UpdatePaymentStatus(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"success", nil, http.StatusOK, ""},
		{"missing status", usecase.ErrStatusRequired, http.StatusBadRequest, "STATUS_REQUIRED"},
		{"unknown status", fmt.Errorf("%w: %q", usecase.ErrInvalidStatus, "paid"), http.StatusBadRequest, "INVALID_STATUS"},
		{"empty metadata key", usecase.ErrInvalidMetadataKey, http.StatusBadRequest, "INVALID_METADATA"},
		{"not found", usecase.ErrPaymentNotFound, http.StatusNotFound, "PAYMENT_NOT_FOUND"},
		{"transition", fmt.Errorf("%w: refunded -> captured", usecase.ErrInvalidStatusTransition), http.StatusUnprocessableEntity, "INVALID_STATUS_TRANSITION"},
		{"conflict", usecase.ErrPaymentConcurrentUpdate, http.StatusConflict, "PAYMENT_CONFLICT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, uc := newTestRouter(t)
			uc.EXPECT().SetStatus(gomock.Any(), "pay-1", "captured", map[string]any{"note": "x"}).
				Return(entities.Payment{ID: "pay-1", Status: entities.PaymentStatusCaptured}, tc.err)

			w := do(r, http.MethodPut, "/v1/payments/pay-1/status", `{"status":"captured","metadata":{"note":"x"}}`)
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, w.Code)
			}
			if tc.wantErr != "" && decodeBody(t, w)["code"] != tc.wantErr {
				t.Fatalf("expected code %s, got %s", tc.wantErr, w.Body.String())
			}
		})
	}
}

func TestPaymentHandler_LifecycleShortcuts(t *testing.T) {
	r, uc := newTestRouter(t)
	uc.EXPECT().Capture(gomock.Any(), "pay-1").Return(entities.Payment{ID: "pay-1", Status: entities.PaymentStatusCaptured}, nil)
	uc.EXPECT().Cancel(gomock.Any(), "pay-2").Return(entities.Payment{ID: "pay-2", Status: entities.PaymentStatusCancelled}, nil)
	uc.EXPECT().SoftDelete(gomock.Any(), "pay-3").Return(entities.Payment{ID: "pay-3", Status: entities.PaymentStatusDeleted}, nil)
	uc.EXPECT().SoftDelete(gomock.Any(), "missing").Return(entities.Payment{}, usecase.ErrPaymentNotFound)

	if w := do(r, http.MethodPut, "/v1/payments/pay-1/capture", ""); w.Code != http.StatusOK {
		t.Fatalf("capture: expected 200, got %d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/v1/payments/pay-2/cancel", ""); w.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", w.Code)
	}
	w := do(r, http.MethodDelete, "/v1/payments/pay-3", "")
	if w.Code != http.StatusOK || decodeBody(t, w)["message"] != "Payment deleted successfully" {
		t.Fatalf("delete: unexpected response %d %s", w.Code, w.Body.String())
	}
	if w := do(r, http.MethodDelete, "/v1/payments/missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("delete missing: expected 404, got %d", w.Code)
	}
}

func TestPaymentHandler_RefundPayment(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Refund(gomock.Any(), "pay-1", gomock.Any(), "duplicate").DoAndReturn(
			func(_ any, _ string, amount *decimal.Decimal, _ string) (entities.Payment, error) {
				if amount == nil || amount.String() != "5.5" {
					t.Fatalf("unexpected amount %v", amount)
				}
				return entities.Payment{ID: "pay-1", Status: entities.PaymentStatusRefunded}, nil
			})

		w := do(r, http.MethodPost, "/v1/payments/refund", `{"paymentId":"pay-1","amount":5.50,"reason":"duplicate"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("missing payment id", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Refund(gomock.Any(), "", gomock.Any(), "").Return(entities.Payment{}, usecase.ErrInvalidPaymentID)

		w := do(r, http.MethodPost, "/v1/payments/refund", `{}`)
		if w.Code != http.StatusBadRequest || decodeBody(t, w)["code"] != "PAYMENT_ID_REQUIRED" {
			t.Fatalf("expected 400 PAYMENT_ID_REQUIRED, got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("refund above amount", func(t *testing.T) {
		r, uc := newTestRouter(t)
		uc.EXPECT().Refund(gomock.Any(), "pay-1", gomock.Any(), "").Return(entities.Payment{}, usecase.ErrInvalidRefundAmount)

		w := do(r, http.MethodPost, "/v1/payments/refund", `{"paymentId":"pay-1","amount":1000}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}
