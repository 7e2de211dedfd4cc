package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/YARN-DEV/NOREG/internal/cartstore"
	"github.com/YARN-DEV/NOREG/internal/checkout"
	"github.com/YARN-DEV/NOREG/internal/domain"
	"github.com/YARN-DEV/NOREG/internal/payment"
)

type CheckoutHandler struct {
	carts        *cartstore.Manager
	orchestrator *checkout.Orchestrator
}

func NewCheckoutHandler(carts *cartstore.Manager, orchestrator *checkout.Orchestrator) *CheckoutHandler {
	return &CheckoutHandler{
		carts:        carts,
		orchestrator: orchestrator,
	}
}

type CheckoutRequestDTO struct {
	Customer     domain.CustomerInfo `json:"customer"`
	Provider     string              `json:"provider"`
	PaymentToken string              `json:"paymentToken,omitempty"`
}

// Submit runs one checkout for the session's cart and returns either the
// hosted page URL to redirect to or the synchronous charge outcome.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Provider == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "payment provider is required")
		return
	}

	store := h.carts.Get(r.Context(), getSessionID(r.Context()))
	session, err := h.orchestrator.Run(r.Context(), store, checkout.Request{
		Customer:     req.Customer,
		Provider:     req.Provider,
		PaymentToken: req.PaymentToken,
	})
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// Complete is the success-destination arrival of a redirect flow: the
// shopper came back from the hosted page, so the purchase is confirmed and
// the cart can be cleared.
func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	store := h.carts.Get(r.Context(), getSessionID(r.Context()))
	h.orchestrator.Complete(store)
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCheckoutError maps the checkout error taxonomy onto HTTP statuses:
// validation 400, busy 409, configuration 503, provider refusal 402,
// timeout and transport failures 500.
func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case checkout.IsValidation(err):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, checkout.ErrBusy):
		respondError(w, http.StatusConflict, "busy", err.Error())
	default:
		switch payment.KindOf(err) {
		case payment.KindConfiguration:
			// operator-correctable; the raw reason stays in the logs
			log.Printf("checkout configuration error: %v", err)
			respondError(w, http.StatusServiceUnavailable, "configuration_error", "payment provider is not available")
		case payment.KindProvider:
			respondError(w, http.StatusPaymentRequired, "provider_error", err.Error())
		case payment.KindTimeout:
			log.Printf("checkout timeout: %v", err)
			respondError(w, http.StatusInternalServerError, "timeout", "payment provider did not respond, please try again")
		default:
			log.Printf("checkout internal error: %v", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "checkout failed")
		}
	}
}
