package handler

import (
	"encoding/json"
	"net/http"

	"checkclient/internal/billing"
	"checkclient/internal/checklist"
)

type BillingHandler struct {
	Processor billing.PaymentProcessor
	Events    checklist.EventSink
}

type subscribeReq struct {
	UserID      any    `json:"userId"`
	Plan        string `json:"plan"`
	AmountCents int64  `json:"amountCents"`
}

func (h *BillingHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeReq
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	userID := coerceID(req.UserID)
	if userID == "" || req.Plan == "" {
		writeError(w, http.StatusBadRequest, "userId and plan are required")
		return
	}

	receipt, err := h.Processor.Charge(r.Context(), billing.Charge{
		UserID:      userID,
		Plan:        req.Plan,
		AmountCents: req.AmountCents,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "payment failed")
		return
	}

	h.Events.Track("subscription_charged", userID, map[string]any{
		"plan":      req.Plan,
		"receiptId": receipt.ID,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "receipt": receipt})
}
