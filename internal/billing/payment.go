// Package billing defines the payment capability. No real gateway exists yet;
// the simulated processor issues a receipt synchronously.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

type Charge struct {
	UserID      string `json:"userId"`
	Plan        string `json:"plan"`
	AmountCents int64  `json:"amountCents"`
}

type Receipt struct {
	ID        string    `json:"id"`
	Plan      string    `json:"plan"`
	ChargedAt time.Time `json:"chargedAt"`
}

type PaymentProcessor interface {
	Charge(ctx context.Context, c Charge) (Receipt, error)
}

type Simulated struct {
	Log *zap.Logger

	Now func() time.Time
}

func (s *Simulated) Charge(_ context.Context, c Charge) (Receipt, error) {
	if c.UserID == "" || c.Plan == "" {
		return Receipt{}, fmt.Errorf("charge needs userId and plan")
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	r := Receipt{
		ID:        "pay_" + uuid.Must(uuid.NewV4()).String(),
		Plan:      c.Plan,
		ChargedAt: now(),
	}
	s.Log.Info("simulated charge",
		zap.String("userId", c.UserID),
		zap.String("plan", c.Plan),
		zap.Int64("amountCents", c.AmountCents),
		zap.String("receiptId", r.ID),
	)
	return r, nil
}
