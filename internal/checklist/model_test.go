package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusInReview},
		{StatusPending, StatusCanceled},
		{StatusInReview, StatusPending},
		{StatusInReview, StatusCompleted},
		{StatusInReview, StatusCanceled},
		{StatusResponded, StatusInReview},
		{StatusResponded, StatusCompleted},
		{StatusResponded, StatusCanceled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusResponded},
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusInReview},
		{StatusCanceled, StatusPending},
		{StatusCanceled, StatusCompleted},
		{StatusResponded, StatusResponded},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusInReview, StatusResponded, StatusCompleted, StatusCanceled} {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("Archived").Valid())
	assert.False(t, Status("").Valid())
}
