package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecomputeCancellable(t *testing.T) {
	cancellable := []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusReturned,
		OrderStatusReturnedToStore,
		OrderStatusReturnInitiated,
	}
	for _, status := range cancellable {
		order := Order{Status: status}
		order.RecomputeCancellable()
		assert.True(t, order.IsCancellable, "status %s should be cancellable", status)
	}

	notCancellable := []OrderStatus{
		OrderStatusCanceled,
		OrderStatusDelivered,
		OrderStatusRefundCompleted,
	}
	for _, status := range notCancellable {
		order := Order{Status: status, IsCancellable: true}
		order.RecomputeCancellable()
		assert.False(t, order.IsCancellable, "status %s should not be cancellable", status)
	}
}
