package fulfillment

import (
	"testing"

	"github.com/bazarly/bazarly-backend/pkg/enums"
)

func TestCanTransitionHappyPath(t *testing.T) {
	path := []enums.FulfillmentStatus{
		enums.FulfillmentStatusCreated,
		enums.FulfillmentStatusPaymentCleared,
		enums.FulfillmentStatusPickupReady,
		enums.FulfillmentStatusAccepted,
		enums.FulfillmentStatusPickupVerified,
		enums.FulfillmentStatusOutForDelivery,
		enums.FulfillmentStatusDelivered,
	}
	for i := 0; i < len(path)-1; i++ {
		if !canTransition(path[i], path[i+1]) {
			t.Fatalf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestCanTransitionAcceptSkipsSellerReadiness(t *testing.T) {
	// Seller readiness is a signal, not a gate: agents accept straight from
	// payment_cleared.
	if !canTransition(enums.FulfillmentStatusPaymentCleared, enums.FulfillmentStatusAccepted) {
		t.Fatal("expected payment_cleared -> accepted to be allowed")
	}
}

func TestCanTransitionRejectsSkips(t *testing.T) {
	if canTransition(enums.FulfillmentStatusCreated, enums.FulfillmentStatusAccepted) {
		t.Fatal("created order must clear payment before assignment")
	}
	if canTransition(enums.FulfillmentStatusAccepted, enums.FulfillmentStatusDelivered) {
		t.Fatal("accepted order must pass the pickup and delivery gates first")
	}
	if canTransition(enums.FulfillmentStatusDelivered, enums.FulfillmentStatusOutForDelivery) {
		t.Fatal("lifecycle must not move backwards from delivered")
	}
}

func TestCanTransitionCancelFromAnyNonTerminal(t *testing.T) {
	for _, from := range []enums.FulfillmentStatus{
		enums.FulfillmentStatusCreated,
		enums.FulfillmentStatusPaymentCleared,
		enums.FulfillmentStatusPickupReady,
		enums.FulfillmentStatusAccepted,
		enums.FulfillmentStatusPickupVerified,
		enums.FulfillmentStatusOutForDelivery,
	} {
		if !canTransition(from, enums.FulfillmentStatusCancelled) {
			t.Fatalf("expected cancel to be allowed from %s", from)
		}
	}
	if canTransition(enums.FulfillmentStatusDelivered, enums.FulfillmentStatusCancelled) {
		t.Fatal("delivered orders must not be cancellable")
	}
	if canTransition(enums.FulfillmentStatusCancelled, enums.FulfillmentStatusCancelled) {
		t.Fatal("cancelled orders must stay cancelled")
	}
}

func TestCanTransitionReassignEdges(t *testing.T) {
	if !canTransition(enums.FulfillmentStatusAccepted, enums.FulfillmentStatusPickupReady) {
		t.Fatal("admin reassignment from accepted must be allowed")
	}
	if !canTransition(enums.FulfillmentStatusPickupVerified, enums.FulfillmentStatusPickupReady) {
		t.Fatal("admin reassignment from pickup_verified must be allowed")
	}
	if canTransition(enums.FulfillmentStatusOutForDelivery, enums.FulfillmentStatusPickupReady) {
		t.Fatal("orders on the road must not re-enter the queue")
	}
}
