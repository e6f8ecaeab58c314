package domain

import "testing"

func TestCanTransition(t *testing.T) {
	statuses := []OrderStatus{
		OrderCreated, OrderPaid, OrderProcessing,
		OrderShipped, OrderDelivered, OrderCancelled,
	}
	allowed := map[OrderStatus]map[OrderStatus]bool{
		OrderCreated:    {OrderPaid: true, OrderCancelled: true},
		OrderPaid:       {OrderProcessing: true, OrderCancelled: true},
		OrderProcessing: {OrderShipped: true, OrderCancelled: true},
		OrderShipped:    {OrderDelivered: true},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[from][to]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	for _, status := range []OrderStatus{OrderDelivered, OrderCancelled} {
		if !status.Terminal() {
			t.Errorf("%s should be terminal", status)
		}
	}
	for _, status := range []OrderStatus{OrderCreated, OrderPaid, OrderProcessing, OrderShipped} {
		if status.Terminal() {
			t.Errorf("%s should not be terminal", status)
		}
	}
}

func TestOrderStatus_Cancellable(t *testing.T) {
	cancellable := map[OrderStatus]bool{
		OrderCreated:    true,
		OrderPaid:       true,
		OrderProcessing: true,
		OrderShipped:    false,
		OrderDelivered:  false,
		OrderCancelled:  false,
	}
	for status, want := range cancellable {
		if got := status.Cancellable(); got != want {
			t.Errorf("%s.Cancellable() = %v, want %v", status, got, want)
		}
	}
}

func TestOrderStatus_AtLeastPaid(t *testing.T) {
	paid := map[OrderStatus]bool{
		OrderCreated:    false,
		OrderPaid:       true,
		OrderProcessing: true,
		OrderShipped:    true,
		OrderDelivered:  true,
		OrderCancelled:  false,
	}
	for status, want := range paid {
		if got := status.AtLeastPaid(); got != want {
			t.Errorf("%s.AtLeastPaid() = %v, want %v", status, got, want)
		}
	}
}
