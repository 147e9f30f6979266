package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"cloud-kitchen-backend/internal/models"
	"cloud-kitchen-backend/pkg/messaging"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	carts  *cartFixture
	svc    *CheckoutService
	orders *fakeOrderRepo
	log    *fakeOrderLog
	events *fakePublisher
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	f := &checkoutFixture{
		carts:  newCartFixture(t),
		orders: &fakeOrderRepo{},
		log:    &fakeOrderLog{},
		events: &fakePublisher{},
	}
	f.svc = NewCheckoutService(f.carts.svc, f.orders, f.log, f.events, StoreSettings{
		RestaurantName: "Cloud Kitchen",
		WhatsAppNumber: "919876543210",
		UPIID:          "kitchen@upi",
		DeliveryCharge: 40,
		OrderTopic:     "orders.placed",
	}, zerolog.Nop())
	f.svc.now = func() time.Time { return time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC) }
	return f
}

func validDetails() CustomerDetails {
	return CustomerDetails{
		Name:         "Asha Rao",
		Phone:        "9876543210",
		Address:      "12 MG Road, Bengaluru",
		DeliveryDate: "2026-03-10",
		DeliveryTime: "1:00 PM - 2:00 PM",
	}
}

func TestDeliverySlots(t *testing.T) {
	slots := DeliverySlots()

	require.Len(t, slots, 11)
	assert.Equal(t, "11:00 AM - 12:00 PM", slots[0])
	assert.Equal(t, "12:00 PM - 1:00 PM", slots[1])
	assert.Equal(t, "9:00 PM - 10:00 PM", slots[10])
	assert.True(t, IsDeliverySlot("6:00 PM - 7:00 PM"))
	assert.False(t, IsDeliverySlot("10:00 PM - 11:00 PM"))
}

func TestCheckoutService_ValidateCustomer(t *testing.T) {
	f := newCheckoutFixture(t)

	tests := []struct {
		name   string
		mutate func(*CustomerDetails)
		field  string
		msg    string
	}{
		{"missing name", func(d *CustomerDetails) { d.Name = "   " }, "name", "Name is required"},
		{"missing phone", func(d *CustomerDetails) { d.Phone = "" }, "phone", "Phone number is required"},
		{"short phone", func(d *CustomerDetails) { d.Phone = "98765" }, "phone", "Please enter a valid 10-digit phone number"},
		{"phone bad prefix", func(d *CustomerDetails) { d.Phone = "1234567890" }, "phone", "Please enter a valid 10-digit phone number"},
		{"missing address", func(d *CustomerDetails) { d.Address = "" }, "address", "Delivery address is required"},
		{"missing date", func(d *CustomerDetails) { d.DeliveryDate = "" }, "delivery_date", "Delivery date is required"},
		{"bad date", func(d *CustomerDetails) { d.DeliveryDate = "10/03/2026" }, "delivery_date", "Please enter the delivery date as YYYY-MM-DD"},
		{"past date", func(d *CustomerDetails) { d.DeliveryDate = "2026-03-09" }, "delivery_date", "Delivery date cannot be in the past"},
		{"missing time", func(d *CustomerDetails) { d.DeliveryTime = "" }, "delivery_time", "Delivery time is required"},
		{"bad slot", func(d *CustomerDetails) { d.DeliveryTime = "3 AM" }, "delivery_time", "Please select one of the available delivery slots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)

			err := f.svc.ValidateCustomer(d)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, map[string]string{tt.field: tt.msg}, verr.Fields)
		})
	}

	assert.NoError(t, f.svc.ValidateCustomer(validDetails()))

	future := validDetails()
	future.DeliveryDate = "2026-04-01"
	assert.NoError(t, f.svc.ValidateCustomer(future))
}

func TestCheckoutService_ValidateReportsAllFields(t *testing.T) {
	f := newCheckoutFixture(t)

	err := f.svc.ValidateCustomer(CustomerDetails{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 5)
}

func TestCheckoutService_PlaceOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.svc.AddItem(ctx, "s1", "1")
	require.NoError(t, err)
	_, err = f.carts.svc.AddItem(ctx, "s1", "1")
	require.NoError(t, err)
	_, err = f.carts.svc.AddItem(ctx, "s1", "9")
	require.NoError(t, err)

	details := validDetails()
	details.Name = "  Asha Rao "

	conf, err := f.svc.PlaceOrder(ctx, "s1", details)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPendingPayment, conf.Status)
	assert.Equal(t, 610.0, conf.ItemsTotal)
	assert.Equal(t, 40.0, conf.DeliveryCharge)
	assert.Equal(t, 650.0, conf.TotalAmount)
	assert.Len(t, conf.Items, 2)

	assert.True(t, strings.HasPrefix(conf.WhatsAppURL, "https://wa.me/919876543210?text="))
	assert.Contains(t, conf.UPIURL, "pa=kitchen%40upi")
	assert.Contains(t, conf.UPIURL, "am=650")
	assert.Contains(t, conf.Message, "2x Bengaluru Vegetable Biryani - ₹360")
	assert.Contains(t, conf.Message, "Name: Asha Rao\n")
	assert.Contains(t, conf.Message, "Total: ₹650")

	require.Len(t, f.orders.orders, 1)
	order := f.orders.orders[0]
	assert.Equal(t, conf.OrderID, order.ID.String())
	assert.Equal(t, "s1", order.SessionID)
	assert.Equal(t, "Asha Rao", order.CustomerName)
	assert.Len(t, order.Items, 2)

	require.Len(t, f.log.entries, 1)
	entry, ok := f.log.entries[0].(orderLogEntry)
	require.True(t, ok)
	assert.Equal(t, conf.OrderID, entry.OrderID)
	assert.Equal(t, 650.0, entry.Total)

	require.Len(t, f.events.events, 1)
	ev := f.events.events[0]
	assert.Equal(t, "orders.placed", ev.topic)
	assert.Equal(t, conf.OrderID, ev.key)
	payload, ok := ev.value.(messaging.OrderEvent)
	require.True(t, ok)
	assert.Equal(t, messaging.OrderPlaced, payload.Type)
	assert.Len(t, payload.Items, 2)

	snap, err := f.carts.svc.View(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestCheckoutService_PlaceOrderEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.svc.PlaceOrder(context.Background(), "s1", validDetails())
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Empty(t, f.orders.orders)
}

func TestCheckoutService_PlaceOrderInvalidKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.svc.AddItem(ctx, "s1", "9")
	require.NoError(t, err)

	details := validDetails()
	details.Phone = "12"
	_, err = f.svc.PlaceOrder(ctx, "s1", details)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	snap, err := f.carts.svc.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalItems)
}

func TestCheckoutService_PlaceOrderStoreFailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	f.orders.createErr = errBoom
	ctx := context.Background()

	_, err := f.carts.svc.AddItem(ctx, "s1", "9")
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, "s1", validDetails())
	assert.ErrorIs(t, err, errBoom)

	snap, err := f.carts.svc.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalItems)
	assert.Empty(t, f.events.events)
}

func TestCheckoutService_PlaceOrderSideEffectFailuresAreLogged(t *testing.T) {
	f := newCheckoutFixture(t)
	f.log.err = errBoom
	f.events.err = errBoom
	ctx := context.Background()

	_, err := f.carts.svc.AddItem(ctx, "s1", "9")
	require.NoError(t, err)

	conf, err := f.svc.PlaceOrder(ctx, "s1", validDetails())
	require.NoError(t, err)
	assert.NotEmpty(t, conf.OrderID)
	assert.Len(t, f.orders.orders, 1)
}

func TestCheckoutService_LogRawOrder(t *testing.T) {
	f := newCheckoutFixture(t)

	require.NoError(t, f.svc.LogRawOrder(context.Background(), map[string]any{"customer": "Asha"}))
	require.NoError(t, f.svc.LogRawOrder(context.Background(), map[string]any{"timestamp": "keep"}))

	require.Len(t, f.log.entries, 2)
	first := f.log.entries[0].(map[string]any)
	assert.Equal(t, "Asha", first["customer"])
	assert.Equal(t, "2026-03-10T10:00:00Z", first["timestamp"])

	second := f.log.entries[1].(map[string]any)
	assert.Equal(t, "keep", second["timestamp"])

	f.log.err = errBoom
	assert.ErrorIs(t, f.svc.LogRawOrder(context.Background(), map[string]any{}), errBoom)
}

func TestCheckoutService_PlaceOrderKeepsItemsAddedDuringCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.svc.AddItem(ctx, "s1", "1")
	require.NoError(t, err)

	// another request for the same session adds to the cart while the order
	// row is being written
	f.orders.onCreate = func() {
		_, err := f.carts.svc.AddItem(ctx, "s1", "9")
		assert.NoError(t, err)
	}

	conf, err := f.svc.PlaceOrder(ctx, "s1", validDetails())
	require.NoError(t, err)
	require.Len(t, conf.Items, 1)
	assert.Equal(t, "1", conf.Items[0].ItemID)

	snap, err := f.carts.svc.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"9"}, lineIDs(snap))
	assert.Equal(t, 250.0, snap.TotalPrice)

	stored, err := f.carts.repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalItems)
}

func TestCheckoutService_PlaceOrderDeductsIncrementedQuantity(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	_, err := f.carts.svc.AddItem(ctx, "s1", "9")
	require.NoError(t, err)
	f.orders.onCreate = func() {
		_, err := f.carts.svc.AddItem(ctx, "s1", "9")
		assert.NoError(t, err)
	}

	_, err = f.svc.PlaceOrder(ctx, "s1", validDetails())
	require.NoError(t, err)

	snap, err := f.carts.svc.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalItems)
}
