package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"cloud-kitchen-backend/internal/cart"
	"cloud-kitchen-backend/internal/models"
	"cloud-kitchen-backend/internal/repositories"
	"cloud-kitchen-backend/pkg/deeplink"
	"cloud-kitchen-backend/pkg/messaging"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// Delivery slots are hourly from 11 AM to 10 PM.
const (
	firstSlotHour = 11
	lastSlotHour  = 21
)

var mobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// CustomerDetails is what the checkout form collects.
type CustomerDetails struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required,in_mobile"`
	Address      string `json:"address" validate:"required"`
	DeliveryDate string `json:"delivery_date" validate:"required,delivery_date"`
	DeliveryTime string `json:"delivery_time" validate:"required,delivery_slot"`
}

func (d CustomerDetails) trimmed() CustomerDetails {
	return CustomerDetails{
		Name:         strings.TrimSpace(d.Name),
		Phone:        strings.TrimSpace(d.Phone),
		Address:      strings.TrimSpace(d.Address),
		DeliveryDate: strings.TrimSpace(d.DeliveryDate),
		DeliveryTime: strings.TrimSpace(d.DeliveryTime),
	}
}

// StoreSettings is the storefront configuration checkout needs.
type StoreSettings struct {
	RestaurantName string
	WhatsAppNumber string
	UPIID          string
	DeliveryCharge float64
	OrderTopic     string
}

// CartSessions is the part of CartService checkout reads and deducts from.
type CartSessions interface {
	View(ctx context.Context, sessionID string) (cart.Snapshot, error)
	Deduct(ctx context.Context, sessionID string, lines []cart.Line) (cart.Snapshot, error)
}

type OrderConfirmation struct {
	OrderID        string      `json:"order_id"`
	Status         string      `json:"status"`
	Items          []cart.Line `json:"items"`
	ItemsTotal     float64     `json:"items_total"`
	DeliveryCharge float64     `json:"delivery_charge"`
	TotalAmount    float64     `json:"total_amount"`
	Message        string      `json:"message"`
	WhatsAppURL    string      `json:"whatsapp_url"`
	UPIURL         string      `json:"upi_url"`
	PlacedAt       time.Time   `json:"placed_at"`
}

type CheckoutService struct {
	carts     CartSessions
	orderRepo repositories.OrderRepository
	orderLog  OrderLogger
	events    EventPublisher
	settings  StoreSettings
	validate  *validator.Validate
	log       zerolog.Logger
	now       func() time.Time
}

func NewCheckoutService(
	carts CartSessions,
	orderRepo repositories.OrderRepository,
	orderLog OrderLogger,
	events EventPublisher,
	settings StoreSettings,
	log zerolog.Logger,
) *CheckoutService {
	s := &CheckoutService{
		carts:     carts,
		orderRepo: orderRepo,
		orderLog:  orderLog,
		events:    events,
		settings:  settings,
		log:       log,
		now:       time.Now,
	}
	s.validate = s.newValidator()
	return s
}

func (s *CheckoutService) newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("in_mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("delivery_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("delivery_slot", func(fl validator.FieldLevel) bool {
		return IsDeliverySlot(fl.Field().String())
	})
	return v
}

// DeliverySlots lists the bookable one-hour windows.
func DeliverySlots() []string {
	slots := make([]string, 0, lastSlotHour-firstSlotHour+1)
	for h := firstSlotHour; h <= lastSlotHour; h++ {
		slots = append(slots, clockLabel(h)+" - "+clockLabel(h+1))
	}
	return slots
}

func IsDeliverySlot(value string) bool {
	for _, slot := range DeliverySlots() {
		if slot == value {
			return true
		}
	}
	return false
}

func clockLabel(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:00 %s", h, suffix)
}

var fieldMessages = map[string]map[string]string{
	"name": {
		"required": "Name is required",
	},
	"phone": {
		"required":  "Phone number is required",
		"in_mobile": "Please enter a valid 10-digit phone number",
	},
	"address": {
		"required": "Delivery address is required",
	},
	"delivery_date": {
		"required":      "Delivery date is required",
		"delivery_date": "Please enter the delivery date as YYYY-MM-DD",
	},
	"delivery_time": {
		"required":      "Delivery time is required",
		"delivery_slot": "Please select one of the available delivery slots",
	},
}

// ValidateCustomer checks the checkout form and reports every failing field.
func (s *CheckoutService) ValidateCustomer(details CustomerDetails) error {
	details = details.trimmed()
	fields := map[string]string{}

	if err := s.validate.Struct(details); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			msg, ok := fieldMessages[fe.Field()][fe.Tag()]
			if !ok {
				msg = "is invalid"
			}
			fields[fe.Field()] = msg
		}
	}

	if _, failed := fields["delivery_date"]; !failed && s.isPastDate(details.DeliveryDate) {
		fields["delivery_date"] = "Delivery date cannot be in the past"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *CheckoutService) isPastDate(value string) bool {
	now := s.now()
	selected, err := time.ParseInLocation(dateLayout, value, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return selected.Before(today)
}

// PlaceOrder turns the session's cart into an order, records it and returns
// the links the customer uses to pay and confirm. Once the order is stored the
// ordered lines are removed from the cart.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID string, details CustomerDetails) (*OrderConfirmation, error) {
	if err := s.ValidateCustomer(details); err != nil {
		return nil, err
	}
	details = details.trimmed()

	snap, err := s.carts.View(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return nil, ErrCartEmpty
	}

	placedAt := s.now().UTC()
	order := &models.Order{
		ID:             uuid.New(),
		SessionID:      sessionID,
		CustomerName:   details.Name,
		Phone:          details.Phone,
		Address:        details.Address,
		DeliveryDate:   details.DeliveryDate,
		DeliveryTime:   details.DeliveryTime,
		Items:          toLineItems(snap.Lines),
		ItemsTotal:     snap.TotalPrice,
		DeliveryCharge: s.settings.DeliveryCharge,
		TotalAmount:    snap.TotalPrice + s.settings.DeliveryCharge,
		Status:         models.OrderStatusPendingPayment,
		CreatedAt:      placedAt,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("saving order: %w", err)
	}

	log := s.log.With().Str("order_id", order.ID.String()).Str("session_id", sessionID).Logger()

	if err := s.orderLog.Append(newOrderLogEntry(order)); err != nil {
		log.Error().Err(err).Msg("appending order log")
	}

	if err := s.events.Publish(ctx, s.settings.OrderTopic, order.ID.String(), newOrderEvent(order)); err != nil {
		log.Error().Err(err).Msg("publishing order event")
	}

	message := deeplink.OrderMessage(deeplink.Message{
		RestaurantName: s.settings.RestaurantName,
		OrderID:        order.ID.String(),
		CustomerName:   order.CustomerName,
		Phone:          order.Phone,
		Address:        order.Address,
		DeliveryDate:   order.DeliveryDate,
		DeliveryTime:   order.DeliveryTime,
		Lines:          messageLines(snap.Lines),
		DeliveryCharge: order.DeliveryCharge,
		Total:          order.TotalAmount,
	})

	confirmation := &OrderConfirmation{
		OrderID:        order.ID.String(),
		Status:         order.Status,
		Items:          snap.Lines,
		ItemsTotal:     order.ItemsTotal,
		DeliveryCharge: order.DeliveryCharge,
		TotalAmount:    order.TotalAmount,
		Message:        message,
		WhatsAppURL:    deeplink.WhatsApp(s.settings.WhatsAppNumber, message),
		UPIURL: deeplink.UPI(deeplink.Payment{
			PayeeVPA:  s.settings.UPIID,
			PayeeName: s.settings.RestaurantName,
			Amount:    order.TotalAmount,
			Note:      "Food Order " + shortID(order.ID),
		}),
		PlacedAt: placedAt,
	}

	if _, err := s.carts.Deduct(ctx, sessionID, snap.Lines); err != nil {
		log.Error().Err(err).Msg("removing ordered items from cart")
	}

	log.Info().
		Float64("total_amount", order.TotalAmount).
		Int("items", snap.TotalItems).
		Msg("order placed")
	return confirmation, nil
}

// LogRawOrder appends an arbitrary order payload to the order log, stamping a
// timestamp unless the payload carries one.
func (s *CheckoutService) LogRawOrder(ctx context.Context, payload map[string]any) error {
	entry := make(map[string]any, len(payload)+1)
	entry["timestamp"] = s.now().UTC().Format(time.RFC3339Nano)
	for k, v := range payload {
		entry[k] = v
	}

	if err := s.orderLog.Append(entry); err != nil {
		return fmt.Errorf("logging order: %w", err)
	}
	s.log.Info().Int("fields", len(payload)).Msg("raw order logged")
	return nil
}

type orderLogEntry struct {
	Timestamp string           `json:"timestamp"`
	OrderID   string           `json:"order_id"`
	SessionID string           `json:"session_id"`
	Customer  orderLogCustomer `json:"customer"`
	Items     models.LineItems `json:"items"`
	Total     float64          `json:"total"`
}

type orderLogCustomer struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	DeliveryDate string `json:"deliveryDate"`
	DeliveryTime string `json:"deliveryTime"`
}

func newOrderLogEntry(o *models.Order) orderLogEntry {
	return orderLogEntry{
		Timestamp: o.CreatedAt.Format(time.RFC3339Nano),
		OrderID:   o.ID.String(),
		SessionID: o.SessionID,
		Customer: orderLogCustomer{
			Name:         o.CustomerName,
			Phone:        o.Phone,
			Address:      o.Address,
			DeliveryDate: o.DeliveryDate,
			DeliveryTime: o.DeliveryTime,
		},
		Items: o.Items,
		Total: o.TotalAmount,
	}
}

func newOrderEvent(o *models.Order) messaging.OrderEvent {
	items := make([]messaging.OrderEventItem, len(o.Items))
	for i, l := range o.Items {
		items[i] = messaging.OrderEventItem{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return messaging.OrderEvent{
		Type:         messaging.OrderPlaced,
		OrderID:      o.ID.String(),
		SessionID:    o.SessionID,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		DeliveryDate: o.DeliveryDate,
		DeliveryTime: o.DeliveryTime,
		Items:        items,
		TotalAmount:  o.TotalAmount,
		PlacedAt:     o.CreatedAt,
	}
}

func messageLines(lines []cart.Line) []deeplink.MessageLine {
	out := make([]deeplink.MessageLine, len(lines))
	for i, l := range lines {
		out[i] = deeplink.MessageLine{Name: l.Name, Quantity: l.Quantity, LineTotal: l.Total()}
	}
	return out
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}
