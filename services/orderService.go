package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/nuthu-archive/storefront-api/apperrors"
	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/nuthu-archive/storefront-api/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemInput struct {
	ProductID   uint
	ProductName string
	Quantity    int
	Price       float64
}

// OrderInput describes an order to persist. Zero-valued optional fields are stored as NULL.
type OrderInput struct {
	UserID           *uint
	TotalAmount      *float64
	Currency         string
	Email            string
	PaymentStatus    string
	PaymentProvider  string
	PaymentReference string
	Metadata         map[string]any
	Shipping         models.ShippingDetails
	Items            []OrderItemInput
}

type OrderService struct {
	db      *gorm.DB
	mailer  utils.Mailer
	events  EventPublisher
	shopURL string
}

func NewOrderService(db *gorm.DB, mailer utils.Mailer, events EventPublisher, clientURL string) *OrderService {
	if mailer == nil {
		mailer = utils.LogMailer{}
	}
	if events == nil {
		events = NoopPublisher{}
	}
	return &OrderService{
		db:      db,
		mailer:  mailer,
		events:  events,
		shopURL: strings.TrimSuffix(clientURL, "/") + "/shop",
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CreateOrder stores the order and its items in one transaction. The
// confirmation email goes out after commit, and only for paid orders.
func (s *OrderService) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	if len(in.Items) == 0 || in.TotalAmount == nil {
		return nil, apperrors.ErrInvalidOrder
	}
	for _, item := range in.Items {
		if item.ProductID == 0 || item.Quantity < 1 {
			return nil, apperrors.ErrInvalidOrder
		}
	}

	status := in.PaymentStatus
	if status != models.PaymentStatusPending && status != models.PaymentStatusPaid {
		status = models.PaymentStatusPending
	}

	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = "kes"
	}

	order := models.Order{
		UserID:           in.UserID,
		TotalAmount:      *in.TotalAmount,
		Currency:         currency,
		CustomerEmail:    optional(strings.ToLower(in.Email)),
		ShippingAddress:  optional(in.Shipping.Address),
		ShippingCity:     optional(in.Shipping.City),
		ShippingState:    optional(in.Shipping.State),
		ShippingZip:      optional(in.Shipping.Zip),
		ShippingCountry:  optional(in.Shipping.Country),
		PhoneNumber:      optional(in.Shipping.Phone),
		PaymentStatus:    status,
		PaymentProvider:  optional(in.PaymentProvider),
		PaymentReference: optional(in.PaymentReference),
	}
	if len(in.Metadata) > 0 {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidOrder, err)
		}
		order.Metadata = datatypes.JSON(raw)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(in.Items))
		for _, item := range in.Items {
			items = append(items, models.OrderItem{
				OrderID:         order.ID,
				ProductID:       item.ProductID,
				ProductName:     strings.TrimSpace(item.ProductName),
				Quantity:        item.Quantity,
				PriceAtPurchase: item.Price,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}
		order.OrderItems = items
		return nil
	})
	if err != nil {
		logger.Error(ctx, "Error in order transaction", err)
		return nil, apperrors.Wrap(apperrors.ErrDatabaseTx, err)
	}

	logger.Info(ctx, "Order created", zap.Uint("order_id", order.ID), zap.String("payment_status", status))

	if status == models.PaymentStatusPaid {
		s.sendConfirmation(ctx, &order)
	}
	s.publish(ctx, EventOrderCreated, &order)

	return &order, nil
}

// MarkPaid moves a pending order to paid. It reports false when the order was
// already paid, in which case nothing is changed or sent.
func (s *OrderService) MarkPaid(ctx context.Context, provider, reference string, details models.ShippingDetails) (*models.Order, bool, error) {
	var order models.Order
	changed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_provider = ? AND payment_reference = ?", provider, reference).First(&order).Error; err != nil {
			return err
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			return nil
		}

		updates := map[string]any{"payment_status": models.PaymentStatusPaid}
		fill := func(column, value string) {
			if v := optional(value); v != nil {
				updates[column] = *v
			}
		}
		fill("customer_email", strings.ToLower(details.Email))
		fill("shipping_address", details.Address)
		fill("shipping_city", details.City)
		fill("shipping_state", details.State)
		fill("shipping_zip", details.Zip)
		fill("shipping_country", details.Country)
		fill("phone_number", details.Phone)

		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status <> ?", order.ID, models.PaymentStatusPaid).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected > 0
		return tx.Preload("OrderItems").First(&order, order.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperrors.ErrOrderNotFound
		}
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if !changed {
		logger.Info(ctx, "Order already paid, skipping", zap.Uint("order_id", order.ID))
		return &order, false, nil
	}

	logger.Info(ctx, "Order marked paid", zap.Uint("order_id", order.ID), zap.String("provider", provider))
	s.sendConfirmation(ctx, &order)
	s.publish(ctx, EventOrderPaid, &order)
	return &order, true, nil
}

// MarkFailed moves a pending order to failed. Paid orders are never downgraded.
func (s *OrderService) MarkFailed(ctx context.Context, provider, reference string) error {
	order, err := s.FindByReference(ctx, provider, reference)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, models.PaymentStatusPending).
		Update("payment_status", models.PaymentStatusFailed)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected > 0 {
		order.PaymentStatus = models.PaymentStatusFailed
		logger.Info(ctx, "Order marked failed", zap.Uint("order_id", order.ID), zap.String("provider", provider))
		s.publish(ctx, EventOrderFailed, order)
	}
	return nil
}

// SetPaymentReference attaches a gateway reference to an order created before the gateway call
func (s *OrderService) SetPaymentReference(ctx context.Context, orderID uint, reference string) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_reference", reference)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrOrderNotFound
	}
	return nil
}

// FindByReference returns the order paid through provider under reference
func (s *OrderService) FindByReference(ctx context.Context, provider, reference string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Where("payment_provider = ? AND payment_reference = ?", provider, reference).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrOrderNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &order, nil
}

// Discard removes a pending order whose payment could not be started
func (s *OrderService) Discard(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND payment_status = ?", orderID, models.PaymentStatusPending).Delete(&models.Order{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return tx.Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error
	})
}

// ListForUser returns the orders placed by the user, or with the user's email, newest first
func (s *OrderService) ListForUser(ctx context.Context, userID uint, email string) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Where("user_id = ? OR customer_email = ?", userID, strings.ToLower(email)).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &order, nil
}

func (s *OrderService) sendConfirmation(ctx context.Context, order *models.Order) {
	if order.CustomerEmail == nil || *order.CustomerEmail == "" {
		return
	}

	items := make([]utils.OrderEmailItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, utils.OrderEmailItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.PriceAtPurchase,
		})
	}

	subject, body, err := utils.RenderOrderConfirmation(utils.OrderEmailData{
		Email:       *order.CustomerEmail,
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		Items:       items,
		ShopURL:     s.shopURL,
	})
	if err != nil {
		logger.Error(ctx, "Failed to render order confirmation email", err, zap.Uint("order_id", order.ID))
		return
	}

	if err := s.mailer.Send(ctx, *order.CustomerEmail, subject, body); err != nil {
		logger.Error(ctx, "Failed to send order confirmation email", err, zap.Uint("order_id", order.ID))
		return
	}
	logger.Info(ctx, "Order confirmation email sent", zap.Uint("order_id", order.ID))
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if err := s.events.PublishOrderEvent(ctx, newOrderEvent(eventType, order)); err != nil {
		logger.Error(ctx, "Failed to publish order event", err, zap.String("type", eventType), zap.Uint("order_id", order.ID))
	}
}
