package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/nuthu-archive/storefront-api/apperrors"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type capturedMail struct {
	to, subject string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

func (m *captureMailer) Send(_ context.Context, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{to: to, subject: subject})
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (p *capturePublisher) PublishOrderEvent(_ context.Context, e OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.EmailVerification{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

func amount(v float64) *float64 { return &v }

func pendingInput(reference string) OrderInput {
	return OrderInput{
		TotalAmount:      amount(4500),
		Email:            "Shopper@Example.com",
		PaymentStatus:    models.PaymentStatusPending,
		PaymentProvider:  models.ProviderPaystack,
		PaymentReference: reference,
		Items:            []OrderItemInput{{ProductID: 1, ProductName: "Beaded Sandals", Quantity: 1, Price: 4500}},
	}
}

func TestCreateOrderRejectsInvalidInput(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)
	svc := NewOrderService(db, &captureMailer{}, &capturePublisher{}, "http://shop.test")

	cases := map[string]OrderInput{
		"no items":     {TotalAmount: amount(10)},
		"no total":     {Items: []OrderItemInput{{ProductID: 1, Quantity: 1}}},
		"no product":   {TotalAmount: amount(10), Items: []OrderItemInput{{Quantity: 1}}},
		"bad quantity": {TotalAmount: amount(10), Items: []OrderItemInput{{ProductID: 1, Quantity: 0}}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), in)
			assert.ErrorIs(t, err, apperrors.ErrInvalidOrder)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackWhenItemsFail(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	mailer := &captureMailer{}
	events := &capturePublisher{}
	svc := NewOrderService(db, mailer, events, "http://shop.test")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `orders`").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("INSERT INTO `order_items`").WillReturnError(errors.New("lock wait timeout exceeded"))
	mock.ExpectRollback()

	in := pendingInput("")
	in.PaymentStatus = models.PaymentStatusPaid
	_, err = svc.CreateOrder(context.Background(), in)

	assert.ErrorIs(t, err, apperrors.ErrDatabaseTx)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Zero(t, mailer.count())
	assert.Empty(t, events.events)
}

func TestCreateOrderSanitizesStatus(t *testing.T) {
	db := newSQLiteDB(t)
	svc := NewOrderService(db, &captureMailer{}, &capturePublisher{}, "http://shop.test")

	in := pendingInput("")
	in.PaymentStatus = "refunded"
	in.Currency = ""
	order, err := svc.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "kes", order.Currency)
	require.NotNil(t, order.CustomerEmail)
	assert.Equal(t, "shopper@example.com", *order.CustomerEmail)
	assert.Nil(t, order.PaymentReference)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	db := newSQLiteDB(t)
	mailer := &captureMailer{}
	events := &capturePublisher{}
	svc := NewOrderService(db, mailer, events, "http://shop.test")
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, pendingInput("NA-1-100"))
	require.NoError(t, err)
	assert.Zero(t, mailer.count())

	order, changed, err := svc.MarkPaid(ctx, models.ProviderPaystack, "NA-1-100", models.ShippingDetails{City: "Mombasa"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, created.ID, order.ID)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.ShippingCity)
	assert.Equal(t, "Mombasa", *order.ShippingCity)
	assert.Len(t, order.OrderItems, 1)

	_, changed, err = svc.MarkPaid(ctx, models.ProviderPaystack, "NA-1-100", models.ShippingDetails{})
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, 1, mailer.count())
	assert.Equal(t, "Order Confirmation #"+strconv.FormatUint(uint64(created.ID), 10)+" - Nuthu Archive", mailer.sent[0].subject)

	var types []string
	for _, e := range events.events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{EventOrderCreated, EventOrderPaid}, types)

	_, _, err = svc.MarkPaid(ctx, models.ProviderStripe, "NA-1-100", models.ShippingDetails{})
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
}

func TestMarkFailedNeverDowngradesPaid(t *testing.T) {
	db := newSQLiteDB(t)
	svc := NewOrderService(db, &captureMailer{}, &capturePublisher{}, "http://shop.test")
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, pendingInput("NA-2-100"))
	require.NoError(t, err)
	_, _, err = svc.MarkPaid(ctx, models.ProviderPaystack, "NA-2-100", models.ShippingDetails{})
	require.NoError(t, err)

	require.NoError(t, svc.MarkFailed(ctx, models.ProviderPaystack, "NA-2-100"))
	order, err := svc.FindByReference(ctx, models.ProviderPaystack, "NA-2-100")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)

	_, err = svc.CreateOrder(ctx, pendingInput("NA-3-100"))
	require.NoError(t, err)
	require.NoError(t, svc.MarkFailed(ctx, models.ProviderPaystack, "NA-3-100"))
	order, err = svc.FindByReference(ctx, models.ProviderPaystack, "NA-3-100")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, order.PaymentStatus)

	assert.ErrorIs(t, svc.MarkFailed(ctx, models.ProviderPaystack, "missing"), apperrors.ErrOrderNotFound)
}

func TestDiscardOnlyRemovesPendingOrders(t *testing.T) {
	db := newSQLiteDB(t)
	svc := NewOrderService(db, nil, nil, "http://shop.test")
	ctx := context.Background()

	pending, err := svc.CreateOrder(ctx, pendingInput(""))
	require.NoError(t, err)
	paidInput := pendingInput("")
	paidInput.PaymentStatus = models.PaymentStatusPaid
	paid, err := svc.CreateOrder(ctx, paidInput)
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ctx, pending.ID))
	require.NoError(t, svc.Discard(ctx, paid.ID))

	_, err = svc.Get(ctx, pending.ID)
	assert.ErrorIs(t, err, apperrors.ErrOrderNotFound)
	var items int64
	db.Model(&models.OrderItem{}).Where("order_id = ?", pending.ID).Count(&items)
	assert.Zero(t, items)

	kept, err := svc.Get(ctx, paid.ID)
	require.NoError(t, err)
	assert.Len(t, kept.OrderItems, 1)
}

func TestSetPaymentReference(t *testing.T) {
	db := newSQLiteDB(t)
	svc := NewOrderService(db, nil, nil, "http://shop.test")
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, pendingInput(""))
	require.NoError(t, err)

	require.NoError(t, svc.SetPaymentReference(ctx, order.ID, "NA-9-1"))
	found, err := svc.FindByReference(ctx, models.ProviderPaystack, "NA-9-1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	assert.ErrorIs(t, svc.SetPaymentReference(ctx, 999, "NA-999-1"), apperrors.ErrOrderNotFound)
}
