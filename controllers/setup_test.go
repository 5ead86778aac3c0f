package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/nuthu-archive/storefront-api/controllers"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/nuthu-archive/storefront-api/routes"
	"github.com/nuthu-archive/storefront-api/services"
	"github.com/nuthu-archive/storefront-api/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []services.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, event services.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	server *gin.Engine
	db     *gorm.DB
	mailer *fakeMailer
	events *recordingPublisher
	deps   controllers.Dependencies
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = initializers.EnsureSchema(db)
	require.NoError(t, err)
	return db
}

// newTestEnv wires the full router against an in-memory database. configure
// may adjust the dependencies before they are installed.
func newTestEnv(t *testing.T, configure ...func(*controllers.Dependencies)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	initializers.DB = db
	initializers.Env = initializers.Config{
		ClientURL:              "http://shop.test",
		JWTSecret:              testJWTSecret,
		AdminEmails:            []string{"admin@example.com"},
		UploadsDir:             t.TempDir(),
		StripeAllowedCountries: "KE,US",
		StripeWebhookSecret:    "whsec_test",
	}

	mailer := &fakeMailer{}
	events := &recordingPublisher{}
	storage, err := services.NewLocalStorage(initializers.Env.UploadsDir)
	require.NoError(t, err)

	deps := controllers.Dependencies{
		Orders:       services.NewOrderService(db, mailer, events, initializers.Env.ClientURL),
		Verification: services.NewVerificationService(db, services.NewDBCodeStore(db), mailer),
		Mailer:       mailer,
		Storage:      storage,
	}
	for _, fn := range configure {
		fn(&deps)
	}
	controllers.Configure(deps)

	server := gin.New()
	server.Use(logger.RequestLogger())
	routes.RegisterRoutes(server, func(c *gin.Context) { c.Next() }, initializers.Env.UploadsDir)

	return &testEnv{server: server, db: db, mailer: mailer, events: events, deps: deps}
}

func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewBuffer(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createUser(t *testing.T, email, password string, verified bool, role string) models.User {
	t.Helper()
	hashed, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := models.User{Email: email, Password: hashed, Role: role}
	require.NoError(t, e.db.Create(&user).Error)
	if verified {
		require.NoError(t, e.db.Model(&user).Update("email_verified", true).Error)
		user.EmailVerified = true
	}
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, testJWTSecret)
	require.NoError(t, err)
	return token
}

func (e *testEnv) customerToken(t *testing.T) (models.User, string) {
	user := e.createUser(t, "buyer@example.com", "password123", true, models.RoleCustomer)
	return user, tokenFor(t, user)
}

func (e *testEnv) adminToken(t *testing.T) (models.User, string) {
	user := e.createUser(t, "admin@example.com", "password123", true, models.RoleAdmin)
	return user, tokenFor(t, user)
}

func (e *testEnv) createProduct(t *testing.T, name string, price float64, inStock bool) models.Product {
	t.Helper()
	product := models.Product{Name: name, Price: price, InStock: inStock}
	require.NoError(t, e.db.Create(&product).Error)
	return product
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
