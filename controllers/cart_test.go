package controllers_test

import (
	"net/http"
	"testing"

	"github.com/nuthu-archive/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/cart", nil, "")
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestAddToCart(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.customerToken(t)
	product := env.createProduct(t, "Trench Coat", 9000, true)
	soldOut := env.createProduct(t, "Sold Out", 100, false)

	t.Run("validation", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/cart", map[string]any{"quantity": 1}, token)
		assertStatus(t, w, http.StatusBadRequest)
		assert.Equal(t, "Product ID is required", decode(t, w)["error"])

		w = env.do(http.MethodPost, "/api/cart", map[string]any{"productId": 9999}, token)
		assertStatus(t, w, http.StatusNotFound)
		assert.Equal(t, "Product not found", decode(t, w)["error"])

		w = env.do(http.MethodPost, "/api/cart", map[string]any{"productId": soldOut.ID}, token)
		assertStatus(t, w, http.StatusBadRequest)
		assert.Equal(t, "Product is out of stock", decode(t, w)["error"])
	})

	t.Run("merges lines without size", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/cart", map[string]any{"productId": product.ID}, token)
		assertStatus(t, w, http.StatusCreated)
		first := decode(t, w)
		assert.Equal(t, "Item added to cart", first["message"])

		w = env.do(http.MethodPost, "/api/cart", map[string]any{"productId": itoa(product.ID), "quantity": 2}, token)
		assertStatus(t, w, http.StatusOK)
		second := decode(t, w)
		assert.Equal(t, "Cart updated", second["message"])
		assert.Equal(t, first["cartItemId"], second["cartItemId"])

		var item models.CartItem
		require.NoError(t, env.db.First(&item, uint(first["cartItemId"].(float64))).Error)
		assert.Equal(t, 3, item.Quantity)
		assert.Nil(t, item.Size)
	})

	t.Run("separate line per size", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/cart", map[string]any{"productId": product.ID, "size": "M"}, token)
		assertStatus(t, w, http.StatusCreated)
		w = env.do(http.MethodPost, "/api/cart", map[string]any{"productId": product.ID, "size": "M"}, token)
		assertStatus(t, w, http.StatusOK)

		var count int64
		env.db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&count)
		assert.Equal(t, int64(2), count)
	})
}

func TestGetCart(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.customerToken(t)
	other := env.createUser(t, "other@example.com", "password123", true, models.RoleCustomer)
	product := env.createProduct(t, "Loafers", 5500, true)

	size := "42"
	require.NoError(t, env.db.Create(&models.CartItem{UserID: other.ID, ProductID: product.ID, Quantity: 1}).Error)
	w := env.do(http.MethodPost, "/api/cart", map[string]any{"productId": product.ID, "quantity": 2, "size": size}, token)
	assertStatus(t, w, http.StatusCreated)

	w = env.do(http.MethodGet, "/api/cart", nil, token)
	assertStatus(t, w, http.StatusOK)

	items := decode(t, w)["cartItems"].([]any)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, float64(product.ID), line["id"])
	assert.Equal(t, "Loafers", line["name"])
	assert.Equal(t, 5500.0, line["price"])
	assert.Equal(t, 2.0, line["quantity"])
	assert.Equal(t, "42", line["size"])
	assert.Equal(t, true, line["in_stock"])
	assert.NotZero(t, line["cartItemId"])
}

func TestUpdateAndRemoveCartItems(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.customerToken(t)
	other := env.createUser(t, "other@example.com", "password123", true, models.RoleCustomer)
	product := env.createProduct(t, "Cap", 900, true)

	mine := models.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 1}
	theirs := models.CartItem{UserID: other.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, env.db.Create(&mine).Error)
	require.NoError(t, env.db.Create(&theirs).Error)

	w := env.do(http.MethodPut, "/api/cart/"+itoa(mine.ID), map[string]any{"quantity": 0}, token)
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "Valid quantity is required", decode(t, w)["error"])

	w = env.do(http.MethodPut, "/api/cart/"+itoa(theirs.ID), map[string]any{"quantity": 4}, token)
	assertStatus(t, w, http.StatusNotFound)

	w = env.do(http.MethodPut, "/api/cart/"+itoa(mine.ID), map[string]any{"quantity": 4}, token)
	assertStatus(t, w, http.StatusOK)
	require.NoError(t, env.db.First(&mine, mine.ID).Error)
	assert.Equal(t, 4, mine.Quantity)

	w = env.do(http.MethodDelete, "/api/cart/"+itoa(theirs.ID), nil, token)
	assertStatus(t, w, http.StatusNotFound)

	w = env.do(http.MethodDelete, "/api/cart/"+itoa(mine.ID), nil, token)
	assertStatus(t, w, http.StatusOK)

	require.NoError(t, env.db.Create(&models.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 2}).Error)
	w = env.do(http.MethodDelete, "/api/cart", nil, token)
	assertStatus(t, w, http.StatusOK)

	var mineLeft, theirsLeft int64
	env.db.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&mineLeft)
	env.db.Model(&models.CartItem{}).Where("user_id = ?", other.ID).Count(&theirsLeft)
	assert.Zero(t, mineLeft)
	assert.Equal(t, int64(1), theirsLeft)
}
