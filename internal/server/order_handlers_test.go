package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graylock-sec/graylock/internal/models"
)

func seedProduct(t *testing.T, s *Server, slug string, price float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{Name: slug, Slug: slug, Price: price, Stock: stock}
	require.NoError(t, s.db.Create(product).Error)
	return product
}

func TestCreateOrder_TotalsComputedServerSide(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	p1 := seedProduct(t, s, "yubikey-5c", 55, 10)
	p2 := seedProduct(t, s, "faraday-bag", 25.5, 10)

	w := doJSON(t, s, http.MethodPost, "/api/orders", map[string]interface{}{
		"email": "buyer@example.com",
		"items": []map[string]interface{}{
			{"product_id": p1.ID, "quantity": 2},
			{"product_id": p2.ID, "quantity": 1},
		},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CreateOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Order)
	assert.Equal(t, models.OrderPending, resp.Order.Status)
	assert.Equal(t, 135.5, resp.Order.Total)
	assert.Len(t, resp.Order.Items, 2)

	// The wire format carries the total as a plain number
	raw := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	order := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(raw["order"], &order))
	assert.Equal(t, "135.5", string(order["total"]))
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/orders", map[string]interface{}{
		"email": "buyer@example.com",
		"items": []map[string]interface{}{
			{"product_id": "01ARZ3NDEKTSV4RRFFQ69G5FAV", "quantity": 1},
		},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unknown product in cart", decodeBody(t, w)["error"])
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	p := seedProduct(t, s, "lockpick-set", 40, 1)

	w := doJSON(t, s, http.MethodPost, "/api/orders", map[string]interface{}{
		"email": "buyer@example.com",
		"items": []map[string]interface{}{
			{"product_id": p.ID, "quantity": 5},
		},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder_RejectsEmptyCart(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/orders", map[string]interface{}{
		"email": "buyer@example.com",
		"items": []map[string]interface{}{},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrder_RequiresMatchingEmail(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)

	order := &models.Order{Email: "buyer@example.com", Status: models.OrderPending, Total: 10}
	require.NoError(t, s.db.Create(order).Error)

	w := doJSON(t, s, http.MethodGet, "/api/orders/"+order.ID+"?email=buyer@example.com", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/orders/"+order.ID+"?email=other@example.com", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/orders/"+order.ID, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	token := tokenForRole(t, s, "admin@graylock.example", models.RoleAdmin)

	order := &models.Order{Email: "buyer@example.com", Status: models.OrderPaid, Total: 55}
	require.NoError(t, s.db.Create(order).Error)

	w := doJSON(t, s, http.MethodPatch, "/api/admin/orders/"+order.ID+"/status", map[string]interface{}{
		"status": "SHIPPED",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "SHIPPED", body["status"])
	assert.Equal(t, 55.0, body["total"])

	var stored models.Order
	require.NoError(t, s.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderShipped, stored.Status)
}

func TestAdminUpdateOrderStatus_Unauthenticated(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)

	order := &models.Order{Email: "buyer@example.com", Status: models.OrderPending, Total: 10}
	require.NoError(t, s.db.Create(order).Error)

	w := doJSON(t, s, http.MethodPatch, "/api/admin/orders/"+order.ID+"/status", map[string]interface{}{
		"status": "SHIPPED",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", decodeBody(t, w)["error"])

	// The denied request must have no side effect
	var stored models.Order
	require.NoError(t, s.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderPending, stored.Status)
}

func TestAdminUpdateOrderStatus_UnknownStatus(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	token := tokenForRole(t, s, "admin@graylock.example", models.RoleAdmin)

	order := &models.Order{Email: "buyer@example.com", Status: models.OrderPending, Total: 10}
	require.NoError(t, s.db.Create(order).Error)

	w := doJSON(t, s, http.MethodPatch, "/api/admin/orders/"+order.ID+"/status", map[string]interface{}{
		"status": "TELEPORTED",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminListOrders_StatusFilter(t *testing.T) {
	s := newTestServer(t)
	setupSuperAdmin(t, s)
	token := tokenForRole(t, s, "admin@graylock.example", models.RoleAdmin)

	require.NoError(t, s.db.Create(&models.Order{Email: "a@example.com", Status: models.OrderPending, Total: 1}).Error)
	require.NoError(t, s.db.Create(&models.Order{Email: "b@example.com", Status: models.OrderPaid, Total: 2}).Error)

	w := doJSON(t, s, http.MethodGet, "/api/admin/orders?status=PAID", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var out []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "b@example.com", out[0].Email)

	w = doJSON(t, s, http.MethodGet, "/api/admin/orders?status=WRONG", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
