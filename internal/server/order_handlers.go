package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/graylock-sec/graylock/internal/models"
	"github.com/graylock-sec/graylock/internal/tasks"
)

// CheckoutItem is one requested product line in a checkout
type CheckoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest represents a public checkout request
type CreateOrderRequest struct {
	Email string         `json:"email" binding:"required,email"`
	Items []CheckoutItem `json:"items" binding:"required,min=1,dive"`
}

// CreateOrderResponse returns the created order and, when the payment
// provider is configured, the client secret to complete payment
type CreateOrderResponse struct {
	Order        *models.Order `json:"order"`
	ClientSecret string        `json:"client_secret,omitempty"`
}

// UpdateOrderStatusRequest represents an admin order status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary Checkout
// @Description Create an order from a cart; totals are computed server-side
// @Tags orders
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Checkout request"
// @Success 201 {object} CreateOrderResponse
// @Failure 400 {object} map[string]interface{}
// @Router /api/orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Price every line from the store; client-sent prices are ignored
	var (
		total float64
		items []models.OrderItem
	)
	for _, item := range req.Items {
		var product models.Product
		if err := models.FindByID(s.db, item.ProductID, &product); err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown product in cart"})
				return
			}
			s.logger.Error().Err(err).Str("product_id", item.ProductID).Msg("Failed to load product")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if product.Stock < item.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock for " + product.Name})
			return
		}

		total += product.Price * float64(item.Quantity)
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
	}

	order := models.Order{
		Email:  req.Email,
		Status: models.OrderPending,
		Total:  total,
		Items:  items,
	}

	if err := s.db.Create(&order).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to create order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	// Payment intent failure cancels the order rather than leaving an
	// unpayable PENDING row behind
	var clientSecret string
	intent, err := s.payments.CreateIntent(c.Request.Context(), order.ID, order.Total, "usd")
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to create payment intent")
		if dbErr := s.db.Model(&order).Update("status", models.OrderCancelled).Error; dbErr != nil {
			s.logger.Error().Err(dbErr).Str("order_id", order.ID).Msg("Failed to cancel order")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment could not be initiated"})
		return
	}
	if intent != nil {
		clientSecret = intent.ClientSecret
		if err := s.db.Model(&order).Update("payment_intent_id", intent.ID).Error; err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to store payment intent id")
		}
		order.PaymentIntentID = intent.ID
	}

	// Confirmation email is delivered out of band by the worker
	if task, err := tasks.NewOrderConfirmationTask(order.ID); err == nil {
		if _, err := s.asynqClient.Enqueue(task); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("Failed to enqueue confirmation email")
		}
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Float64("total", order.Total).
		Int("items", len(order.Items)).
		Msg("Order created")

	c.JSON(http.StatusCreated, CreateOrderResponse{Order: &order, ClientSecret: clientSecret})
}

// getOrder lets a customer look up their own order; the email must
// match since there is no customer login.
//
// @Router /api/orders/{id} [get]
// @Param id path string true "Order ID"
// @Param email query string true "Order email"
// @Success 200 {object} models.Order
// @Failure 404 {object} map[string]interface{}
func (s *Server) getOrder(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	var order models.Order
	err := s.db.Where("id = ? AND email = ?", c.Param("id"), email).
		Preload("Items").
		Preload("Items.Product").
		First(&order).Error
	if err != nil {
		s.respondStoreError(c, err, "Order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// @Router /api/admin/orders [get]
// @Success 200 {array} models.Order
func (s *Server) adminListOrders(c *gin.Context) {
	query := s.db.Preload("Items").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		if !models.ValidOrderStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// @Router /api/admin/orders/{id} [get]
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
func (s *Server) adminGetOrder(c *gin.Context) {
	var order models.Order
	if err := models.FindByIDWithPreload(s.db, c.Param("id"), &order, "Items", "Items.Product"); err != nil {
		s.respondStoreError(c, err, "Order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// @Router /api/admin/orders/{id}/status [patch]
// @Param id path string true "Order ID"
// @Param request body UpdateOrderStatusRequest true "Status change"
// @Success 200 {object} models.Order
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
func (s *Server) adminUpdateOrderStatus(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	var order models.Order
	if err := models.FindByIDWithPreload(s.db, c.Param("id"), &order, "Items"); err != nil {
		s.respondStoreError(c, err, "Order")
		return
	}

	if err := s.db.Model(&order).Update("status", models.OrderStatus(req.Status)).Error; err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to update order status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}
	order.Status = models.OrderStatus(req.Status)

	sess, _ := GetSession(c)
	s.logger.Info().
		Str("order_id", order.ID).
		Str("status", req.Status).
		Str("updated_by", sess.UserID).
		Msg("Order status updated")

	c.JSON(http.StatusOK, order)
}
