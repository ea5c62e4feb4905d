package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"lessonhub/pkg/order"
	"lessonhub/pkg/otel"
)

// CreateOrderResponse acknowledges a stored order.
type CreateOrderResponse struct {
	Message    string `json:"message"`
	InsertedID string `json:"insertedId"`
}

// createOrder stores the request body as a new order.
// @Summary Create order
// @Accept json
// @Produce json
// @Param order body object true "Order"
// @Success 200 {object} CreateOrderResponse
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /orders [post]
func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) error {
	ctx, span := otel.AddSpan(r.Context(), "api.createOrder")
	defer span.End()

	o := order.Order{}
	if err := decodeObject(w, r, &o); err != nil {
		return err
	}
	if o == nil {
		o = order.Order{}
	}

	id, err := s.orders.Create(ctx, o)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	span.SetAttributes(attribute.String("order.id", id))
	if s.metrics != nil {
		s.metrics.OrdersCreatedTotal.Inc()
	}
	s.log.Info(ctx, "order saved", "order_id", id, "request_id", requestIDFrom(ctx))

	if s.notifier != nil {
		if err := s.notifier.OrderCreated(ctx, id, o); err != nil {
			s.log.Warn(ctx, "announce order", "order_id", id, "error", err)
			if s.metrics != nil {
				s.metrics.OrderNotifyFailures.Inc()
			}
		}
	}

	writeJSON(w, http.StatusOK, CreateOrderResponse{
		Message:    "Order saved successfully",
		InsertedID: id,
	})
	return nil
}

// getOrder retrieves an order by ID.
// @Summary Get order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} object
// @Failure 400 {object} MessageResponse
// @Failure 404 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /orders/{id} [get]
func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["id"]

	ctx, span := otel.AddSpan(r.Context(), "api.getOrder", attribute.String("order.id", id))
	defer span.End()

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get order %s: %w", id, err)
	}

	writeJSON(w, http.StatusOK, o)
	return nil
}
