package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/funkystitch/storefront/internal/core/domain"
	"github.com/funkystitch/storefront/internal/core/service"
)

type OrderHandler struct {
	orders *service.OrderService
	logger zerolog.Logger
}

func NewOrderHandler(orders *service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type orderItemResponse struct {
	ProductID       string                  `json:"product_id"`
	Name            string                  `json:"name"`
	Image           string                  `json:"image,omitempty"`
	Quantity        int                     `json:"quantity"`
	UnitPrice       decimal.Decimal         `json:"unit_price"`
	DiscountPercent decimal.Decimal         `json:"discount_percent"`
	Variant         *domain.VariantSelector `json:"variant,omitempty"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	Items           []orderItemResponse `json:"items"`
	ShippingAddress shippingAddressBody `json:"shipping_address"`
	PaymentMethod   string              `json:"payment_method"`
	ItemsPrice      decimal.Decimal     `json:"items_price"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	ShippingPrice   decimal.Decimal     `json:"shipping_price"`
	TaxPrice        decimal.Decimal     `json:"tax_price"`
	TotalPrice      decimal.Decimal     `json:"total_price"`
	Status          domain.OrderStatus  `json:"status"`
	IsPaid          bool                `json:"is_paid"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`
	IsDelivered     bool                `json:"is_delivered"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	Carrier         string              `json:"carrier,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

type shippingAddressBody struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	out := orderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		ShippingAddress: shippingAddressBody{
			Address:    o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		PaymentMethod:  o.PaymentMethod,
		ItemsPrice:     o.ItemsPrice,
		DiscountAmount: o.DiscountAmount,
		ShippingPrice:  o.ShippingPrice,
		TaxPrice:       o.TaxPrice,
		TotalPrice:     o.TotalPrice,
		Status:         o.Status,
		IsPaid:         o.IsPaid,
		PaidAt:         o.PaidAt,
		IsDelivered:    o.IsDelivered,
		DeliveredAt:    o.DeliveredAt,
		ShippedAt:      o.ShippedAt,
		TrackingNumber: o.TrackingNumber,
		Carrier:        o.Carrier,
		CreatedAt:      o.CreatedAt,
	}
	for _, it := range o.Items {
		item := orderItemResponse{
			ProductID:       it.ProductID,
			Name:            it.Name,
			Image:           it.Image,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
		}
		if it.Variant != nil {
			item.Variant = &domain.VariantSelector{Size: it.Variant.Size, Color: it.Variant.Color}
		}
		out.Items = append(out.Items, item)
	}
	return out
}

type placeOrderRequest struct {
	Items []struct {
		ProductID       string                  `json:"product_id"`
		Quantity        int                     `json:"quantity"`
		Variant         *domain.VariantSelector `json:"variant"`
		DiscountPercent decimal.Decimal         `json:"discount_percent"`
	} `json:"items"`
	ShippingAddress shippingAddressBody `json:"shipping_address"`
	PaymentMethod   string              `json:"payment_method"`
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.orders.PlaceOrder(r.Context(), userFrom(r.Context()).ID, req.toInput())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (req placeOrderRequest) toInput() service.PlaceOrderInput {
	in := service.PlaceOrderInput{
		ShippingAddress: domain.ShippingAddress{
			Address:    req.ShippingAddress.Address,
			City:       req.ShippingAddress.City,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.OrderLineInput{
			ProductID:       it.ProductID,
			Quantity:        it.Quantity,
			Variant:         it.Variant,
			DiscountPercent: it.DiscountPercent,
		})
	}
	return in
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"), user.ID, user.IsAdmin)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListMine(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// Track exposes the delivery progress of an order to its owner.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"), user.ID, user.IsAdmin)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":        order.ID,
		"status":          order.Status,
		"is_paid":         order.IsPaid,
		"paid_at":         order.PaidAt,
		"shipped_at":      order.ShippedAt,
		"delivered_at":    order.DeliveredAt,
		"tracking_number": order.TrackingNumber,
		"carrier":         order.Carrier,
	})
}

type stockAdjustmentResponse struct {
	ProductID string                  `json:"product_id"`
	Variant   *domain.VariantSelector `json:"variant,omitempty"`
	Quantity  int                     `json:"quantity"`
	Outcome   domain.StockOutcome     `json:"outcome"`
	Clamped   bool                    `json:"clamped,omitempty"`
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TransactionID == "" {
		writeError(w, http.StatusBadRequest, "transaction_id is required")
		return
	}

	user := userFrom(r.Context())
	order, adjustments, err := h.orders.PayOrder(r.Context(),
		chi.URLParam(r, "id"), user.ID, user.IsAdmin, req.TransactionID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	adjOut := make([]stockAdjustmentResponse, len(adjustments))
	for i, adj := range adjustments {
		adjOut[i] = stockAdjustmentResponse{
			ProductID: adj.ProductID,
			Variant:   adj.Variant,
			Quantity:  adj.Quantity,
			Outcome:   adj.Outcome,
			Clamped:   adj.Clamped,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order":             toOrderResponse(order),
		"stock_adjustments": adjOut,
	})
}

func (h *OrderHandler) Ship(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackingNumber string `json:"tracking_number"`
		Carrier        string `json:"carrier"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.orders.ShipOrder(r.Context(), chi.URLParam(r, "id"),
		req.TrackingNumber, req.Carrier)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.DeliverOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "order removed"})
}
