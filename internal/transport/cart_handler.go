package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart payload. Quantity defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"omitnil,gte=1"`
}

func (req *AddItemRequest) UnmarshalJSON(data []byte) error {
	var body struct {
		ProductID string          `json:"productId"`
		Quantity  json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}

	quantity, err := middleware.DecodeWholeNumber("quantity", body.Quantity)
	if err != nil {
		return err
	}

	req.ProductID = body.ProductID
	req.Quantity = quantity
	return nil
}

// UpdateItemRequest represents the quantity update payload
type UpdateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=1"`
}

func (req *UpdateItemRequest) UnmarshalJSON(data []byte) error {
	var body struct {
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}

	quantity, err := middleware.DecodeWholeNumber("quantity", body.Quantity)
	if err != nil {
		return err
	}

	req.Quantity = quantity
	return nil
}

// CartHandler handles HTTP requests for the session cart
type CartHandler struct {
	cartService   service.CartService
	sessionHeader string
	logger        *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, sessionHeader string, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService:   cartService,
		sessionHeader: sessionHeader,
		logger:        logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Get("/summary", h.GetSummary)
		r.Post("/items", h.AddItem)
		r.Put("/items/{id}", h.UpdateItem)
		r.Delete("/items/{id}", h.RemoveItem)
	})
}

func (h *CartHandler) session(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(h.sessionHeader))
}

// AddItem handles adding a product to the caller's cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	requested := h.session(r)
	item, session, err := h.cartService.AddItem(r.Context(), req.ProductID, quantity, requested)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "product not found")
			return
		}
		respondWithServiceError(w, r, h.logger, "Failed to add item to cart", err)
		return
	}

	if requested == "" {
		middleware.RecordSessionMinted()
	}

	w.Header().Set(h.sessionHeader, session)
	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// GetCart returns the caller's cart with its items
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cartService.GetCart(r.Context(), h.session(r))
	if err != nil {
		respondWithServiceError(w, r, h.logger, "Failed to get cart", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// GetSummary returns item count and total; it always succeeds
func (h *CartHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary := h.cartService.GetSummary(r.Context(), h.session(r))
	middleware.RespondWithJSON(w, http.StatusOK, summary)
}

// UpdateItem overwrites the quantity of a cart item
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest

	// Body is validated before the id is looked up
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		respondWithDecodeError(w, h.logger, err)
		return
	}

	item, err := h.cartService.UpdateItemQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity)
	if err != nil {
		respondWithServiceError(w, r, h.logger, "Failed to update cart item", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, item)
}

// RemoveItem deletes a single cart item
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, r, h.logger, "Failed to remove cart item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ClearCart empties the caller's cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.ClearCart(r.Context(), h.session(r)); err != nil {
		respondWithServiceError(w, r, h.logger, "Failed to clear cart", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
