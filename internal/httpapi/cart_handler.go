package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ryghoul/akobylee/internal/domain"
	"github.com/ryghoul/akobylee/internal/service"
)

// CartItemView is one rendered cart line.
type CartItemView struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Price       string `json:"price"`
	Color       string `json:"color,omitempty"`
	Size        string `json:"size,omitempty"`
	Quantity    int    `json:"quantity"`
	Image       string `json:"image"`
}

// CartView is the fully re-rendered cart panel: every mutation returns
// the whole thing rather than a diff.
type CartView struct {
	Items           []CartItemView `json:"items"`
	Total           string         `json:"total"`
	Badge           int            `json:"badge"`
	Empty           bool           `json:"empty"`
	CheckoutEnabled bool           `json:"checkout_enabled"`
	Toast           string         `json:"toast,omitempty"`
}

func renderCart(cart *domain.Cart, toast string) CartView {
	view := CartView{
		Items: make([]CartItemView, 0, len(cart.Items)),
		Total: domain.FormatPrice(cart.Subtotal()),
		Badge: cart.Count(),
		Toast: toast,
	}
	for _, item := range cart.Items {
		image := item.Image
		if image == "" {
			image = "placeholder.jpg"
		}
		view.Items = append(view.Items, CartItemView{
			Name:        item.Name,
			DisplayName: item.DisplayName(),
			Price:       item.Price,
			Color:       item.Color,
			Size:        item.Size,
			Quantity:    item.Quantity,
			Image:       image,
		})
	}
	view.Empty = cart.Empty()
	view.CheckoutEnabled = !view.Empty
	return view
}

type CartHandler struct {
	carts   *service.CartService
	timeout time.Duration
}

func NewCartHandler(carts *service.CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{carts: carts, timeout: timeout}
}

type AddItemRequestDTO struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Color string `json:"color"`
	Size  string `json:"size"`
	Image string `json:"image"`
}

type AdjustQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, cartIDFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, renderCart(cart, ""))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "item name is required")
		return
	}
	if req.Price == "" {
		req.Price = "$0"
	}

	cart, err := h.carts.AddItem(ctx, cartIDFromContext(r.Context()), domain.CartItem{
		Name:  req.Name,
		Price: req.Price,
		Color: req.Color,
		Size:  req.Size,
		Image: req.Image,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	respondJSON(w, http.StatusCreated, renderCart(cart, "Added to cart!"))
}

func (h *CartHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respondError(w, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}

	var req AdjustQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Delta == 0 {
		respondError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	cart, err := h.carts.AdjustQuantity(ctx, cartIDFromContext(r.Context()), index, req.Delta)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update quantity")
		return
	}

	respondJSON(w, http.StatusOK, renderCart(cart, ""))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respondError(w, http.StatusBadRequest, "index must be a non-negative integer")
		return
	}

	cart, err := h.carts.RemoveItem(ctx, cartIDFromContext(r.Context()), index)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}

	respondJSON(w, http.StatusOK, renderCart(cart, ""))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	cartID := cartIDFromContext(r.Context())
	if err := h.carts.ClearCart(ctx, cartID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	respondJSON(w, http.StatusOK, renderCart(&domain.Cart{CartID: cartID}, ""))
}

func (h *CartHandler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}
