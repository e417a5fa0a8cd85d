package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc       *usecase.CartUsecase
	currency string
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, currency string) *CartHandler {
	return &CartHandler{uc: uc, currency: currency}
}

// quantityは整数チェックのため生のまま受ける
type AddCartRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  json.RawMessage `json:"quantity"`
}

// 省略時は1。整数以外（1.5, "2", null）はエラー
func (r AddCartRequest) quantity() (int64, error) {
	if len(r.Quantity) == 0 {
		return 1, nil
	}
	if bytes.Equal(bytes.TrimSpace(r.Quantity), []byte("null")) {
		return 0, usecase.ErrInvalidQuantity
	}
	var q int64
	if err := json.Unmarshal(r.Quantity, &q); err != nil {
		return 0, usecase.ErrInvalidQuantity
	}
	return q, nil
}

type cartItemView struct {
	usecase.CartItemResponse
	PriceDisplay     string `json:"price_display"`
	LineTotalDisplay string `json:"line_total_display"`
}

type cartView struct {
	Items        []cartItemView `json:"items"`
	TotalCents   int64          `json:"total_cents"`
	TotalDisplay string         `json:"total_display"`
	Count        int64          `json:"count"`
}

type cartCountView struct {
	Count int64 `json:"count"`
}

// /cart, /cart/items, /cart/count を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.getCart)
	g.GET("/count", h.count)
	g.POST("/items", h.addToCart)
	g.DELETE("", h.clear)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ViewCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, h.present(out))
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	qty, err := req.quantity()
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.AddToCart(c.Request().Context(), userID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  qty,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, h.present(out))
}

func (h *CartHandler) clear(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.ClearCart(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) count(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	n, err := h.uc.CartCount(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, cartCountView{Count: n})
}

func (h *CartHandler) present(out usecase.CartResponse) cartView {
	items := make([]cartItemView, 0, len(out.Items))
	for _, it := range out.Items {
		items = append(items, cartItemView{
			CartItemResponse: it,
			PriceDisplay:     formatPrice(it.PriceCents, h.currency),
			LineTotalDisplay: formatPrice(it.LineTotalCents, h.currency),
		})
	}
	return cartView{
		Items:        items,
		TotalCents:   out.TotalCents,
		TotalDisplay: formatPrice(out.TotalCents, h.currency),
		Count:        out.Count,
	}
}
