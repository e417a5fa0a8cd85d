package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc       *usecase.OrderUsecase
	currency string
}

func NewOrderHandler(uc *usecase.OrderUsecase, currency string) *OrderHandler {
	return &OrderHandler{uc: uc, currency: currency}
}

type orderItemView struct {
	usecase.OrderItemOutput
	PriceDisplay     string `json:"price_display"`
	LineTotalDisplay string `json:"line_total_display"`
}

type orderView struct {
	usecase.OrderOutput
	Items        []orderItemView `json:"items"`
	TotalDisplay string          `json:"total_display"`
}

type orderListView struct {
	Items []orderView `json:"items"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// POST /checkout と /orders を登録
func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	auth := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}

	e.POST("/checkout", h.checkout, auth...)

	g := e.Group("/orders", auth...)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

func (h *OrderHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Checkout(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, h.present(out))
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	outs, err := h.uc.ListOrders(c.Request().Context(), userID, usecase.ListOrdersInput{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	view := orderListView{Items: make([]orderView, 0, len(outs)), Page: page, Limit: limit}
	for _, o := range outs {
		view.Items = append(view.Items, h.present(o))
	}
	return c.JSON(http.StatusOK, view)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, h.present(out))
}

func (h *OrderHandler) present(o usecase.OrderOutput) orderView {
	items := make([]orderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemView{
			OrderItemOutput:  it,
			PriceDisplay:     formatPrice(it.PriceCents, h.currency),
			LineTotalDisplay: formatPrice(it.LineTotalCents, h.currency),
		})
	}
	return orderView{
		OrderOutput:  o,
		Items:        items,
		TotalDisplay: formatPrice(o.TotalCents, h.currency),
	}
}
