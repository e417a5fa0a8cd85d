package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /products の公開API
type ProductHandler struct {
	uc       *usecase.ProductUsecase
	currency string
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase, currency string) *ProductHandler {
	return &ProductHandler{uc: uc, currency: currency}
}

type productView struct {
	model.Product
	PriceDisplay string `json:"price_display"`
}

type productListView struct {
	Items []productView `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products", h.list)
	e.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}

	// limit（default 20）
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	out, err := h.uc.ListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	view := productListView{
		Items: make([]productView, 0, len(out.Items)),
		Total: out.Total,
		Page:  out.Page,
		Limit: out.Limit,
	}
	for _, p := range out.Items {
		view.Items = append(view.Items, h.present(p))
	}
	return c.JSON(http.StatusOK, view)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, h.present(p))
}

func (h *ProductHandler) present(p model.Product) productView {
	return productView{Product: p, PriceDisplay: formatPrice(p.PriceCents, h.currency)}
}
