package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
	"github.com/noah-isme/catalog-pricing/internal/common"
)

// CustomerLookup resolves the customer a price is requested for.
type CustomerLookup interface {
	ByID(ctx context.Context, id uuid.UUID) (*catalog.Customer, error)
}

// Handler exposes the pricing engine over HTTP.
type Handler struct {
	Engine    *Engine
	Products  ProductLookup
	Customers CustomerLookup
	Validate  *validator.Validate
}

// NewHandler builds a handler with a ready validator.
func NewHandler(engine *Engine, products ProductLookup, customers CustomerLookup) *Handler {
	return &Handler{
		Engine:    engine,
		Products:  products,
		Customers: customers,
		Validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

type finalPriceRequest struct {
	ProductID        uuid.UUID       `json:"product_id" validate:"required"`
	CustomerID       uuid.UUID       `json:"customer_id" validate:"required"`
	AdditionalCharge decimal.Decimal `json:"additional_charge"`
	IncludeDiscounts bool            `json:"include_discounts"`
	Quantity         int             `json:"quantity" validate:"omitempty,min=1"`
	RentalStart      *time.Time      `json:"rental_start"`
	RentalEnd        *time.Time      `json:"rental_end"`
}

type cartLineRequest struct {
	ProductID            uuid.UUID        `json:"product_id" validate:"required"`
	CustomerID           uuid.UUID        `json:"customer_id" validate:"required"`
	CartType             catalog.CartType `json:"cart_type" validate:"omitempty,oneof=shopping_cart wishlist"`
	Quantity             int              `json:"quantity" validate:"omitempty,min=1"`
	AttributesPayload    string           `json:"attributes_payload"`
	CustomerEnteredPrice decimal.Decimal  `json:"customer_entered_price"`
	RentalStart          *time.Time       `json:"rental_start"`
	RentalEnd            *time.Time       `json:"rental_end"`
	IncludeDiscounts     *bool            `json:"include_discounts"`
}

type productCostRequest struct {
	ProductID         uuid.UUID `json:"product_id" validate:"required"`
	AttributesPayload string    `json:"attributes_payload"`
}

type priceResponse struct {
	Price          decimal.Decimal `json:"price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DiscountID     *uuid.UUID      `json:"discount_id,omitempty"`
	DiscountName   string          `json:"discount_name,omitempty"`
}

func toPriceResponse(r Result) priceResponse {
	resp := priceResponse{Price: r.Price, DiscountAmount: r.DiscountAmount}
	if r.Discount != nil {
		id := r.Discount.ID
		resp.DiscountID = &id
		resp.DiscountName = r.Discount.Name
	}
	return resp
}

// FinalPrice handles POST /final-price.
func (h *Handler) FinalPrice(w http.ResponseWriter, r *http.Request) {
	var req finalPriceRequest
	if !h.decode(w, r, &req) {
		return
	}
	product, customer, ok := h.resolve(w, r.Context(), req.ProductID, req.CustomerID)
	if !ok {
		return
	}
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	result, err := h.Engine.FinalPrice(r.Context(), product, customer, req.AdditionalCharge, req.IncludeDiscounts, quantity, req.RentalStart, req.RentalEnd)
	if err != nil {
		h.renderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toPriceResponse(result)})
}

// UnitPrice handles POST /unit-price.
func (h *Handler) UnitPrice(w http.ResponseWriter, r *http.Request) {
	h.priceLine(w, r, func(ctx context.Context, product *catalog.Product, customer *catalog.Customer, line catalog.CartLine, includeDiscounts bool) (Result, error) {
		return h.Engine.UnitPrice(ctx, product, customer, line, includeDiscounts)
	})
}

// Subtotal handles POST /subtotal.
func (h *Handler) Subtotal(w http.ResponseWriter, r *http.Request) {
	h.priceLine(w, r, func(ctx context.Context, product *catalog.Product, customer *catalog.Customer, line catalog.CartLine, includeDiscounts bool) (Result, error) {
		return h.Engine.Subtotal(ctx, product, customer, line, includeDiscounts)
	})
}

func (h *Handler) priceLine(w http.ResponseWriter, r *http.Request, price func(context.Context, *catalog.Product, *catalog.Customer, catalog.CartLine, bool) (Result, error)) {
	var req cartLineRequest
	if !h.decode(w, r, &req) {
		return
	}
	product, customer, ok := h.resolve(w, r.Context(), req.ProductID, req.CustomerID)
	if !ok {
		return
	}

	line := catalog.CartLine{
		CustomerID:           req.CustomerID,
		ProductID:            req.ProductID,
		CartType:             req.CartType,
		Quantity:             req.Quantity,
		AttributesPayload:    req.AttributesPayload,
		CustomerEnteredPrice: req.CustomerEnteredPrice,
		RentalStart:          req.RentalStart,
		RentalEnd:            req.RentalEnd,
	}
	if line.CartType == "" {
		line.CartType = catalog.CartTypeShoppingCart
	}
	includeDiscounts := true
	if req.IncludeDiscounts != nil {
		includeDiscounts = *req.IncludeDiscounts
	}

	result, err := price(r.Context(), product, customer, line, includeDiscounts)
	if err != nil {
		h.renderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toPriceResponse(result)})
}

// ProductCost handles POST /product-cost.
func (h *Handler) ProductCost(w http.ResponseWriter, r *http.Request) {
	var req productCostRequest
	if !h.decode(w, r, &req) {
		return
	}
	product, err := h.Products.ByID(r.Context(), req.ProductID)
	if err != nil {
		h.renderError(w, err)
		return
	}
	if product == nil {
		common.JSONError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
		return
	}

	cost, err := h.Engine.ProductCost(r.Context(), product, req.AttributesPayload)
	if err != nil {
		h.renderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"cost": cost}})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON", nil)
		return false
	}
	if err := h.Validate.Struct(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) resolve(w http.ResponseWriter, ctx context.Context, productID, customerID uuid.UUID) (*catalog.Product, *catalog.Customer, bool) {
	product, err := h.Products.ByID(ctx, productID)
	if err != nil {
		h.renderError(w, err)
		return nil, nil, false
	}
	if product == nil {
		common.JSONError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
		return nil, nil, false
	}
	customer, err := h.Customers.ByID(ctx, customerID)
	if err != nil {
		h.renderError(w, err)
		return nil, nil, false
	}
	if customer == nil {
		common.JSONError(w, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "customer not found", nil)
		return nil, nil, false
	}
	return product, customer, true
}

func (h *Handler) renderError(w http.ResponseWriter, err error) {
	var app *common.AppError
	switch {
	case errors.As(err, &app):
	case errors.Is(err, ErrNilProduct), errors.Is(err, ErrNilCustomer), errors.Is(err, ErrNilAttributeValue):
		app = common.NewAppError("INVALID_ARGUMENT", err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, ErrUnsupportedRentalPeriod):
		app = common.NewAppError("UNSUPPORTED_CONFIGURATION", err.Error(), http.StatusUnprocessableEntity, err)
	default:
		app = common.NewAppError("INTERNAL", "price computation failed", http.StatusInternalServerError, err)
	}
	common.JSONError(w, app.HTTPStatus, app.Code, app.Message, app.Details)
}
