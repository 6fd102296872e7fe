package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/catalog-pricing/internal/catalog"
)

// maxBundleDepth bounds recursion through bundled attribute values. Nothing in
// the catalog validates against a bundle referencing itself, so the engine
// cuts the chain here and treats the remainder as a zero contribution.
const maxBundleDepth = 8

type bundleDepthKey struct{}

// Result is the composite outcome of a price computation: the price itself,
// the absolute discount amount already subtracted from it, and the applied
// discount when one was.
type Result struct {
	Price          decimal.Decimal
	DiscountAmount decimal.Decimal
	Discount       *catalog.Discount
}

// Engine computes authoritative prices for catalog items. It holds no mutable
// state beyond injected configuration and collaborators, so a single instance
// serves concurrent requests.
type Engine struct {
	tier     TierPriceResolver
	rental   RentalPeriodCalculator
	selector DiscountSelector

	discounts DiscountEligibility
	products  ProductLookup
	parser    OptionPayloadParser
	cart      CartLookup
	cache     *PriceCache

	settings Settings
	metrics  Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

// EngineConfig wires an Engine's collaborators and policy.
type EngineConfig struct {
	Discounts  DiscountEligibility
	Categories CategoryLookup
	Products   ProductLookup
	Parser     OptionPayloadParser
	Cart       CartLookup
	Cache      *PriceCache
	Settings   Settings
	Metrics    Metrics
	Logger     zerolog.Logger
	Now        func() time.Time
}

// NewEngine validates the configuration and builds an engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Discounts == nil {
		return nil, errors.New("pricing: discount eligibility is required")
	}
	if cfg.Categories == nil {
		return nil, errors.New("pricing: category lookup is required")
	}
	if cfg.Products == nil {
		return nil, errors.New("pricing: product lookup is required")
	}
	if cfg.Parser == nil {
		return nil, errors.New("pricing: option payload parser is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cache := cfg.Cache
	if cache == nil {
		cache = &PriceCache{Logger: cfg.Logger, Metrics: cfg.Metrics}
	}
	return &Engine{
		selector: DiscountSelector{
			Eligibility: cfg.Discounts,
			Categories:  cfg.Categories,
			Settings:    cfg.Settings,
		},
		discounts: cfg.Discounts,
		products:  cfg.Products,
		parser:    cfg.Parser,
		cart:      cfg.Cart,
		cache:     cache,
		settings:  cfg.Settings,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       now,
	}, nil
}

// FinalPrice computes the unit price of a product for a customer: base price,
// then an active special price, then the best tier price, plus the additional
// charge from option adjustments, multiplied by rental periods, minus the
// preferred discount. The computation runs inside the price cache; the
// applied discount is re-resolved from its id after the cache read.
func (e *Engine) FinalPrice(ctx context.Context, product *catalog.Product, customer *catalog.Customer, additionalCharge decimal.Decimal, includeDiscounts bool, quantity int, rentalStart, rentalEnd *time.Time) (Result, error) {
	if product == nil {
		return Result{}, ErrNilProduct
	}
	if customer == nil {
		return Result{}, ErrNilCustomer
	}
	if quantity < 1 {
		quantity = 1
	}

	fp := Fingerprint{
		ProductID:        product.ID,
		AdditionalCharge: additionalCharge,
		IncludeDiscounts: includeDiscounts,
		Quantity:         quantity,
		RoleIDs:          customer.RoleIDs,
		StoreID:          customer.StoreID,
	}
	ttl := e.cache.TTL(product, e.settings)

	cached, err := e.cache.GetOrCompute(ctx, fp.Key(), ttl, func(ctx context.Context) (CachedPrice, error) {
		return e.computePrice(ctx, product, customer, additionalCharge, includeDiscounts, quantity, rentalStart, rentalEnd)
	})
	if err != nil {
		return Result{}, err
	}

	result := Result{Price: cached.Price, DiscountAmount: cached.DiscountAmount}
	if cached.DiscountID != uuid.Nil {
		discount, err := e.discounts.ByID(ctx, cached.DiscountID)
		if err != nil {
			return Result{}, fmt.Errorf("resolve discount %s: %w", cached.DiscountID, err)
		}
		result.Discount = discount
	}
	return result, nil
}

func (e *Engine) computePrice(ctx context.Context, product *catalog.Product, customer *catalog.Customer, additionalCharge decimal.Decimal, includeDiscounts bool, quantity int, rentalStart, rentalEnd *time.Time) (CachedPrice, error) {
	if e.metrics != nil {
		e.metrics.Computation()
	}

	price := product.Price
	if product.SpecialPriceActive(e.now()) {
		price = *product.SpecialPrice
	}

	if product.HasTierPrices {
		if tierPrice, ok := e.tier.Resolve(product, customer, quantity); ok && tierPrice.LessThan(price) {
			price = tierPrice
		}
	}

	price = price.Add(additionalCharge)

	if product.IsRental && rentalStart != nil && rentalEnd != nil {
		periods, err := e.rental.Periods(product, *rentalStart, *rentalEnd)
		if err != nil {
			return CachedPrice{}, err
		}
		price = price.Mul(decimal.NewFromInt(int64(periods)))
	}

	var (
		discountID     uuid.UUID
		discountAmount decimal.Decimal
	)
	if includeDiscounts {
		allowed, err := e.selector.AllowedDiscounts(ctx, product, customer)
		if err != nil {
			return CachedPrice{}, err
		}
		if best, ok := e.selector.Preferred(allowed, price); ok {
			discountAmount = AmountFor(best, price)
			discountID = best.ID
			price = price.Sub(discountAmount)
		}
	}

	if price.IsNegative() {
		price = decimal.Zero
	}

	e.logger.Debug().
		Str("product_id", product.ID.String()).
		Str("price", price.String()).
		Str("discount_amount", discountAmount.String()).
		Int("quantity", quantity).
		Msg("price computed")

	return CachedPrice{Price: price, DiscountID: discountID, DiscountAmount: discountAmount}, nil
}

// UnitPrice prices one unit of a cart line: an overridden combination price
// wins outright, otherwise option adjustments are summed into an additional
// charge and FinalPrice runs with the effective quantity. Customer-entered
// prices bypass the computation entirely. The result passes through the
// rounding policy.
func (e *Engine) UnitPrice(ctx context.Context, product *catalog.Product, customer *catalog.Customer, line catalog.CartLine, includeDiscounts bool) (Result, error) {
	if product == nil {
		return Result{}, ErrNilProduct
	}
	if customer == nil {
		return Result{}, ErrNilCustomer
	}

	combination, err := e.parser.ResolveCombination(ctx, product, line.AttributesPayload)
	if err != nil {
		return Result{}, fmt.Errorf("resolve combination: %w", err)
	}
	if combination != nil && combination.OverriddenPrice != nil {
		return e.rounded(Result{Price: *combination.OverriddenPrice}), nil
	}

	additionalCharge, err := e.attributesCharge(ctx, product, customer, line.AttributesPayload)
	if err != nil {
		return Result{}, err
	}

	if product.CustomerEntersPrice {
		return e.rounded(Result{Price: line.CustomerEnteredPrice}), nil
	}

	quantity, err := e.effectiveQuantity(ctx, customer, line)
	if err != nil {
		return Result{}, err
	}

	var rentalStart, rentalEnd *time.Time
	if product.IsRental {
		rentalStart, rentalEnd = line.RentalStart, line.RentalEnd
	}

	result, err := e.FinalPrice(ctx, product, customer, additionalCharge, includeDiscounts, quantity, rentalStart, rentalEnd)
	if err != nil {
		return Result{}, err
	}
	return e.rounded(result), nil
}

// Subtotal composes a cart line's unit price into a line subtotal. When the
// applied discount caps the discounted quantity below the line quantity, the
// line splits: capped units at the discounted unit price, the remainder at
// the discount-excluded unit price, and the reported discount amount covers
// the capped units only.
func (e *Engine) Subtotal(ctx context.Context, product *catalog.Product, customer *catalog.Customer, line catalog.CartLine, includeDiscounts bool) (Result, error) {
	unit, err := e.UnitPrice(ctx, product, customer, line, includeDiscounts)
	if err != nil {
		return Result{}, err
	}

	quantity := line.Quantity
	if quantity < 1 {
		quantity = 1
	}
	qty := decimal.NewFromInt(int64(quantity))

	if unit.Discount != nil && unit.Discount.MaxDiscountedQuantity > 0 && quantity > unit.Discount.MaxDiscountedQuantity {
		discountedQty := decimal.NewFromInt(int64(unit.Discount.MaxDiscountedQuantity))
		remainderQty := qty.Sub(discountedQty)

		full, err := e.UnitPrice(ctx, product, customer, line, false)
		if err != nil {
			return Result{}, err
		}

		return Result{
			Price:          unit.Price.Mul(discountedQty).Add(full.Price.Mul(remainderQty)),
			DiscountAmount: unit.DiscountAmount.Mul(discountedQty),
			Discount:       unit.Discount,
		}, nil
	}

	return Result{
		Price:          unit.Price.Mul(qty),
		DiscountAmount: unit.DiscountAmount.Mul(qty),
		Discount:       unit.Discount,
	}, nil
}

// ProductCost returns the purchase cost of a product together with the cost
// contribution of its selected option values.
func (e *Engine) ProductCost(ctx context.Context, product *catalog.Product, payload string) (decimal.Decimal, error) {
	if product == nil {
		return decimal.Zero, ErrNilProduct
	}

	cost := product.Cost
	values, err := e.parser.ParseValues(ctx, product, payload)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse option values: %w", err)
	}
	for _, value := range values {
		switch value.Kind {
		case catalog.AdjustmentSimple:
			cost = cost.Add(value.Cost)
		case catalog.AdjustmentBundledProduct:
			bundled, err := e.products.ByID(ctx, value.BundledProductID)
			if err != nil {
				return decimal.Zero, fmt.Errorf("resolve bundled product %s: %w", value.BundledProductID, err)
			}
			if bundled == nil {
				continue
			}
			qty := value.Quantity
			if qty < 1 {
				qty = 1
			}
			cost = cost.Add(bundled.Cost.Mul(decimal.NewFromInt(int64(qty))))
		}
	}
	return cost, nil
}

// Adjustment computes the price delta contributed by one selected attribute
// value. Simple values contribute their flat adjustment; bundled values
// contribute the referenced product's discounted final price times the value
// quantity. Unresolvable references contribute zero.
func (e *Engine) Adjustment(ctx context.Context, value *catalog.AttributeValue, customer *catalog.Customer) (decimal.Decimal, error) {
	if value == nil {
		return decimal.Zero, ErrNilAttributeValue
	}

	switch value.Kind {
	case catalog.AdjustmentBundledProduct:
		return e.bundledAdjustment(ctx, value, customer)
	default:
		return value.PriceAdjustment, nil
	}
}

func (e *Engine) bundledAdjustment(ctx context.Context, value *catalog.AttributeValue, customer *catalog.Customer) (decimal.Decimal, error) {
	depth, _ := ctx.Value(bundleDepthKey{}).(int)
	if depth >= maxBundleDepth {
		e.logger.Warn().
			Str("attribute_value_id", value.ID.String()).
			Str("bundled_product_id", value.BundledProductID.String()).
			Msg("bundle recursion limit reached")
		return decimal.Zero, nil
	}
	ctx = context.WithValue(ctx, bundleDepthKey{}, depth+1)

	bundled, err := e.products.ByID(ctx, value.BundledProductID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("resolve bundled product %s: %w", value.BundledProductID, err)
	}
	if bundled == nil {
		return decimal.Zero, nil
	}

	result, err := e.FinalPrice(ctx, bundled, customer, decimal.Zero, true, 1, nil, nil)
	if err != nil {
		return decimal.Zero, err
	}
	qty := value.Quantity
	if qty < 1 {
		qty = 1
	}
	return result.Price.Mul(decimal.NewFromInt(int64(qty))), nil
}

func (e *Engine) attributesCharge(ctx context.Context, product *catalog.Product, customer *catalog.Customer, payload string) (decimal.Decimal, error) {
	values, err := e.parser.ParseValues(ctx, product, payload)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse option values: %w", err)
	}
	charge := decimal.Zero
	for i := range values {
		adjustment, err := e.Adjustment(ctx, &values[i], customer)
		if err != nil {
			return decimal.Zero, err
		}
		charge = charge.Add(adjustment)
	}
	return charge, nil
}

func (e *Engine) effectiveQuantity(ctx context.Context, customer *catalog.Customer, line catalog.CartLine) (int, error) {
	quantity := line.Quantity
	if quantity < 1 {
		quantity = 1
	}
	if !e.settings.GroupTierPricesForDistinctCartLines || e.cart == nil {
		return quantity, nil
	}

	lines, err := e.cart.LinesFor(ctx, customer.ID, line.CartType, line.ProductID)
	if err != nil {
		return 0, fmt.Errorf("cart lines for %s: %w", line.ProductID, err)
	}
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	if total > 0 {
		return total, nil
	}
	return quantity, nil
}

func (e *Engine) rounded(r Result) Result {
	if !e.settings.RoundDuringCalculation {
		return r
	}
	r.Price = r.Price.Round(e.settings.CurrencyDecimals)
	return r
}
