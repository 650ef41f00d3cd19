package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/cart"
	"github.com/adiprasetyo/lokalmart-backend/internal/coupons"
	"github.com/adiprasetyo/lokalmart-backend/internal/orders"
	"github.com/adiprasetyo/lokalmart-backend/internal/products"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/logger"
	"github.com/adiprasetyo/lokalmart-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Config carries the checkout tunables.
type Config struct {
	OrderNumberPrefix string
}

// Service converts a cart into orders, one order per cart line.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
}

// OrderCreatedEvent is emitted per order synthesized at checkout.
type OrderCreatedEvent struct {
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	UserID      uuid.UUID  `json:"user_id"`
	SellerID    *uuid.UUID `json:"seller_id,omitempty"`
	ProductID   uuid.UUID  `json:"product_id"`
	Quantity    int        `json:"quantity"`
	Price       int64      `json:"price"`
}

type service struct {
	cart     cart.Repository
	products products.Repository
	coupons  coupons.Service
	orders   orders.Repository
	tx       txRunner
	outbox   outboxPublisher
	logg     *logger.Logger
	cfg      Config
}

// NewService wires a checkout service with the required dependencies.
func NewService(
	cartRepo cart.Repository,
	productsRepo products.Repository,
	couponsSvc coupons.Service,
	ordersRepo orders.Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	logg *logger.Logger,
	cfg Config,
) (Service, error) {
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if couponsSvc == nil {
		return nil, fmt.Errorf("coupons service required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if cfg.OrderNumberPrefix == "" {
		return nil, fmt.Errorf("order number prefix required")
	}
	return &service{
		cart:     cartRepo,
		products: productsRepo,
		coupons:  couponsSvc,
		orders:   ordersRepo,
		tx:       tx,
		outbox:   outboxSvc,
		logg:     logg,
		cfg:      cfg,
	}, nil
}

// Checkout creates one PENDING order per cart line. Each order commits in
// its own transaction with a fresh product read, coupon re-validation and
// the usage increment. The cart is cleared only after every line succeeds:
// a mid-way failure leaves the earlier orders committed and the cart
// intact, which is the documented retry boundary.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	items, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	created := make([]models.Order, 0, len(items))
	for index, item := range items {
		item := item
		var order *models.Order
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			var txErr error
			order, txErr = s.checkoutLine(ctx, tx, userID, item)
			return txErr
		})
		if err != nil {
			if s.logg != nil {
				fields := map[string]any{
					"cart_item_id":   item.ID.String(),
					"line_index":     index,
					"orders_created": len(created),
				}
				s.logg.Error(s.logg.WithFields(ctx, fields), "checkout aborted mid-cart", err)
			}
			return created, err
		}
		created = append(created, *order)
	}

	if err := s.cart.DeleteByUser(ctx, userID); err != nil {
		return created, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart after checkout")
	}
	return created, nil
}

func (s *service) checkoutLine(ctx context.Context, tx *gorm.DB, userID uuid.UUID, item models.CartItem) (*models.Order, error) {
	productsRepo := s.products.WithTx(tx)
	ordersRepo := s.orders.WithTx(tx)

	product, err := productsRepo.FindByIDForUpdate(ctx, item.ProductID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is no longer available")
	}
	if product.Stock < item.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")
	}

	// Pricing always starts from the authoritative product row, not the
	// cart snapshot.
	originalPrice := product.Price * int64(item.Quantity)
	var discount int64
	var couponCode *string

	if item.CouponCode != nil {
		coupon, err := s.coupons.ValidateTx(ctx, tx, coupons.ValidateInput{
			Code:      *item.CouponCode,
			ProductID: product.ID,
			SellerID:  product.SellerID,
		})
		if err != nil {
			return nil, err
		}
		if err := s.coupons.RedeemTx(ctx, tx, coupon.ID); err != nil {
			return nil, err
		}
		discount = coupon.DiscountAmount
		couponCode = &coupon.Code
	}

	price := originalPrice - discount
	if price < 0 {
		price = 0
	}

	number, err := orders.GenerateOrderNumber(s.cfg.OrderNumberPrefix, time.Now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
	}

	if err := productsRepo.Update(ctx, product.ID, map[string]any{
		"stock": gorm.Expr("stock - ?", item.Quantity),
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
	}

	order := &models.Order{
		OrderNumber:    number,
		UserID:         userID,
		SellerID:       product.SellerID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		Quantity:       item.Quantity,
		OriginalPrice:  originalPrice,
		DiscountAmount: discount,
		Price:          price,
		CouponCode:     couponCode,
		Status:         enums.OrderStatusPending,
	}
	if err := ordersRepo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: userID},
		Data: OrderCreatedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			SellerID:    order.SellerID,
			ProductID:   order.ProductID,
			Quantity:    order.Quantity,
			Price:       order.Price,
		},
	}); err != nil {
		return nil, err
	}
	return order, nil
}
