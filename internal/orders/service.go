package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adiprasetyo/lokalmart-backend/internal/points"
	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	pkgerrors "github.com/adiprasetyo/lokalmart-backend/pkg/errors"
	"github.com/adiprasetyo/lokalmart-backend/pkg/outbox"
	"github.com/adiprasetyo/lokalmart-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type expAwarder interface {
	AddExpTx(ctx context.Context, tx *gorm.DB, sellerID uuid.UUID, exp int) error
}

// Actor is the authenticated party driving an order mutation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
	Name   string
}

// Config carries the commerce tunables the order lifecycle needs.
type Config struct {
	RewardPoints  int64
	ExpPerOrder   int
	NumberPrefix  string
	PendingMaxAge time.Duration
}

// Service manages the order lifecycle after checkout has created the rows.
type Service interface {
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
	ListAll(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error)
	AttachPaymentProof(ctx context.Context, userID, orderID uuid.UUID, proofURL string) (*models.Order, error)
	CancelOwn(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	Transition(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
	ExpirePending(ctx context.Context, cutoff time.Time, batchSize int) (int, error)
}

// OrderStatusEvent is the payload for order lifecycle outbox events.
type OrderStatusEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      uuid.UUID         `json:"user_id"`
	SellerID    *uuid.UUID        `json:"seller_id,omitempty"`
	FromStatus  enums.OrderStatus `json:"from_status"`
	ToStatus    enums.OrderStatus `json:"to_status"`
}

// PaymentProofEvent is emitted when a buyer attaches a payment proof.
type PaymentProofEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
	ProofURL    string    `json:"proof_url"`
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	points points.Service
	stores expAwarder
	cfg    Config
}

// NewService wires an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, pointsSvc points.Service, storesSvc expAwarder, cfg Config) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if pointsSvc == nil {
		return nil, fmt.Errorf("points service required")
	}
	if storesSvc == nil {
		return nil, fmt.Errorf("stores service required")
	}
	if cfg.RewardPoints < 0 || cfg.ExpPerOrder < 0 {
		return nil, fmt.Errorf("reward tunables cannot be negative")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc, points: pointsSvc, stores: storesSvc, cfg: cfg}, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	switch {
	case actor.Role == enums.UserRoleAdmin:
	case order.UserID == actor.UserID:
	case order.SellerID != nil && *order.SellerID == actor.UserID:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID, params, filters)
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	if sellerID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	return s.repo.ListBySeller(ctx, sellerID, params, filters)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, string, error) {
	return s.repo.ListAll(ctx, params, filters)
}

func (s *service) AttachPaymentProof(ctx context.Context, userID, orderID uuid.UUID, proofURL string) (*models.Order, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id required")
	}
	url := strings.TrimSpace(proofURL)
	if url == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof url is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment proof only attaches to pending orders")
		}

		if err := repo.Update(ctx, order.ID, map[string]any{"payment_proof_url": url}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach payment proof")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentProofAdded,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: PaymentProofEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				UserID:      order.UserID,
				ProofURL:    url,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orderID)
}

func (s *service) CancelOwn(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
		}
		return s.applyTransition(ctx, tx, repo, order, enums.OrderStatusCancelled, &outbox.ActorRef{UserID: userID})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orderID)
}

// Transition moves an order along the PENDING→PROCESSED→COMPLETED or
// PENDING→CANCELLED machine. Sellers may only move their own orders;
// admins may move any.
func (s *service) Transition(ctx context.Context, actor Actor, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if actor.Role != enums.UserRoleAdmin {
			if order.SellerID == nil || *order.SellerID != actor.UserID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
			}
		}

		actorRef := &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
		if order.SellerID != nil && *order.SellerID == actor.UserID {
			actorRef.SellerID = order.SellerID
		}
		return s.applyTransition(ctx, tx, repo, order, target, actorRef)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orderID)
}

func (s *service) applyTransition(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, target enums.OrderStatus, actorRef *outbox.ActorRef) error {
	if !order.Status.CanTransitionTo(target) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, target))
	}

	if err := repo.Update(ctx, order.ID, map[string]any{"status": target}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	if target == enums.OrderStatusCompleted {
		if s.cfg.RewardPoints > 0 {
			reason := fmt.Sprintf("order %s completed", order.OrderNumber)
			if _, err := s.points.AddTransactionTx(ctx, tx, points.AddTransactionInput{
				UserID:    order.UserID,
				Amount:    s.cfg.RewardPoints,
				Type:      enums.PointTransactionEarn,
				Reason:    reason,
				ActorName: "system",
			}); err != nil {
				return err
			}
		}
		if order.SellerID != nil && s.cfg.ExpPerOrder > 0 {
			if err := s.stores.AddExpTx(ctx, tx, *order.SellerID, s.cfg.ExpPerOrder); err != nil {
				return err
			}
		}
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         actorRef,
		Data: OrderStatusEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			SellerID:    order.SellerID,
			FromStatus:  order.Status,
			ToStatus:    target,
		},
	})
}

// ExpirePending cancels PENDING orders created before the cutoff. Each order
// is cancelled in its own transaction so one bad row cannot stall the batch.
func (s *service) ExpirePending(ctx context.Context, cutoff time.Time, batchSize int) (int, error) {
	stale, err := s.repo.FindPendingOlderThan(ctx, cutoff, batchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find stale pending orders")
	}

	expired := 0
	for _, order := range stale {
		order := order
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			fresh, err := repo.FindByIDForUpdate(ctx, order.ID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload stale order")
			}
			if fresh.Status != enums.OrderStatusPending {
				return nil
			}
			if err := repo.Update(ctx, fresh.ID, map[string]any{"status": enums.OrderStatusCancelled}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire order")
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderExpired,
				AggregateType: enums.AggregateOrder,
				AggregateID:   fresh.ID,
				Version:       1,
				Data: OrderStatusEvent{
					OrderID:     fresh.ID,
					OrderNumber: fresh.OrderNumber,
					UserID:      fresh.UserID,
					SellerID:    fresh.SellerID,
					FromStatus:  enums.OrderStatusPending,
					ToStatus:    enums.OrderStatusCancelled,
				},
			})
		})
		if err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}
