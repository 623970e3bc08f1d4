package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hakimskills/marketplace-backend/internal/catalog"
	"github.com/hakimskills/marketplace-backend/internal/notify"
)

const defaultTxTimeout = 5 * time.Second

// Service owns cart submission and the order lifecycle. Stock and order rows
// are mutated here and nowhere else.
type Service struct {
	orders    Repository
	products  catalog.Repository
	notifier  notify.Dispatcher
	logger    *log.Logger
	txTimeout time.Duration
}

func NewService(orders Repository, products catalog.Repository, notifier notify.Dispatcher, logger *log.Logger) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		notifier:  notifier,
		logger:    logger,
		txTimeout: defaultTxTimeout,
	}
}

// SetTxTimeout overrides the bound on the cart-submission transaction.
func (s *Service) SetTxTimeout(d time.Duration) {
	if d > 0 {
		s.txTimeout = d
	}
}

type SubmitCartRequest struct {
	BuyerID           string     `json:"buyerId"`
	DeliveryAddress   string     `json:"deliveryAddress"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	Lines             []CartLine `json:"items"`
}

func (r *SubmitCartRequest) validate() error {
	if r.BuyerID == "" {
		return &ValidationError{Msg: "buyerId is required"}
	}
	if r.DeliveryAddress == "" {
		return &ValidationError{Msg: "deliveryAddress is required"}
	}
	if len(r.Lines) == 0 {
		return &ValidationError{Msg: "items must not be empty"}
	}
	for _, line := range r.Lines {
		if line.ProductID == "" {
			return &ValidationError{Msg: "items[].productId is required"}
		}
		if line.Quantity < 1 {
			return &ValidationError{Msg: "items[].quantity must be at least 1"}
		}
	}
	return nil
}

// SubmitCart splits the cart into one order per seller and creates them all
// inside a single transaction. Either every seller's order is created and
// every line's stock decremented, or nothing is.
func (s *Service) SubmitCart(ctx context.Context, req SubmitCartRequest) ([]Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	resolved, err := ResolveLines(ctx, s.products, req.Lines)
	if err != nil {
		return nil, err
	}
	drafts := BuildDrafts(resolved)

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.orders.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, &PersistenceError{Op: "begin tx", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orders := make([]Order, 0, len(drafts))
	now := time.Now().UTC()

	for _, draft := range drafts {
		o := Order{
			BuyerID:           req.BuyerID,
			SellerID:          draft.SellerID,
			OrderDate:         now,
			DeliveryAddress:   req.DeliveryAddress,
			EstimatedDelivery: req.EstimatedDelivery,
			Status:            StatusPending,
			PaymentStatus:     PaymentUnpaid,
		}

		for _, line := range draft.Lines {
			// Fresh read under the row lock closes the window between the
			// resolution-time stock check and this commit.
			p, err := s.products.GetForUpdate(ctx, tx, line.ProductID)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return nil, &ProductNotFoundError{ProductID: line.ProductID}
				}
				return nil, &PersistenceError{Op: "lock product " + line.ProductID, Err: err}
			}
			if line.Quantity > p.Stock {
				return nil, &InsufficientStockError{
					ProductID: line.ProductID,
					Requested: line.Quantity,
					Available: p.Stock,
				}
			}

			if err := s.products.DecrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return nil, &PersistenceError{Op: "decrement stock " + line.ProductID, Err: err}
			}

			o.Items = append(o.Items, LineItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				UnitPrice:   p.Price,
				SellerID:    draft.SellerID,
			})
			o.TotalAmount += p.Price * float64(line.Quantity)
		}

		if err := s.orders.CreateWithTx(ctx, tx, &o); err != nil {
			return nil, &PersistenceError{Op: "create order", Err: err}
		}
		orders = append(orders, o)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &PersistenceError{Op: "commit", Err: err}
	}
	return orders, nil
}

// actor roles for guarded transitions
const (
	roleSeller        = "seller"
	roleBuyer         = "buyer"
	roleBuyerOrSeller = "buyer or seller"
)

type transition struct {
	from  []Status
	to    Status
	role  string
	title string
	// message receives the comma-separated product names of the order
	message func(productNames string) string
	// recipients receives the order and returns who to notify; the actor's
	// counterparty for one-sided transitions, both parties on cancel
	recipients func(o *Order) []string
}

var (
	approveTransition = transition{
		from:  []Status{StatusPending},
		to:    StatusProcessing,
		role:  roleSeller,
		title: "Order Approved",
		message: func(names string) string {
			return fmt.Sprintf("Seller approved your order containing: %s.", names)
		},
		recipients: func(o *Order) []string { return []string{o.BuyerID} },
	}
	shipTransition = transition{
		from:  []Status{StatusProcessing},
		to:    StatusShipped,
		role:  roleSeller,
		title: "Order Shipped",
		message: func(names string) string {
			return fmt.Sprintf("Good news! Your order containing: %s has been shipped.", names)
		},
		recipients: func(o *Order) []string { return []string{o.BuyerID} },
	}
	deliverTransition = transition{
		from:  []Status{StatusShipped},
		to:    StatusDelivered,
		role:  roleBuyer,
		title: "Order Delivered",
		message: func(names string) string {
			return fmt.Sprintf("Buyer confirmed delivery of order containing: %s.", names)
		},
		recipients: func(o *Order) []string { return []string{o.SellerID} },
	}
	cancelTransition = transition{
		from:  []Status{StatusPending, StatusShipped},
		to:    StatusCanceled,
		role:  roleBuyerOrSeller,
		title: "Order Canceled",
		message: func(names string) string {
			return fmt.Sprintf("Order containing: %s has been canceled.", names)
		},
		recipients: func(o *Order) []string { return []string{o.BuyerID, o.SellerID} },
	}
)

// Approve moves a Pending order to Processing. Seller only.
func (s *Service) Approve(ctx context.Context, orderID, actorID string) (*Order, error) {
	return s.applyTransition(ctx, orderID, actorID, approveTransition)
}

// Ship moves a Processing order to Shipped. Seller only.
func (s *Service) Ship(ctx context.Context, orderID, actorID string) (*Order, error) {
	return s.applyTransition(ctx, orderID, actorID, shipTransition)
}

// Deliver moves a Shipped order to Delivered. Buyer only.
func (s *Service) Deliver(ctx context.Context, orderID, actorID string) (*Order, error) {
	return s.applyTransition(ctx, orderID, actorID, deliverTransition)
}

// Cancel moves a Pending or Shipped order to Canceled. Buyer or seller.
func (s *Service) Cancel(ctx context.Context, orderID, actorID string) (*Order, error) {
	return s.applyTransition(ctx, orderID, actorID, cancelTransition)
}

func (s *Service) applyTransition(ctx context.Context, orderID, actorID string, tr transition) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !statusIn(o.Status, tr.from) {
		return nil, &InvalidStateError{Required: tr.from, Actual: o.Status}
	}
	if err := authorize(o, actorID, tr.role); err != nil {
		return nil, err
	}

	// Conditional update so two racing transitions cannot both apply.
	updated, err := s.orders.UpdateStatusFrom(ctx, o.ID, o.Status, tr.to)
	if err != nil {
		return nil, &PersistenceError{Op: "apply transition", Err: err}
	}
	if !updated {
		current, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, &InvalidStateError{Required: tr.from, Actual: current.Status}
	}
	o.Status = tr.to

	message := tr.message(productNames(o.Items))
	for _, recipient := range tr.recipients(o) {
		s.dispatch(ctx, recipient, o.ID, tr.title, message)
	}
	return o, nil
}

// AdminUpdate is the unrestricted legacy path: it sets order and/or payment
// status directly, bypassing the guarded transitions and their actor rules.
// The buyer is notified when the order status actually changed.
func (s *Service) AdminUpdate(ctx context.Context, orderID string, status *Status, payment *PaymentStatus) (*Order, error) {
	if status != nil && !status.Valid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid order status: %s", *status)}
	}
	if payment != nil && !payment.Valid() {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid payment status: %s", *payment)}
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	oldStatus := o.Status
	if status != nil {
		o.Status = *status
	}
	if payment != nil {
		o.PaymentStatus = *payment
	}

	if err := s.orders.UpdateStatus(ctx, o.ID, o.Status, o.PaymentStatus); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "update order", Err: err}
	}

	if oldStatus != o.Status {
		s.dispatch(ctx, o.BuyerID, o.ID, "Order Updated",
			fmt.Sprintf("Your order status for %s.", o.Status))
	}
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) GetOrdersForSeller(ctx context.Context, sellerID string) ([]Order, error) {
	return s.orders.ListBySeller(ctx, sellerID)
}

func (s *Service) GetOrdersForBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	return s.orders.ListByBuyer(ctx, buyerID)
}

// DeleteOrder removes an order and its line items. Administrative path;
// stock is not restored.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	return s.orders.Delete(ctx, orderID)
}

// dispatch sends one notification and swallows failures: delivery is
// best-effort and never affects the outcome of the state change.
func (s *Service) dispatch(ctx context.Context, userID, orderID, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, orderID, title, message); err != nil {
		s.logger.Printf("notify user %s for order %s: %v", userID, orderID, err)
	}
}

func authorize(o *Order, actorID, role string) error {
	switch role {
	case roleSeller:
		if actorID != o.SellerID {
			return &UnauthorizedError{RequiredRole: roleSeller}
		}
	case roleBuyer:
		if actorID != o.BuyerID {
			return &UnauthorizedError{RequiredRole: roleBuyer}
		}
	case roleBuyerOrSeller:
		if actorID != o.BuyerID && actorID != o.SellerID {
			return &UnauthorizedError{RequiredRole: roleBuyerOrSeller}
		}
	}
	return nil
}

func statusIn(s Status, set []Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func productNames(items []LineItem) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		if it.ProductName != "" {
			names = append(names, it.ProductName)
		}
	}
	return strings.Join(names, ", ")
}
