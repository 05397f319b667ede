// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Service handles cart business logic for the HTTP layer
type Service struct {
	registry *Registry
	logger   logrus.FieldLogger
}

// NewService creates a new cart service
func NewService(registry *Registry, logger logrus.FieldLogger) *Service {
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ID             ItemID          `json:"id" binding:"required"`
	Name           string          `json:"name"`
	Collection     string          `json:"collection"`
	Category       string          `json:"category"`
	Price          string          `json:"price"`
	PriceNumber    decimal.Decimal `json:"priceNumber"`
	Image          string          `json:"image"`
	Description    string          `json:"description"`
	Specifications []string        `json:"specifications"`
	Quantity       int             `json:"quantity" binding:"omitempty,min=1"`
}

// LineItem converts the request into a cart line item
func (r *AddToCartRequest) LineItem() LineItem {
	collection := r.Collection
	if collection == "" {
		collection = r.Category
	}

	price := r.Price
	if price == "" {
		price = r.PriceNumber.String()
	}

	return LineItem{
		ID:             r.ID,
		Name:           r.Name,
		Collection:     collection,
		Price:          price,
		PriceNumber:    r.PriceNumber,
		Image:          r.Image,
		Description:    r.Description,
		Specifications: r.Specifications,
	}
}

// UpdateCartItemRequest represents update cart item request.
// Zero or negative quantities remove the item.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// Store exposes the cart of owner, e.g. for payment reconciliation
func (s *Service) Store(ctx context.Context, owner string) (*Store, error) {
	return s.registry.Store(ctx, owner)
}

// GetCart retrieves the cart of owner
func (s *Service) GetCart(ctx context.Context, owner string) (Snapshot, error) {
	store, err := s.registry.Store(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}
	return store.Snapshot(), nil
}

// AddToCart adds one unit of the requested product, or Quantity units when the
// request carries an explicit quantity
func (s *Service) AddToCart(ctx context.Context, owner string, req *AddToCartRequest) (Snapshot, error) {
	store, err := s.registry.Store(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}

	if req.Quantity > 0 {
		store.AddQuantity(ctx, req.LineItem(), req.Quantity)
	} else {
		store.AddToCart(ctx, req.LineItem())
	}

	return store.Snapshot(), nil
}

// UpdateCartItem updates quantity of a cart item
func (s *Service) UpdateCartItem(ctx context.Context, owner string, id ItemID, req *UpdateCartItemRequest) (Snapshot, error) {
	if req.Quantity == nil {
		return Snapshot{}, fmt.Errorf("quantity is required")
	}

	store, err := s.registry.Store(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}

	store.UpdateQuantity(ctx, id, *req.Quantity)
	return store.Snapshot(), nil
}

// RemoveFromCart removes an item from the cart
func (s *Service) RemoveFromCart(ctx context.Context, owner string, id ItemID) (Snapshot, error) {
	store, err := s.registry.Store(ctx, owner)
	if err != nil {
		return Snapshot{}, err
	}

	store.RemoveFromCart(ctx, id)
	return store.Snapshot(), nil
}

// ClearCart removes all items from the cart
func (s *Service) ClearCart(ctx context.Context, owner string) error {
	store, err := s.registry.Store(ctx, owner)
	if err != nil {
		return err
	}

	store.ClearCart(ctx)
	return nil
}

// GetCartItemCount returns the number of units in the cart
func (s *Service) GetCartItemCount(ctx context.Context, owner string) (int, error) {
	snap, err := s.GetCart(ctx, owner)
	if err != nil {
		return 0, err
	}
	return snap.Totals.TotalItems, nil
}

// MergeGuestCart moves the guest cart into the user cart when the shopper logs
// in. Quantities of ids present in both carts are summed.
func (s *Service) MergeGuestCart(ctx context.Context, guest, user string) (Snapshot, error) {
	userStore, err := s.registry.Store(ctx, user)
	if err != nil {
		return Snapshot{}, err
	}

	if guest == "" || guest == user {
		return userStore.Snapshot(), nil
	}

	guestStore, err := s.registry.Store(ctx, guest)
	if err != nil {
		return Snapshot{}, err
	}

	guestItems := guestStore.Snapshot().Items
	for _, item := range guestItems {
		userStore.AddQuantity(ctx, item, item.Quantity)
	}

	guestStore.ClearCart(ctx)
	s.registry.Forget(guest)

	s.logger.WithFields(logrus.Fields{
		"guest":  guest,
		"user":   user,
		"merged": len(guestItems),
	}).Info("Guest cart merged")

	return userStore.Snapshot(), nil
}
