package cartclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// ErrBusy is returned when an action is started while another one is still in flight.
	ErrBusy = errors.New("cart action already in progress")
	// ErrQuantityLimit is returned when an add would take a line past domain.MaxItemQuantity.
	ErrQuantityLimit = errors.New("cart item quantity limit reached")
)

const addFailed = "Could not add the product to the cart"

// Synchronizer keeps the last known server cart in memory. The list is patched only after
// the remote call succeeds, so a failed action leaves it unchanged.
type Synchronizer struct {
	api      CartAPI
	notifier Notifier
	logger   *slog.Logger

	mu    sync.Mutex
	items []domain.CartItem
	busy  bool
}

func New(api CartAPI, notifier Notifier, logger *slog.Logger) (*Synchronizer, error) {
	if api == nil {
		return nil, fmt.Errorf("api is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}

	return &Synchronizer{
		api:      api,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "cart_synchronizer")),
	}, nil
}

// Items returns a copy of the cached lines in server order.
func (s *Synchronizer) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.items)
}

func (s *Synchronizer) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.ItemsTotal(s.items)
}

func (s *Synchronizer) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.busy
}

// Load replaces the cache with the server cart. On failure the cache is emptied; there is no retry.
func (s *Synchronizer) Load(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	items, err := s.api.GetCart(ctx)
	if err != nil {
		s.setItems(nil)
		return s.failed(ctx, "load", err, "Could not load the cart")
	}

	s.setItems(items)
	return nil
}

// AddItem adds quantity units of product, one when quantity is 0. A product that is already
// cached goes through the update path with the summed quantity.
func (s *Synchronizer) AddItem(ctx context.Context, product domain.Product, quantity int32) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return s.failed(ctx, "add", fmt.Errorf("quantity must be positive: %d", quantity), addFailed)
	}

	if existing, ok := s.find(product.ID); ok {
		total := int64(existing.Quantity) + int64(quantity)
		if total > domain.MaxItemQuantity {
			return s.failed(ctx, "add", fmt.Errorf("quantity %d: %w", total, ErrQuantityLimit), addFailed)
		}
		return s.update(ctx, product.ID, int32(total))
	}

	added, err := s.api.AddToCart(ctx, domain.NewCartItem{
		ProductID: product.ID,
		Title:     product.Title,
		Price:     domain.Money{Amount: product.Price},
		Image:     product.Image,
		Quantity:  quantity,
	})
	if err != nil {
		return s.failed(ctx, "add", err, addFailed)
	}

	// added may carry a quantity merged on the server from another tab
	s.mu.Lock()
	s.items = append(s.items, added)
	s.mu.Unlock()

	s.notifier.Notify(ctx, Notification{
		Title:       "Product added",
		Description: product.Title + " has been added to the cart",
		Variant:     VariantDefault,
	})

	return nil
}

// UpdateItem sets the line's quantity. A quantity <= 0 removes the line.
func (s *Synchronizer) UpdateItem(ctx context.Context, productID int64, quantity int32) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	return s.update(ctx, productID, quantity)
}

func (s *Synchronizer) RemoveItem(ctx context.Context, productID int64) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	return s.remove(ctx, productID)
}

func (s *Synchronizer) ClearItems(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if _, _, err := s.api.ClearCart(ctx); err != nil {
		return s.failed(ctx, "clear", err, "Could not empty the cart")
	}

	s.setItems(nil)

	s.notifier.Notify(ctx, Notification{
		Title:       "Cart emptied",
		Description: "All products have been removed from the cart",
		Variant:     VariantDefault,
	})

	return nil
}

func (s *Synchronizer) update(ctx context.Context, productID int64, quantity int32) error {
	if quantity <= 0 {
		return s.remove(ctx, productID)
	}

	updated, err := s.api.UpdateCartItem(ctx, productID, quantity)
	if err != nil {
		return s.failed(ctx, "update", err, "Could not update the product")
	}

	s.mu.Lock()
	i := indexOf(s.items, productID)
	switch {
	case i < 0:
	case updated == 0:
		// stale cache: the server has no such line
		s.items = slices.Delete(s.items, i, i+1)
	default:
		s.items[i].Quantity = quantity
	}
	s.mu.Unlock()

	s.notifier.Notify(ctx, Notification{
		Title:       "Cart updated",
		Description: "The product quantity has been updated",
		Variant:     VariantDefault,
	})

	return nil
}

func (s *Synchronizer) remove(ctx context.Context, productID int64) error {
	if _, err := s.api.RemoveFromCart(ctx, productID); err != nil {
		return s.failed(ctx, "remove", err, "Could not remove the product")
	}

	s.mu.Lock()
	s.items = slices.DeleteFunc(s.items, func(item domain.CartItem) bool {
		return item.ProductID == productID
	})
	s.mu.Unlock()

	s.notifier.Notify(ctx, Notification{
		Title:       "Product removed",
		Description: "The product has been removed from the cart",
		Variant:     VariantDefault,
	})

	return nil
}

func (s *Synchronizer) failed(ctx context.Context, action string, err error, description string) error {
	s.logger.WarnContext(ctx, "cart action failed",
		slog.String("action", action),
		slog.Any("err", err))

	s.notifier.Notify(ctx, Notification{
		Title:       "Error",
		Description: description,
		Variant:     VariantDestructive,
	})

	return fmt.Errorf("%s: %w", action, err)
}

func (s *Synchronizer) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Synchronizer) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *Synchronizer) find(productID int64) (domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.items, productID); i >= 0 {
		return s.items[i], true
	}
	return domain.CartItem{}, false
}

func (s *Synchronizer) setItems(items []domain.CartItem) {
	s.mu.Lock()
	s.items = slices.Clone(items)
	s.mu.Unlock()
}

func indexOf(items []domain.CartItem, productID int64) int {
	return slices.IndexFunc(items, func(item domain.CartItem) bool {
		return item.ProductID == productID
	})
}
