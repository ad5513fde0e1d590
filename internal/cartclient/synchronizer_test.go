package cartclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

var errRemote = errors.New("connection reset")

// fakeAPI is an in-memory server cart. Setting err makes every call fail.
type fakeAPI struct {
	mu      sync.Mutex
	items   []domain.CartItem
	hasCart bool
	err     error
	calls   []string
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	block, entered, err := f.block, f.entered, f.err
	f.mu.Unlock()

	if block != nil {
		entered <- struct{}{}
		<-block
	}
	return err
}

func (f *fakeAPI) GetCart(context.Context) ([]domain.CartItem, error) {
	if err := f.record("get"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hasCart = true
	return append([]domain.CartItem(nil), f.items...), nil
}

func (f *fakeAPI) AddToCart(_ context.Context, item domain.NewCartItem) (domain.CartItem, error) {
	if err := f.record("add"); err != nil {
		return domain.CartItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hasCart = true

	for i := range f.items {
		if f.items[i].ProductID == item.ProductID {
			f.items[i].Quantity += item.Quantity
			return f.items[i], nil
		}
	}

	line := domain.CartItem{
		ID:        uuid.New(),
		ProductID: item.ProductID,
		Title:     item.Title,
		Price:     domain.Money{Amount: item.Price.Amount, Currency: currency.USD},
		Image:     item.Image,
		Quantity:  item.Quantity,
	}
	f.items = append(f.items, line)
	return line, nil
}

func (f *fakeAPI) UpdateCartItem(_ context.Context, productID int64, quantity int32) (int64, error) {
	if err := f.record("update"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasCart {
		return 0, domain.ErrCartNotFound
	}
	for i := range f.items {
		if f.items[i].ProductID == productID {
			f.items[i].Quantity = quantity
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeAPI) RemoveFromCart(_ context.Context, productID int64) (int64, error) {
	if err := f.record("remove"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ProductID == productID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeAPI) ClearCart(context.Context) (int64, bool, error) {
	if err := f.record("clear"); err != nil {
		return 0, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasCart {
		return 0, false, nil
	}
	n := int64(len(f.items))
	f.items = nil
	return n, true, nil
}

func (f *fakeAPI) failWith(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	r.sent = append(r.sent, n)
	r.mu.Unlock()
}

func (r *recordingNotifier) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return Notification{}
	}
	return r.sent[len(r.sent)-1]
}

func newSynchronizer(t *testing.T, api *fakeAPI) (*Synchronizer, *recordingNotifier) {
	t.Helper()

	notifier := &recordingNotifier{}
	s, err := New(api, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return s, notifier
}

var mug = domain.Product{ID: 7, Title: "Mug", Price: decimal.RequireFromString("9.99"), Image: "/mug.png"}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, nil, nil)
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	api := &fakeAPI{items: []domain.CartItem{
		{ProductID: 7, Title: "Mug", Price: domain.Money{Amount: decimal.RequireFromString("9.99")}, Quantity: 2},
		{ProductID: 8, Title: "Cup", Price: domain.Money{Amount: decimal.RequireFromString("3")}, Quantity: 1},
	}}
	s, _ := newSynchronizer(t, api)

	require.NoError(t, s.Load(context.Background()))

	assert.Len(t, s.Items(), 2)
	assert.True(t, decimal.RequireFromString("22.98").Equal(s.Total()))
	assert.False(t, s.Busy())
}

func TestLoad_FailureEmptiesAndNotifies(t *testing.T) {
	api := &fakeAPI{items: []domain.CartItem{{ProductID: 7, Quantity: 1}}}
	s, notifier := newSynchronizer(t, api)
	require.NoError(t, s.Load(context.Background()))

	api.failWith(errRemote)
	err := s.Load(context.Background())

	require.ErrorIs(t, err, errRemote)
	assert.Empty(t, s.Items())
	assert.Equal(t, VariantDestructive, notifier.last().Variant)
	assert.Equal(t, []string{"get", "get"}, api.callLog())
}

func TestAddItem(t *testing.T) {
	api := &fakeAPI{}
	s, notifier := newSynchronizer(t, api)
	ctx := context.Background()

	require.NoError(t, s.AddItem(ctx, mug, 0))

	items := s.Items()
	require.Len(t, items, 1)
	assert.EqualValues(t, 1, items[0].Quantity)
	assert.Equal(t, "Product added", notifier.last().Title)
	assert.Equal(t, "Mug has been added to the cart", notifier.last().Description)

	// cached line: redirected to update with the summed quantity
	require.NoError(t, s.AddItem(ctx, mug, 2))

	items = s.Items()
	require.Len(t, items, 1)
	assert.EqualValues(t, 3, items[0].Quantity)
	assert.Equal(t, []string{"add", "update"}, api.callLog())
	assert.True(t, decimal.RequireFromString("29.97").Equal(s.Total()))
}

func TestAddItem_AdoptsServerMergedQuantity(t *testing.T) {
	api := &fakeAPI{hasCart: true}
	s, _ := newSynchronizer(t, api)
	ctx := context.Background()

	// another tab added the mug after this cache was loaded
	require.NoError(t, s.Load(ctx))
	api.items = []domain.CartItem{{ProductID: 7, Title: "Mug", Quantity: 4}}

	require.NoError(t, s.AddItem(ctx, mug, 1))

	items := s.Items()
	require.Len(t, items, 1)
	assert.EqualValues(t, 5, items[0].Quantity)
}

func TestAddItem_FailureKeepsList(t *testing.T) {
	api := &fakeAPI{}
	s, notifier := newSynchronizer(t, api)
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, mug, 1))

	api.failWith(errRemote)
	err := s.AddItem(ctx, domain.Product{ID: 8, Title: "Cup"}, 1)

	require.ErrorIs(t, err, errRemote)
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, Notification{Title: "Error", Description: "Could not add the product to the cart", Variant: VariantDestructive}, notifier.last())
	assert.False(t, s.Busy())
}

func TestAddItem_QuantityLimit(t *testing.T) {
	api := &fakeAPI{}
	s, notifier := newSynchronizer(t, api)
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, mug, math.MaxInt32))

	err := s.AddItem(ctx, mug, 1)

	require.ErrorIs(t, err, ErrQuantityLimit)
	assert.Equal(t, []string{"add"}, api.callLog())
	items := s.Items()
	require.Len(t, items, 1)
	assert.EqualValues(t, math.MaxInt32, items[0].Quantity)
	assert.Equal(t, Notification{Title: "Error", Description: "Could not add the product to the cart", Variant: VariantDestructive}, notifier.last())
	assert.False(t, s.Busy())
}

func TestAddItem_NegativeQuantity(t *testing.T) {
	api := &fakeAPI{}
	s, notifier := newSynchronizer(t, api)
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, mug, 2))

	require.Error(t, s.AddItem(ctx, mug, -5))

	assert.Equal(t, []string{"add"}, api.callLog())
	require.Len(t, s.Items(), 1)
	assert.EqualValues(t, 2, s.Items()[0].Quantity)
	assert.Equal(t, VariantDestructive, notifier.last().Variant)
}

func TestUpdateItem(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int32
		wantCalls []string
		wantItems int
	}{
		{name: "positive quantity", quantity: 5, wantCalls: []string{"add", "update"}, wantItems: 1},
		{name: "zero redirects to remove", quantity: 0, wantCalls: []string{"add", "remove"}, wantItems: 0},
		{name: "negative redirects to remove", quantity: -1, wantCalls: []string{"add", "remove"}, wantItems: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			s, _ := newSynchronizer(t, api)
			ctx := context.Background()
			require.NoError(t, s.AddItem(ctx, mug, 1))

			require.NoError(t, s.UpdateItem(ctx, mug.ID, tt.quantity))

			assert.Equal(t, tt.wantCalls, api.callLog())
			items := s.Items()
			require.Len(t, items, tt.wantItems)
			if tt.wantItems > 0 {
				assert.Equal(t, tt.quantity, items[0].Quantity)
			}
		})
	}
}

func TestUpdateItem_CartNotFound(t *testing.T) {
	api := &fakeAPI{}
	s, notifier := newSynchronizer(t, api)

	err := s.UpdateItem(context.Background(), 7, 2)

	require.ErrorIs(t, err, domain.ErrCartNotFound)
	assert.Equal(t, "Could not update the product", notifier.last().Description)
}

func TestRemoveItem(t *testing.T) {
	api := &fakeAPI{}
	s, notifier := newSynchronizer(t, api)
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, mug, 1))

	require.NoError(t, s.RemoveItem(ctx, 42))
	assert.Len(t, s.Items(), 1)

	require.NoError(t, s.RemoveItem(ctx, mug.ID))
	assert.Empty(t, s.Items())
	assert.Equal(t, "Product removed", notifier.last().Title)
}

func TestClearItems(t *testing.T) {
	api := &fakeAPI{}
	s, notifier := newSynchronizer(t, api)
	ctx := context.Background()

	// no cart on the server yet is still a success
	require.NoError(t, s.ClearItems(ctx))

	require.NoError(t, s.AddItem(ctx, mug, 1))
	require.NoError(t, s.AddItem(ctx, domain.Product{ID: 8, Title: "Cup"}, 1))
	require.NoError(t, s.ClearItems(ctx))

	assert.Empty(t, s.Items())
	assert.True(t, s.Total().IsZero())
	assert.Equal(t, "Cart emptied", notifier.last().Title)
}

func TestClearItems_FailureKeepsList(t *testing.T) {
	api := &fakeAPI{}
	s, _ := newSynchronizer(t, api)
	ctx := context.Background()
	require.NoError(t, s.AddItem(ctx, mug, 1))

	api.failWith(errRemote)
	require.Error(t, s.ClearItems(ctx))

	assert.Len(t, s.Items(), 1)
}

func TestBusyRejectsSecondAction(t *testing.T) {
	api := &fakeAPI{
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	s, _ := newSynchronizer(t, api)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- s.AddItem(ctx, mug, 1)
	}()

	<-api.entered
	assert.True(t, s.Busy())

	err := s.AddItem(ctx, mug, 1)
	require.ErrorIs(t, err, ErrBusy)

	close(api.block)
	require.NoError(t, <-done)

	assert.False(t, s.Busy())
	assert.Equal(t, []string{"add"}, api.callLog())
	require.Len(t, s.Items(), 1)
	assert.EqualValues(t, 1, s.Items()[0].Quantity)
}

func TestItemsReturnsCopy(t *testing.T) {
	api := &fakeAPI{}
	s, _ := newSynchronizer(t, api)
	require.NoError(t, s.AddItem(context.Background(), mug, 1))

	items := s.Items()
	items[0].Quantity = 99

	assert.EqualValues(t, 1, s.Items()[0].Quantity)
}

func TestNotifierFunc(t *testing.T) {
	var got Notification
	n := NotifierFunc(func(_ context.Context, n Notification) { got = n })

	n.Notify(context.Background(), Notification{Title: "x"})

	assert.Equal(t, "x", got.Title)
}
