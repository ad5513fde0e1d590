package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) (port.CartRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &cartRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *cartRepository) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	if sessionID == "" {
		return domain.Cart{}, fmt.Errorf("sessionID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Cart, error) {
		dbCart, err := q.EnsureCart(ctx, db.EnsureCartParams{
			ID:           uuid.New(),
			SessionToken: sessionID,
		})
		if err != nil {
			return domain.Cart{}, fmt.Errorf("q.EnsureCart: %w", err)
		}

		return loadCart(ctx, q, dbCart)
	})
}

func (r *cartRepository) FindCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	if sessionID == "" {
		return domain.Cart{}, fmt.Errorf("sessionID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Cart, error) {
		dbCart, err := findCart(ctx, q, sessionID)
		if err != nil {
			return domain.Cart{}, err
		}

		return loadCart(ctx, q, dbCart)
	})
}

func (r *cartRepository) AddItem(ctx context.Context, sessionID string, item domain.NewCartItem) (domain.CartItem, error) {
	if sessionID == "" {
		return domain.CartItem{}, fmt.Errorf("sessionID is empty")
	}
	if item.Quantity <= 0 {
		return domain.CartItem{}, fmt.Errorf("quantity must be positive: %d", item.Quantity)
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.CartItem, error) {
		dbCart, err := q.EnsureCart(ctx, db.EnsureCartParams{
			ID:           uuid.New(),
			SessionToken: sessionID,
		})
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("q.EnsureCart: %w", err)
		}

		row, err := q.UpsertCartItem(ctx, db.UpsertCartItemParams{
			ID:            uuid.New(),
			CartID:        dbCart.ID,
			ProductID:     item.ProductID,
			Title:         item.Title,
			PriceAmount:   item.Price.Amount,
			PriceCurrency: item.Price.Currency.String(),
			Image:         item.Image,
			Quantity:      item.Quantity,
		})
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("q.UpsertCartItem: %w", err)
		}

		cartItem, err := mapCartItemToDomain(row)
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("mapCartItemToDomain: %w", err)
		}

		return cartItem, nil
	})
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, sessionID string, productID int64, quantity int32) (int64, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("sessionID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (int64, error) {
		dbCart, err := findCart(ctx, q, sessionID)
		if err != nil {
			return 0, err
		}

		rowsAffected, err := q.SetCartItemQuantity(ctx, db.SetCartItemQuantityParams{
			CartID:    dbCart.ID,
			ProductID: productID,
			Quantity:  quantity,
		})
		if err != nil {
			return 0, fmt.Errorf("q.SetCartItemQuantity: %w", err)
		}

		return rowsAffected, nil
	})
}

func (r *cartRepository) DeleteItem(ctx context.Context, sessionID string, productID int64) (int64, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("sessionID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (int64, error) {
		dbCart, err := findCart(ctx, q, sessionID)
		if err != nil {
			return 0, err
		}

		rowsAffected, err := q.DeleteCartItem(ctx, db.DeleteCartItemParams{
			CartID:    dbCart.ID,
			ProductID: productID,
		})
		if err != nil {
			return 0, fmt.Errorf("q.DeleteCartItem: %w", err)
		}

		return rowsAffected, nil
	})
}

func (r *cartRepository) ClearCart(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, fmt.Errorf("sessionID is empty")
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (int64, error) {
		dbCart, err := findCart(ctx, q, sessionID)
		if err != nil {
			return 0, err
		}

		rowsAffected, err := q.ClearCartItems(ctx, dbCart.ID)
		if err != nil {
			return 0, fmt.Errorf("q.ClearCartItems: %w", err)
		}

		return rowsAffected, nil
	})
}

func findCart(ctx context.Context, q *db.Queries, sessionID string) (db.Cart, error) {
	dbCart, err := q.GetCartBySession(ctx, sessionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Cart{}, domain.ErrCartNotFound
	}
	if err != nil {
		return db.Cart{}, fmt.Errorf("q.GetCartBySession: %w", err)
	}

	return dbCart, nil
}

func loadCart(ctx context.Context, q *db.Queries, dbCart db.Cart) (domain.Cart, error) {
	rows, err := q.ListCartItems(ctx, dbCart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.ListCartItems: %w", err)
	}

	items, err := mapCartItemsToDomain(rows)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapCartItemsToDomain: %w", err)
	}

	return domain.Cart{
		ID:        dbCart.ID,
		SessionID: dbCart.SessionToken,
		Items:     items,
		CreatedAt: dbCart.CreatedAt,
	}, nil
}

func mapCartItemToDomain(row db.CartItem) (domain.CartItem, error) {
	parsedCurrency, err := currency.ParseISO(row.PriceCurrency)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("currency[%s] is not valid: %w", row.PriceCurrency, err)
	}

	return domain.CartItem{
		ID:        row.ID,
		CartID:    row.CartID,
		ProductID: row.ProductID,
		Title:     row.Title,
		Price:     domain.Money{Amount: row.PriceAmount, Currency: parsedCurrency},
		Image:     row.Image,
		Quantity:  row.Quantity,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func mapCartItemsToDomain(rows []db.CartItem) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0, len(rows))

	for _, row := range rows {
		item, err := mapCartItemToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartItemToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
