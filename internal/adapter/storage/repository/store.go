package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MikeRez0/ypshop/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

var (
	productColumns  = []string{"id", "name", "description", "price", "stock", "created_at"}
	customerColumns = []string{"id", "name", "email", "loyalty_points", "loyalty_tier", "created_at"}
	promoColumns    = []string{"id", "code", "discount_percent", "is_active", "expires_at", "min_order_amount"}
	orderColumns    = []string{"id", "customer_id", "status", "subtotal", "discount_amount", "total",
		"promo_code_used", "created_at", "refunded_at"}
)

// pgStore implements port.Store on top of a pool or a transaction.
type pgStore struct {
	q    querier
	qb   *sq.StatementBuilderType
	lock bool
}

func (s *pgStore) forUpdate(b sq.SelectBuilder) sq.SelectBuilder {
	if s.lock {
		return b.Suffix("FOR UPDATE")
	}
	return b
}

func (s *pgStore) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	statement := s.forUpdate(s.qb.
		Select(productColumns...).
		From("products").
		Where(sq.Eq{"id": id}))

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanProduct(s.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityProduct, id)
		}
		return nil, err
	}
	return p, nil
}

func (s *pgStore) UpdateStock(ctx context.Context, id uint64, delta int64) error {
	statement := s.qb.
		Update("products").
		Set("stock", sq.Expr("stock + ?", delta)).
		Where(sq.Eq{"id": id}).
		Where(sq.Expr("stock + ? >= 0", delta))

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	tag, err := s.q.Exec(ctx, sql, args...)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("product %d: %w", id, domain.ErrOutOfStock)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetProduct(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("product %d: %w", id, domain.ErrOutOfStock)
	}
	return nil
}

func (s *pgStore) GetCustomer(ctx context.Context, id uint64) (*domain.Customer, error) {
	statement := s.forUpdate(s.qb.
		Select(customerColumns...).
		From("customers").
		Where(sq.Eq{"id": id}))

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanCustomer(s.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityCustomer, id)
		}
		return nil, err
	}
	return c, nil
}

func (s *pgStore) UpdateLoyalty(ctx context.Context, id uint64, points int64, tier domain.Tier) error {
	statement := s.qb.
		Update("customers").
		Set("loyalty_points", points).
		Set("loyalty_tier", tier.String()).
		Where(sq.Eq{"id": id})

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	tag, err := s.q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityCustomer, id)
	}
	return nil
}

func (s *pgStore) GetPromo(ctx context.Context, code string) (*domain.PromoCode, error) {
	statement := s.qb.
		Select(promoColumns...).
		From("promo_codes").
		Where(sq.Eq{"code": code})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanPromo(s.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityPromo, code)
		}
		return nil, err
	}
	return p, nil
}

func (s *pgStore) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	orderSt := s.qb.
		Insert("orders").
		Columns("customer_id", "status", "subtotal", "discount_amount", "total",
			"promo_code_used", "created_at").
		Values(order.CustomerID, string(order.Status), order.Subtotal, order.Discount, order.Total,
			order.PromoCode, order.CreatedAt).
		Suffix("RETURNING id")

	sql, args, err := orderSt.ToSql()
	if err != nil {
		return nil, err
	}

	created := *order
	err = s.q.QueryRow(ctx, sql, args...).Scan(&created.ID)
	if err != nil {
		return nil, err
	}

	if len(order.Items) > 0 {
		itemsSt := s.qb.
			Insert("order_items").
			Columns("order_id", "product_id", "position", "quantity", "price_at_purchase")
		for i, item := range order.Items {
			itemsSt = itemsSt.Values(created.ID, item.ProductID, i, item.Quantity, item.UnitPrice)
		}

		sql, args, err = itemsSt.ToSql()
		if err != nil {
			return nil, err
		}
		if _, err = s.q.Exec(ctx, sql, args...); err != nil {
			return nil, err
		}
	}

	created.Items = append([]domain.OrderItem(nil), order.Items...)
	return &created, nil
}

func (s *pgStore) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	statement := s.forUpdate(s.qb.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}))

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	o, err := scanOrder(s.q.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFound(domain.EntityOrder, id)
		}
		return nil, err
	}

	items, err := s.loadItems(ctx, []uint64{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return o, nil
}

func (s *pgStore) UpdateOrderStatus(ctx context.Context, id uint64, status domain.OrderStatus, at time.Time) error {
	statement := s.qb.
		Update("orders").
		Set("status", string(status)).
		Where(sq.Eq{"id": id})
	if status == domain.OrderStatusRefunded {
		statement = statement.Set("refunded_at", at)
	}

	sql, args, err := statement.ToSql()
	if err != nil {
		return err
	}

	tag, err := s.q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(domain.EntityOrder, id)
	}
	return nil
}

func (s *pgStore) loadItems(ctx context.Context, orderIDs []uint64) (map[uint64][]domain.OrderItem, error) {
	statement := s.qb.
		Select("order_id", "product_id", "quantity", "price_at_purchase").
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "position")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uint64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var orderID uint64
		item := domain.OrderItem{}
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		result[orderID] = append(result[orderID], item)
	}

	return result, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	p := domain.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	c := domain.Customer{}
	var tier string
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.LoyaltyPoints, &tier, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	t, ok := domain.ParseTier(tier)
	if !ok {
		return nil, fmt.Errorf("customer %d: unknown tier %q", c.ID, tier)
	}
	c.Tier = t
	return &c, nil
}

func scanPromo(row pgx.Row) (*domain.PromoCode, error) {
	p := domain.PromoCode{}
	err := row.Scan(&p.ID, &p.Code, &p.DiscountPercent, &p.Active, &p.ExpiresAt, &p.MinOrderAmount)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := domain.Order{}
	var status string
	err := row.Scan(&o.ID, &o.CustomerID, &status, &o.Subtotal, &o.Discount, &o.Total,
		&o.PromoCode, &o.CreatedAt, &o.RefundedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
