package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"productflow-backend/internal/domains/product/model"
	"productflow-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresProductRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &postgresProductRepository{
		pool: pool,
	}
}

const productColumns = `
	id, display_name, stage,
	informational_doc, specsheet_doc, pending_revisions,
	informational_comment, specsheet_comment,
	image_path, additional_images,
	version, created_at, updated_at
`

// =====================================================
// CREATE PRODUCT
// =====================================================

func (r *postgresProductRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (
			id, display_name, stage,
			informational_doc, specsheet_doc, pending_revisions,
			informational_comment, specsheet_comment,
			image_path, additional_images, version
		) VALUES (
			$1, $2, $3,
			$4, $5, $6,
			$7, $8,
			$9, $10, $11
		)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID,
		p.DisplayName,
		p.Stage,
		p.InformationalDoc,
		p.SpecsheetDoc,
		p.PendingRevisions,
		p.InformationalComment,
		p.SpecsheetComment,
		p.ImagePath,
		pq.Array(p.AdditionalImages),
		p.Version,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// =====================================================
// GET PRODUCT
// =====================================================

func (r *postgresProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// =====================================================
// UPDATE PRODUCT (OPTIMISTIC LOCKING)
// =====================================================

// Update writes the whole aggregate in one statement, guarded by the version
// the caller read. Zero matched rows means either the product vanished or a
// concurrent writer got there first.
func (r *postgresProductRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET display_name = $1,
			stage = $2,
			informational_doc = $3,
			specsheet_doc = $4,
			pending_revisions = $5,
			informational_comment = $6,
			specsheet_comment = $7,
			image_path = $8,
			additional_images = $9,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $10 AND version = $11
	`

	result, err := r.pool.Exec(ctx, query,
		p.DisplayName,
		p.Stage,
		p.InformationalDoc,
		p.SpecsheetDoc,
		p.PendingRevisions,
		p.InformationalComment,
		p.SpecsheetComment,
		p.ImagePath,
		pq.Array(p.AdditionalImages),
		p.ID,
		p.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, p.ID,
		).Scan(&exists); err == nil && !exists {
			return model.ErrProductNotFound
		}
		return model.ErrVersionMismatch
	}

	p.Version++
	return nil
}

// =====================================================
// LIST PRODUCTS
// =====================================================

func (r *postgresProductRepository) ListByStages(ctx context.Context, stages []model.Stage) ([]*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []interface{}{}

	if len(stages) > 0 {
		stageNames := make([]string, len(stages))
		for i, s := range stages {
			stageNames[i] = string(s)
		}
		query += ` WHERE stage = ANY($1)`
		args = append(args, pq.Array(stageNames))
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// =====================================================
// HISTORY
// =====================================================

func (r *postgresProductRepository) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	query := `
		INSERT INTO product_history (id, product_id, actor, title, description, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.ProductID,
		entry.Actor,
		entry.Title,
		entry.Description,
		entry.Category,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	return nil
}

func (r *postgresProductRepository) ListHistory(ctx context.Context, productID uuid.UUID) ([]*model.HistoryEntry, error) {
	query := `
		SELECT id, product_id, actor, title, description, category, created_at
		FROM product_history
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := []*model.HistoryEntry{}
	for rows.Next() {
		entry := &model.HistoryEntry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.ProductID,
			&entry.Actor,
			&entry.Title,
			&entry.Description,
			&entry.Category,
			&entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return entries, nil
}

// =====================================================
// PURGE
// =====================================================

func (r *postgresProductRepository) PurgeAll(ctx context.Context) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM product_history`); err != nil {
			return fmt.Errorf("failed to purge history: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM products`); err != nil {
			return fmt.Errorf("failed to purge products: %w", err)
		}
		return nil
	})
}

// =====================================================
// SCAN HELPERS
// =====================================================

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID,
		&p.DisplayName,
		&p.Stage,
		&p.InformationalDoc,
		&p.SpecsheetDoc,
		&p.PendingRevisions,
		&p.InformationalComment,
		&p.SpecsheetComment,
		&p.ImagePath,
		pq.Array(&p.AdditionalImages),
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
