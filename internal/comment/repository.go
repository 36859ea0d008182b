package comment

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, c *Comment) error
	ListByItem(ctx context.Context, itemID string) ([]*Comment, error)
	// ListByItems fetches comments for several items in one query, grouped
	// by item.
	ListByItems(ctx context.Context, itemIDs []string) (map[string][]*Comment, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var commentColumns = []string{
	"c.id", "c.item_id", "c.author_id",
	"COALESCE(u.display_name, u.email)",
	"c.text", "c.created_at",
}

func commentSelect() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(commentColumns...).
		From("public.comments c").
		Join("public.users u ON c.author_id = u.id")
}

func scanComment(row pgx.Row) (*Comment, error) {
	var c Comment
	if err := row.Scan(
		&c.ID, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Text, &c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgxRepository) Create(ctx context.Context, c *Comment) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.comments").
		Columns("item_id", "author_id", "text").
		Values(c.ItemID, c.AuthorID, c.Text).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create comment query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt)
}

func (r *pgxRepository) ListByItem(ctx context.Context, itemID string) ([]*Comment, error) {
	query, args, err := commentSelect().
		Where(squirrel.Eq{"c.item_id": itemID}).
		OrderBy("c.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list comments query failed: %w", err)
	}

	return r.queryComments(ctx, query, args)
}

func (r *pgxRepository) ListByItems(ctx context.Context, itemIDs []string) (map[string][]*Comment, error) {
	grouped := make(map[string][]*Comment, len(itemIDs))
	if len(itemIDs) == 0 {
		return grouped, nil
	}

	query, args, err := commentSelect().
		Where(squirrel.Eq{"c.item_id": itemIDs}).
		OrderBy("c.created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list comments query failed: %w", err)
	}

	comments, err := r.queryComments(ctx, query, args)
	if err != nil {
		return nil, err
	}

	for _, c := range comments {
		grouped[c.ItemID] = append(grouped[c.ItemID], c)
	}
	return grouped, nil
}

func (r *pgxRepository) queryComments(ctx context.Context, query string, args []any) ([]*Comment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments failed: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment failed: %w", err)
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}
