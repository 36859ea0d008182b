package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/item-share-backend/internal/pkg/request"
)

// Query selects a filtered page of a subject's bookings. Now is the instant
// PAST/CURRENT/FUTURE classify against; it is supplied by the service so the
// same request is reproducible under test.
type Query struct {
	State State
	Now   time.Time
	Page  request.PageParams
}

type Repository interface {
	Create(ctx context.Context, b *Booking) error

	// GetByIDForOwner resolves a booking only when ownerID owns the booked
	// item. A booking that exists but belongs to someone else's item is
	// reported as not found.
	GetByIDForOwner(ctx context.Context, bookingID, ownerID string) (*Booking, error)

	// GetByIDForParticipant resolves a booking for its booker or the item's
	// owner, and nobody else.
	GetByIDForParticipant(ctx context.Context, bookingID, userID string) (*Booking, error)

	ListByBooker(ctx context.Context, bookerID string, q Query) ([]*Booking, error)
	ListByOwner(ctx context.Context, ownerID string, q Query) ([]*Booking, error)

	// HasOverlap checks whether an APPROVED booking for the item intersects
	// [start, end). excludeBookingID skips the booking under decision so a
	// booking never conflicts with itself at approval time.
	HasOverlap(ctx context.Context, itemID string, start, end time.Time, excludeBookingID string) (bool, error)

	// UpdateStatusFrom moves a booking from one status to another and reports
	// whether the row was in the expected status.
	UpdateStatusFrom(ctx context.Context, bookingID string, from, to Status) (bool, error)

	// ApproveIfFree atomically approves a WAITING booking unless a
	// conflicting APPROVED booking exists for the same item. The conflict
	// recheck and the status write are one statement, so two concurrent
	// approvals of overlapping bookings cannot both succeed.
	ApproveIfFree(ctx context.Context, b *Booking) (bool, error)

	// LastApprovedBefore returns every APPROVED booking for the items with
	// start before t, newest start first.
	LastApprovedBefore(ctx context.Context, itemIDs []string, t time.Time) ([]*Booking, error)

	// NextApprovedAfter returns every APPROVED booking for the items with
	// start after t.
	NextApprovedAfter(ctx context.Context, itemIDs []string, t time.Time) ([]*Booking, error)

	// CountPastApproved counts the booker's APPROVED bookings of the item
	// that ended before t.
	CountPastApproved(ctx context.Context, itemID, bookerID string, t time.Time) (int64, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{
	"b.id", "b.item_id", "i.name", "i.owner_id",
	"b.booker_id", "COALESCE(u.display_name, u.email)",
	"b.start_time", "b.end_time", "b.status", "b.created_at", "b.updated_at",
}

func bookingSelect() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.items i ON b.item_id = i.id").
		Join("public.users u ON b.booker_id = u.id")
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.ItemID, &b.ItemName, &b.OwnerID,
		&b.BookerID, &b.BookerName,
		&b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns("item_id", "booker_id", "start_time", "end_time", "status").
		Values(b.ItemID, b.BookerID, b.StartTime, b.EndTime, b.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *pgxRepository) GetByIDForOwner(ctx context.Context, bookingID, ownerID string) (*Booking, error) {
	query, args, err := bookingSelect().
		Where(squirrel.Eq{"b.id": bookingID, "i.owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking for owner failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) GetByIDForParticipant(ctx context.Context, bookingID, userID string) (*Booking, error) {
	query, args, err := bookingSelect().
		Where(squirrel.Eq{"b.id": bookingID}).
		Where(squirrel.Or{
			squirrel.Eq{"i.owner_id": userID},
			squirrel.Eq{"b.booker_id": userID},
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking for participant failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) ListByBooker(ctx context.Context, bookerID string, q Query) ([]*Booking, error) {
	return r.list(ctx, squirrel.Eq{"b.booker_id": bookerID}, q)
}

func (r *pgxRepository) ListByOwner(ctx context.Context, ownerID string, q Query) ([]*Booking, error) {
	return r.list(ctx, squirrel.Eq{"i.owner_id": ownerID}, q)
}

func (r *pgxRepository) list(ctx context.Context, subject squirrel.Eq, q Query) ([]*Booking, error) {
	query := bookingSelect().Where(subject)

	switch q.State {
	case StateAll:
		// no extra predicate
	case StatePast:
		query = query.Where(squirrel.Lt{"b.end_time": q.Now})
	case StateCurrent:
		query = query.Where(squirrel.LtOrEq{"b.start_time": q.Now}).
			Where(squirrel.GtOrEq{"b.end_time": q.Now})
	case StateFuture:
		query = query.Where(squirrel.Gt{"b.start_time": q.Now})
	case StateWaiting:
		query = query.Where(squirrel.Eq{"b.status": StatusWaiting})
	case StateRejected:
		query = query.Where(squirrel.Eq{"b.status": StatusRejected})
	default:
		return nil, ErrUnsupportedState
	}

	sql, args, err := query.
		OrderBy("b.start_time DESC").
		Limit(q.Page.Limit()).
		Offset(q.Page.Offset()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query failed: %w", err)
	}

	return r.queryBookings(ctx, sql, args)
}

func (r *pgxRepository) queryBookings(ctx context.Context, sql string, args []any) ([]*Booking, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

func (r *pgxRepository) HasOverlap(ctx context.Context, itemID string, start, end time.Time, excludeBookingID string) (bool, error) {
	// Half-open interval test: an existing booking conflicts when
	// existing.start < end AND existing.end > start. Only APPROVED rows
	// occupy the item; WAITING bookings may pile up on the same window.
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	subQuery := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"item_id": itemID, "status": StatusApproved}).
		Where(squirrel.Lt{"start_time": end}).
		Where(squirrel.Gt{"end_time": start})

	if excludeBookingID != "" {
		subQuery = subQuery.Where(squirrel.NotEq{"id": excludeBookingID})
	}

	sql, args, err := subQuery.ToSql()
	if err != nil {
		return false, fmt.Errorf("build check overlap query failed: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS ("+sql+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap failed: %w", err)
	}
	return exists, nil
}

func (r *pgxRepository) UpdateStatusFrom(ctx context.Context, bookingID string, from, to Status) (bool, error) {
	const query = `
		UPDATE public.bookings
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`

	ct, err := r.pool.Exec(ctx, query, to, bookingID, from)
	if err != nil {
		return false, fmt.Errorf("update booking status failed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgxRepository) ApproveIfFree(ctx context.Context, b *Booking) (bool, error) {
	// Single-statement recheck+write: the NOT EXISTS guard and the status
	// update commit together, closing the window between a conflict check in
	// the service and the write.
	const query = `
		UPDATE public.bookings b
		SET status = $1, updated_at = now()
		WHERE b.id = $2 AND b.status = $3
		AND NOT EXISTS (
			SELECT 1 FROM public.bookings o
			WHERE o.item_id = $4 AND o.status = $1 AND o.id <> b.id
			AND o.start_time < $6 AND o.end_time > $5
		)
	`

	ct, err := r.pool.Exec(ctx, query,
		StatusApproved, b.ID, StatusWaiting, b.ItemID, b.StartTime, b.EndTime)
	if err != nil {
		return false, fmt.Errorf("approve booking failed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgxRepository) LastApprovedBefore(ctx context.Context, itemIDs []string, t time.Time) ([]*Booking, error) {
	query, args, err := bookingSelect().
		Where(squirrel.Eq{"b.item_id": itemIDs, "b.status": StatusApproved}).
		Where(squirrel.Lt{"b.start_time": t}).
		OrderBy("b.start_time DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build last bookings query failed: %w", err)
	}

	return r.queryBookings(ctx, query, args)
}

func (r *pgxRepository) NextApprovedAfter(ctx context.Context, itemIDs []string, t time.Time) ([]*Booking, error) {
	query, args, err := bookingSelect().
		Where(squirrel.Eq{"b.item_id": itemIDs, "b.status": StatusApproved}).
		Where(squirrel.Gt{"b.start_time": t}).
		OrderBy("b.start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build next bookings query failed: %w", err)
	}

	return r.queryBookings(ctx, query, args)
}

func (r *pgxRepository) CountPastApproved(ctx context.Context, itemID, bookerID string, t time.Time) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM public.bookings
		WHERE item_id = $1 AND booker_id = $2 AND status = $3 AND end_time < $4
	`

	var count int64
	if err := r.pool.QueryRow(ctx, query, itemID, bookerID, StatusApproved, t).Scan(&count); err != nil {
		return 0, fmt.Errorf("count past bookings failed: %w", err)
	}
	return count, nil
}
