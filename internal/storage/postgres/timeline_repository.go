package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/loyalty-oms/internal/domain"
)

const (
	timelineInsertSQL = `
		INSERT INTO timeline_events (order_id, user_id, type, reason, amount, occurred)
		VALUES ($1,$2,$3,$4,$5,$6)`
	// id разводит события с одинаковым occurred в порядке записи.
	timelineListSQL = `
		SELECT order_id, user_id, type, reason, amount, occurred
		FROM timeline_events
		WHERE order_id = $1
		ORDER BY occurred ASC, id ASC`
)

type timelineRepository struct {
	db *sql.DB
}

// NewTimelineRepository создаёт PostgreSQL-реализацию TimelineRepository.
func NewTimelineRepository(store *Store) domain.TimelineRepository {
	return &timelineRepository{db: store.DB()}
}

// Append пишет событие заказа. Сумма хранится как NUMERIC(20,2), NULL для событий без суммы.
func (r *timelineRepository) Append(ctx context.Context, event domain.TimelineEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if event.Occurred.IsZero() {
		event.Occurred = time.Now()
	}
	if event.Amount.Valid {
		event.Amount = domain.TimelineAmount(event.Amount.Decimal)
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, timelineInsertSQL,
		event.OrderID, event.UserID, event.Type, event.Reason, event.Amount, event.Occurred.UTC(),
	); err != nil {
		return fmt.Errorf("append %s event for order %s: %w", event.Type, event.OrderID, err)
	}
	return nil
}

func (r *timelineRepository) List(ctx context.Context, orderID string) ([]domain.TimelineEvent, error) {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, timelineListSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("list timeline of order %s: %w", orderID, err)
	}
	defer rows.Close()

	events := make([]domain.TimelineEvent, 0, 4)
	for rows.Next() {
		event, err := scanTimelineEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline of order %s: %w", orderID, err)
	}
	return events, nil
}

func scanTimelineEvent(rows *sql.Rows) (domain.TimelineEvent, error) {
	var event domain.TimelineEvent
	if err := rows.Scan(&event.OrderID, &event.UserID, &event.Type, &event.Reason, &event.Amount, &event.Occurred); err != nil {
		return domain.TimelineEvent{}, fmt.Errorf("scan timeline event: %w", err)
	}
	event.Occurred = event.Occurred.UTC()
	return event, nil
}

var _ domain.TimelineRepository = (*timelineRepository)(nil)
