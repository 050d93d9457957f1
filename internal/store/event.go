package store

import (
	"context"
	"fmt"
	"time"

	"paceaid/internal/utils"
	"paceaid/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventTableName = "paceaid.case_events"

var eventColumns = utils.StructTagValues(types.Event{})

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Event(ctx context.Context, id string) (*types.EventDetail, error) {

	query, args, err := eventDetailQuery().
		Where(sq.Eq{"e.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate event query: %w", err)
	}

	var detail = new(types.EventDetail)
	err = pgxscan.Get(ctx, r.pool, detail, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrEventNotFound
	}

	return detail, nil
}

func (r *EventRepository) EventsByCase(ctx context.Context, caseID string) ([]*types.Event, error) {

	query, args, err := psql().Select(eventColumns...).From(eventTableName).
		Where(sq.Eq{"case_id": caseID}).
		OrderBy("event_date asc", "event_time asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate events by case query: %w", err)
	}

	var events = make([]*types.Event, 0)
	if err := pgxscan.Select(ctx, r.pool, &events, query, args...); err != nil {
		return nil, err
	}

	return events, nil
}

// UpcomingEvents returns events within the next N days across all cases,
// soonest first, with the contact context the reminder views need.
func (r *EventRepository) UpcomingEvents(ctx context.Context, days int) ([]*types.UpcomingEvent, error) {

	columns := make([]string, 0, len(eventColumns)+6)
	for _, col := range eventColumns {
		columns = append(columns, "e."+col)
	}
	columns = append(columns,
		"c.case_code",
		"c.case_title",
		"b.name as beneficiary_name",
		"b.contact_number",
		"b.has_smartphone",
		"b.can_read",
	)

	query, args, err := psql().Select(columns...).
		From(eventTableName+" e").
		LeftJoin(caseTableName+" c on e.case_id = c.id").
		LeftJoin(beneficiaryTableName+" b on c.beneficiary_id = b.id").
		Where(sq.Expr("e.event_date between current_date and current_date + make_interval(days => ?)", days)).
		OrderBy("e.event_date asc", "e.event_time asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate upcoming events query: %w", err)
	}

	var events = make([]*types.UpcomingEvent, 0)
	if err := pgxscan.Select(ctx, r.pool, &events, query, args...); err != nil {
		return nil, err
	}

	return events, nil
}

// HasScheduledEvents reports whether any event for the case is still in
// scheduled status; the coupler keys off it.
func (r *EventRepository) HasScheduledEvents(ctx context.Context, caseID string) (bool, error) {

	query, args, err := psql().Select("1").From(eventTableName).
		Where(sq.Eq{"case_id": caseID, "event_status": types.EventStatusScheduled}).
		Prefix("select exists (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate scheduled events query: %w", err)
	}

	var exists bool
	if err := pgxscan.Get(ctx, r.pool, &exists, query, args...); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *EventRepository) CreateEvent(ctx context.Context, event *types.Event) error {

	now := time.Now()
	event.ID = utils.NanoID()
	if event.Status == "" {
		event.Status = types.EventStatusScheduled
	}
	event.CreatedAt = now
	event.UpdatedAt = now

	query, args, err := psql().Insert(eventTableName).
		SetMap(utils.StructToMap(event)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert event query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create event")
}

func (r *EventRepository) UpdateEvent(ctx context.Context, id string, update *types.EventUpdate) error {

	fields := utils.OptionalFieldMap(update)
	fields["updated_at"] = time.Now()

	query, args, err := psql().Update(eventTableName).
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update event query for %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrEventNotFound
	}

	return nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {

	query, args, err := psql().Delete(eventTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete event query for %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrEventNotFound
	}

	return nil
}

func eventDetailQuery() sq.SelectBuilder {
	columns := make([]string, 0, len(eventColumns)+5)
	for _, col := range eventColumns {
		columns = append(columns, "e."+col)
	}
	columns = append(columns,
		"c.case_code",
		"c.case_title",
		"b.name as beneficiary_name",
		"b.has_smartphone",
		"b.can_read",
	)

	return psql().Select(columns...).
		From(eventTableName + " e").
		LeftJoin(caseTableName + " c on e.case_id = c.id").
		LeftJoin(beneficiaryTableName + " b on c.beneficiary_id = b.id")
}
