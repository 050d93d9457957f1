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

const reminderTableName = "paceaid.reminders"

var reminderColumns = utils.StructTagValues(types.Reminder{})

type ReminderRepository struct {
	pool *pgxpool.Pool
}

func NewReminderRepository(pool *pgxpool.Pool) *ReminderRepository {
	return &ReminderRepository{pool: pool}
}

func (r *ReminderRepository) CreateReminder(ctx context.Context, reminder *types.Reminder) error {

	reminder.ID = utils.NanoID()
	if reminder.Status == "" {
		reminder.Status = types.ReminderStatusPending
	}
	reminder.CreatedAt = time.Now()

	query, args, err := psql().Insert(reminderTableName).
		SetMap(utils.StructToMap(reminder)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert reminder query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create reminder")
}

func (r *ReminderRepository) RemindersByEvent(ctx context.Context, eventID string) ([]*types.Reminder, error) {

	query, args, err := psql().Select(reminderColumns...).From(reminderTableName).
		Where(sq.Eq{"case_event_id": eventID}).
		OrderBy("send_date desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reminders by event query: %w", err)
	}

	var reminders = make([]*types.Reminder, 0)
	if err := pgxscan.Select(ctx, r.pool, &reminders, query, args...); err != nil {
		return nil, err
	}

	return reminders, nil
}

// UpcomingReminders lists pending reminders whose send date has not passed,
// soonest first, joined with the context a dispatcher needs.
func (r *ReminderRepository) UpcomingReminders(ctx context.Context) ([]*types.UpcomingReminder, error) {

	columns := make([]string, 0, len(reminderColumns)+6)
	for _, col := range reminderColumns {
		columns = append(columns, "r."+col)
	}
	columns = append(columns,
		"e.event_title",
		"e.event_date",
		"e.event_time",
		"c.case_code",
		"b.name as beneficiary_name",
		"b.contact_number",
	)

	query, args, err := psql().Select(columns...).
		From(reminderTableName+" r").
		LeftJoin(eventTableName+" e on r.case_event_id = e.id").
		LeftJoin(caseTableName+" c on e.case_id = c.id").
		LeftJoin(beneficiaryTableName+" b on c.beneficiary_id = b.id").
		Where(sq.Eq{"r.status": types.ReminderStatusPending}).
		Where(sq.Expr("r.send_date >= current_date")).
		OrderBy("r.send_date asc", "r.send_time asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate upcoming reminders query: %w", err)
	}

	var reminders = make([]*types.UpcomingReminder, 0)
	if err := pgxscan.Select(ctx, r.pool, &reminders, query, args...); err != nil {
		return nil, err
	}

	return reminders, nil
}

// UpdateStatus is the delivery subsystem's hook; the method column is never
// touched here.
func (r *ReminderRepository) UpdateStatus(ctx context.Context, id string, status types.ReminderStatus) error {

	query, args, err := psql().Update(reminderTableName).
		Set("status", status).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate reminder status update for %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update reminder status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrReminderNotFound
	}

	return nil
}
