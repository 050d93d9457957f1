package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"paceaid/internal/utils"
	"paceaid/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const caseTableName = "paceaid.cases"

// How many times a create retries after losing the case-code insert race.
const caseCodeAttempts = 3

var caseColumns = utils.StructTagValues(types.Case{})

type CaseRepository struct {
	pool   *pgxpool.Pool
	prefix string
}

func NewCaseRepository(pool *pgxpool.Pool, codePrefix string) *CaseRepository {
	return &CaseRepository{pool: pool, prefix: codePrefix}
}

func (r *CaseRepository) Case(ctx context.Context, id string) (*types.CaseDetail, error) {

	query, args, err := caseDetailQuery().
		Where(sq.Eq{"c.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate case query: %w", err)
	}

	var detail = new(types.CaseDetail)
	err = pgxscan.Get(ctx, r.pool, detail, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrCaseNotFound
	}

	return detail, nil
}

func (r *CaseRepository) Cases(ctx context.Context, filters types.CaseFilters) ([]*types.CaseDetail, error) {

	builder := caseDetailQuery()
	builder = applyDateFilter(builder, filters.DateFilter, time.Now())

	if filters.CaseType != "" {
		builder = builder.Where(sq.Eq{"c.case_type": filters.CaseType})
	}
	if filters.Status != "" {
		builder = builder.Where(sq.Eq{"c.status": filters.Status})
	}
	if filters.Court != "" {
		builder = builder.Where(sq.Eq{"c.court": filters.Court})
	}
	if filters.ResolutionType != "" {
		builder = builder.Where(sq.Eq{"c.case_resolution_type": filters.ResolutionType})
	}

	query, args, err := builder.OrderBy("c.created_at desc").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate filtered cases query: %w", err)
	}

	var cases = make([]*types.CaseDetail, 0)
	if err := pgxscan.Select(ctx, r.pool, &cases, query, args...); err != nil {
		return nil, err
	}

	return cases, nil
}

// OngoingCases lists cases still being worked: active, pending, or urgent.
func (r *CaseRepository) OngoingCases(ctx context.Context, dateFilter string) ([]*types.CaseDetail, error) {

	builder := caseDetailQuery().
		Where(sq.Eq{"c.status": []types.CaseStatus{
			types.CaseStatusActive,
			types.CaseStatusPending,
			types.CaseStatusUrgent,
		}})
	builder = applyDateFilter(builder, dateFilter, time.Now())

	query, args, err := builder.OrderBy("c.created_at desc").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ongoing cases query: %w", err)
	}

	var cases = make([]*types.CaseDetail, 0)
	if err := pgxscan.Select(ctx, r.pool, &cases, query, args...); err != nil {
		return nil, err
	}

	return cases, nil
}

func (r *CaseRepository) CasesByBeneficiary(ctx context.Context, beneficiaryID string) ([]*types.Case, error) {

	query, args, err := psql().Select(caseColumns...).From(caseTableName).
		Where(sq.Eq{"beneficiary_id": beneficiaryID}).
		OrderBy("created_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate cases by beneficiary query: %w", err)
	}

	var cases = make([]*types.Case, 0)
	if err := pgxscan.Select(ctx, r.pool, &cases, query, args...); err != nil {
		return nil, err
	}

	return cases, nil
}

// CreateCase assigns the next case code and inserts, both inside one
// transaction. The code column is unique, so a concurrent creation that
// computes the same code fails its insert; we recompute and try again
// rather than surfacing the conflict.
func (r *CaseRepository) CreateCase(ctx context.Context, c *types.Case) error {

	var lastErr error
	for attempt := 0; attempt < caseCodeAttempts; attempt++ {
		err := r.tryCreateCase(ctx, c)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: %v", types.ErrCaseCodeContention, lastErr)
}

func (r *CaseRepository) tryCreateCase(ctx context.Context, c *types.Case) error {

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin case create tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	code, err := r.nextCaseCode(ctx, tx, now.Year())
	if err != nil {
		return err
	}

	c.ID = utils.NanoID()
	c.CaseCode = code
	if c.Status == "" {
		c.Status = types.CaseStatusActive
	}
	if c.Organizations == nil {
		c.Organizations = []string{}
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	query, args, err := psql().Insert(caseTableName).
		SetMap(utils.StructToMap(c)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert case query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return utils.ErrorWrapOrNil(err, "failed to create case")
	}

	return tx.Commit(ctx)
}

func (r *CaseRepository) nextCaseCode(ctx context.Context, tx pgx.Tx, year int) (string, error) {

	query, args, err := psql().Select("case_code").From(caseTableName).
		Where(sq.Like{"case_code": fmt.Sprintf("%s-%d-%%", r.prefix, year)}).
		OrderBy("case_code desc").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to generate case code query: %w", err)
	}

	var last string
	err = pgxscan.Get(ctx, tx, &last, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return "", fmt.Errorf("failed to fetch latest case code: %w", err)
	}

	return NextCaseCode(r.prefix, year, last), nil
}

// NextCaseCode computes the successor of the greatest existing code for the
// year, PREFIX-YYYY-NNN zero-padded to three digits. Gaps from deleted cases
// are never refilled.
func NextCaseCode(prefix string, year int, last string) string {
	if last == "" {
		return fmt.Sprintf("%s-%d-001", prefix, year)
	}

	parts := strings.Split(last, "-")
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		n = 0
	}

	return fmt.Sprintf("%s-%d-%03d", prefix, year, n+1)
}

// UpdateCase applies only the fields present in update. updated_at advances
// even when the field set is empty.
func (r *CaseRepository) UpdateCase(ctx context.Context, id string, update *types.CaseUpdate) error {

	fields := utils.OptionalFieldMap(update)
	fields["updated_at"] = time.Now()

	query, args, err := psql().Update(caseTableName).
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update case query for %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrCaseNotFound
	}

	return nil
}

// CaseStatus reads just the status column; the coupler uses it.
func (r *CaseRepository) CaseStatus(ctx context.Context, id string) (types.CaseStatus, error) {

	query, args, err := psql().Select("status").From(caseTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to generate case status query: %w", err)
	}

	var status types.CaseStatus
	err = pgxscan.Get(ctx, r.pool, &status, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return "", err
	}

	if err != nil {
		return "", types.ErrCaseNotFound
	}

	return status, nil
}

func (r *CaseRepository) SetCaseStatus(ctx context.Context, id string, status types.CaseStatus) error {

	query, args, err := psql().Update(caseTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate case status update for %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set case status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrCaseNotFound
	}

	return nil
}

func (r *CaseRepository) DeleteCase(ctx context.Context, id string) error {

	query, args, err := psql().Delete(caseTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete case query for %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrCaseNotFound
	}

	return nil
}

func (r *CaseRepository) TotalCount(ctx context.Context) (int64, error) {

	query, args, err := psql().Select("count(*)").From(caseTableName).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate case count query: %w", err)
	}

	var count int64
	if err := pgxscan.Get(ctx, r.pool, &count, query, args...); err != nil {
		return 0, err
	}

	return count, nil
}

func caseDetailQuery() sq.SelectBuilder {
	columns := make([]string, 0, len(caseColumns)+5)
	for _, col := range caseColumns {
		columns = append(columns, "c."+col)
	}
	columns = append(columns,
		"b.name as beneficiary_name",
		"b.contact_number as beneficiary_contact",
		"b.email as beneficiary_email",
		"b.has_smartphone",
		"b.can_read",
	)

	return psql().Select(columns...).
		From(caseTableName + " c").
		LeftJoin(beneficiaryTableName + " b on c.beneficiary_id = b.id")
}

// applyDateFilter narrows by a relative window (3months|5months|6months) or
// a calendar year (year-YYYY). Anything else is no constraint.
func applyDateFilter(builder sq.SelectBuilder, dateFilter string, now time.Time) sq.SelectBuilder {
	switch {
	case dateFilter == "3months":
		return builder.Where(sq.GtOrEq{"c.created_at": now.AddDate(0, -3, 0)})
	case dateFilter == "5months":
		return builder.Where(sq.GtOrEq{"c.created_at": now.AddDate(0, -5, 0)})
	case dateFilter == "6months":
		return builder.Where(sq.GtOrEq{"c.created_at": now.AddDate(0, -6, 0)})
	case strings.HasPrefix(dateFilter, "year-"):
		year, err := strconv.Atoi(strings.TrimPrefix(dateFilter, "year-"))
		if err != nil {
			return builder
		}
		return builder.Where(sq.Expr("extract(year from c.created_at) = ?", year))
	}
	return builder
}
