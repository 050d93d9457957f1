package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paceaid/internal/utils"
	"paceaid/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const beneficiaryTableName = "paceaid.beneficiaries"

var beneficiaryColumns = utils.StructTagValues(types.Beneficiary{})

type BeneficiaryRepository struct {
	pool *pgxpool.Pool
}

func NewBeneficiaryRepository(pool *pgxpool.Pool) *BeneficiaryRepository {
	return &BeneficiaryRepository{pool: pool}
}

func (r *BeneficiaryRepository) Beneficiary(ctx context.Context, id string) (*types.Beneficiary, error) {

	query, args, err := psql().Select(beneficiaryColumns...).From(beneficiaryTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate beneficiary query: %w", err)
	}

	var beneficiary = new(types.Beneficiary)
	err = pgxscan.Get(ctx, r.pool, beneficiary, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrBeneficiaryNotFound
	}

	return beneficiary, nil
}

func (r *BeneficiaryRepository) Beneficiaries(ctx context.Context) ([]*types.Beneficiary, error) {

	query, args, err := psql().Select(beneficiaryColumns...).From(beneficiaryTableName).
		OrderBy("name asc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate beneficiaries query: %w", err)
	}

	var beneficiaries = make([]*types.Beneficiary, 0)
	if err := pgxscan.Select(ctx, r.pool, &beneficiaries, query, args...); err != nil {
		return nil, err
	}

	return beneficiaries, nil
}

// FindByNameAndPhone is the intake dedup lookup. Matching is soft: names
// compare lowercase with whitespace collapsed, phones compare on their last
// ten digits.
func (r *BeneficiaryRepository) FindByNameAndPhone(ctx context.Context, name, phone string) (*types.Beneficiary, error) {

	query, args, err := psql().Select(beneficiaryColumns...).From(beneficiaryTableName).
		Where(sq.Expr(`lower(regexp_replace(trim(name), '\s+', ' ', 'g')) = ?`, NormalizeName(name))).
		Where(sq.Expr(`right(regexp_replace(coalesce(contact_number, ''), '[^0-9]', '', 'g'), 10) = ?`, PhoneKey(phone))).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate beneficiary dedup query: %w", err)
	}

	var beneficiary = new(types.Beneficiary)
	err = pgxscan.Get(ctx, r.pool, beneficiary, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrBeneficiaryNotFound
	}

	return beneficiary, nil
}

func (r *BeneficiaryRepository) CreateBeneficiary(ctx context.Context, beneficiary *types.Beneficiary) error {

	now := time.Now()
	beneficiary.ID = utils.NanoID()
	beneficiary.CreatedAt = now
	beneficiary.UpdatedAt = now

	query, args, err := psql().Insert(beneficiaryTableName).
		SetMap(utils.StructToMap(beneficiary)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert beneficiary query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create beneficiary")
}

func (r *BeneficiaryRepository) UpdateBeneficiary(ctx context.Context, id string, update *types.BeneficiaryUpdate) error {

	fields := utils.OptionalFieldMap(update)
	fields["updated_at"] = time.Now()

	query, args, err := psql().Update(beneficiaryTableName).
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update beneficiary query for %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update beneficiary: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrBeneficiaryNotFound
	}

	return nil
}

// DeleteBeneficiary removes the person; cases, events, documents, and
// reminders follow via the datastore's cascade rules.
func (r *BeneficiaryRepository) DeleteBeneficiary(ctx context.Context, id string) error {

	query, args, err := psql().Delete(beneficiaryTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete beneficiary query for %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete beneficiary: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrBeneficiaryNotFound
	}

	return nil
}

// NormalizeName lowercases and collapses runs of whitespace so that
// " Asha  Devi " and "asha devi" compare equal.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// PhoneKey strips everything but digits and keeps the last ten, enough to
// ignore country codes and formatting.
func PhoneKey(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}
