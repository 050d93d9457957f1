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

const documentTableName = "paceaid.documents"

var documentColumns = utils.StructTagValues(types.Document{})

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Document(ctx context.Context, id string) (*types.DocumentDetail, error) {

	query, args, err := documentDetailQuery().
		Where(sq.Eq{"d.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var detail = new(types.DocumentDetail)
	err = pgxscan.Get(ctx, r.pool, detail, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrDocumentNotFound
	}

	return detail, nil
}

// DocumentsByCase lists a case's documents, optionally narrowed to one
// category, newest upload first.
func (r *DocumentRepository) DocumentsByCase(ctx context.Context, caseID string, category types.DocumentCategory) ([]*types.DocumentDetail, error) {

	builder := documentDetailQuery().
		Where(sq.Eq{"d.case_id": caseID})

	if category != "" {
		builder = builder.Where(sq.Eq{"d.category": category})
	}

	query, args, err := builder.OrderBy("d.uploaded_at desc").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents by case query: %w", err)
	}

	var documents = make([]*types.DocumentDetail, 0)
	if err := pgxscan.Select(ctx, r.pool, &documents, query, args...); err != nil {
		return nil, err
	}

	return documents, nil
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, document *types.Document) error {

	document.ID = utils.NanoID()
	if document.Category == "" {
		document.Category = types.DocumentCategoryOther
	}
	document.UploadedAt = time.Now()

	query, args, err := psql().Insert(documentTableName).
		SetMap(utils.StructToMap(document)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert document query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create document")
}

func (r *DocumentRepository) UpdateDocument(ctx context.Context, id string, update *types.DocumentUpdate) error {

	fields := utils.OptionalFieldMap(update)
	if len(fields) == 0 {
		return nil
	}

	query, args, err := psql().Update(documentTableName).
		SetMap(fields).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update document query for %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrDocumentNotFound
	}

	return nil
}

func (r *DocumentRepository) DeleteDocument(ctx context.Context, id string) error {

	query, args, err := psql().Delete(documentTableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete document query for %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrDocumentNotFound
	}

	return nil
}

func documentDetailQuery() sq.SelectBuilder {
	columns := make([]string, 0, len(documentColumns)+1)
	for _, col := range documentColumns {
		columns = append(columns, "d."+col)
	}
	columns = append(columns, "u.name as uploaded_by_name")

	return psql().Select(columns...).
		From(documentTableName + " d").
		LeftJoin(userTableName + " u on d.uploaded_by = u.id")
}
