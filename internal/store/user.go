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

const userTableName = "paceaid.users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, id string) (*types.User, error) {

	query, args, err := psql().Select(userColumns...).From(userTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user = new(types.User)
	err = pgxscan.Get(ctx, r.pool, user, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrUserNotFound
	}

	return user, nil
}

func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*types.User, error) {

	query, args, err := psql().Select(userColumns...).From(userTableName).
		Where(sq.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user by email query: %w", err)
	}

	var user = new(types.User)
	err = pgxscan.Get(ctx, r.pool, user, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrUserNotFound
	}

	return user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *types.User) error {

	now := time.Now()
	user.ID = utils.NanoID()
	if user.Role == "" {
		user.Role = types.UserRoleStaff
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := psql().Insert(userTableName).
		SetMap(utils.StructToMap(user)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create user")
}
