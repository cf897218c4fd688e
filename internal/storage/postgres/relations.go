package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Decentr-net/photon/internal/entities"
	"github.com/Decentr-net/photon/internal/storage"
)

type followDTO struct {
	ID         string    `db:"id"`
	FollowerID string    `db:"follower_id"`
	FollowedID string    `db:"followed_id"`
	CreatedAt  time.Time `db:"created_at"`
}

type blockDTO struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	BlockedUserID string    `db:"blocked_user_id"`
	CreatedAt     time.Time `db:"created_at"`
}

// postRelationDTO is a row of like or bookmark tables.
type postRelationDTO struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PostID    string    `db:"post_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (s pg) CreateFollow(ctx context.Context, f *entities.Follow) error {
	res, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO follow(id, follower_id, followed_id, created_at)
			VALUES(:id, :follower_id, :followed_id, :created_at)
			ON CONFLICT (follower_id, followed_id) DO NOTHING
		`, followDTO{
			ID:         f.ID,
			FollowerID: f.FollowerID,
			FollowedID: f.FollowedID,
			CreatedAt:  f.CreatedAt.UTC(),
		},
	)
	if err != nil {
		return wrapExecError(err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrAlreadyExists
	}

	return nil
}

func (s pg) DeleteFollow(ctx context.Context, followerID, followedID string) error {
	res, err := s.ext.ExecContext(ctx,
		`DELETE FROM follow WHERE follower_id = $1 AND followed_id = $2`,
		followerID, followedID,
	)
	if err != nil {
		return wrapExecError(err)
	}

	return affectedOrNotFound(res)
}

func (s pg) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	var b bool
	if err := sqlx.GetContext(ctx, s.ext, &b,
		`SELECT EXISTS(SELECT 1 FROM follow WHERE follower_id = $1 AND followed_id = $2)`,
		followerID, followedID,
	); err != nil {
		return false, fmt.Errorf("failed to query: %w", err)
	}

	return b, nil
}

func (s pg) ListFollows(ctx context.Context, p *storage.ListFollowsParams) ([]*entities.Follow, error) {
	column := "followed_id"
	if p.Direction == storage.Following {
		column = "follower_id"
	}

	var f []*followDTO
	if err := sqlx.SelectContext(ctx, s.ext, &f, fmt.Sprintf(`
			SELECT id, follower_id, followed_id, created_at FROM follow
			WHERE %s = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, column), p.UserID, p.Limit, p.Offset,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Follow, len(f))
	for i, v := range f {
		out[i] = &entities.Follow{
			ID:         v.ID,
			FollowerID: v.FollowerID,
			FollowedID: v.FollowedID,
			CreatedAt:  v.CreatedAt,
		}
	}

	return out, nil
}

func (s pg) GetFollowStats(ctx context.Context, userID string) (*entities.FollowStats, error) {
	var st struct {
		Followers uint32 `db:"followers"`
		Following uint32 `db:"following"`
	}

	if err := sqlx.GetContext(ctx, s.ext, &st, `
			SELECT
				(SELECT COUNT(*) FROM follow WHERE followed_id = $1) AS followers,
				(SELECT COUNT(*) FROM follow WHERE follower_id = $1) AS following
		`, userID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return &entities.FollowStats{
		Followers: st.Followers,
		Following: st.Following,
	}, nil
}

func (s pg) CreateBlock(ctx context.Context, b *entities.BlockedUser) error {
	res, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO blocked_user(id, user_id, blocked_user_id, created_at)
			VALUES(:id, :user_id, :blocked_user_id, :created_at)
			ON CONFLICT (user_id, blocked_user_id) DO NOTHING
		`, blockDTO{
			ID:            b.ID,
			UserID:        b.UserID,
			BlockedUserID: b.BlockedUserID,
			CreatedAt:     b.CreatedAt.UTC(),
		},
	)
	if err != nil {
		return wrapExecError(err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrAlreadyExists
	}

	return nil
}

func (s pg) DeleteBlock(ctx context.Context, userID, blockedUserID string) error {
	res, err := s.ext.ExecContext(ctx,
		`DELETE FROM blocked_user WHERE user_id = $1 AND blocked_user_id = $2`,
		userID, blockedUserID,
	)
	if err != nil {
		return wrapExecError(err)
	}

	return affectedOrNotFound(res)
}

func (s pg) ListBlocks(ctx context.Context, userID string) ([]*entities.BlockedUser, error) {
	var b []*blockDTO
	if err := sqlx.SelectContext(ctx, s.ext, &b, `
			SELECT id, user_id, blocked_user_id, created_at FROM blocked_user
			WHERE user_id = $1
			ORDER BY created_at DESC
		`, userID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.BlockedUser, len(b))
	for i, v := range b {
		out[i] = &entities.BlockedUser{
			ID:            v.ID,
			UserID:        v.UserID,
			BlockedUserID: v.BlockedUserID,
			CreatedAt:     v.CreatedAt,
		}
	}

	return out, nil
}

func (s pg) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	var blocked bool
	if err := sqlx.GetContext(ctx, s.ext, &blocked, `
			SELECT EXISTS(
				SELECT 1 FROM blocked_user
				WHERE (user_id = $1 AND blocked_user_id = $2) OR (user_id = $2 AND blocked_user_id = $1)
			)
		`, a, b,
	); err != nil {
		return false, fmt.Errorf("failed to query: %w", err)
	}

	return blocked, nil
}

func (s pg) CanView(ctx context.Context, viewerID, ownerID string) (bool, error) {
	var ok bool
	if err := sqlx.GetContext(ctx, s.ext, &ok,
		`SELECT COALESCE(`+visibleTo("$2::uuid", "$1")+`, FALSE)`,
		viewerID, ownerID,
	); err != nil {
		return false, wrapGetError(err)
	}

	return ok, nil
}

// visibleTo returns condition which holds when viewer (a query parameter) can see content of owner (a column).
func visibleTo(owner, viewer string) string {
	return fmt.Sprintf(`(%[1]s = %[2]s::uuid OR (
		NOT EXISTS(
			SELECT 1 FROM blocked_user bu
			WHERE (bu.user_id = %[1]s AND bu.blocked_user_id = %[2]s::uuid)
				OR (bu.user_id = %[2]s::uuid AND bu.blocked_user_id = %[1]s)
		) AND (
			NOT (SELECT vu.is_private FROM "user" vu WHERE vu.id = %[1]s)
			OR EXISTS(SELECT 1 FROM follow vf WHERE vf.follower_id = %[2]s::uuid AND vf.followed_id = %[1]s)
		)
	))`, owner, viewer)
}

func (s pg) CreateLike(ctx context.Context, l *entities.Like) error {
	return s.createPostRelation(ctx, "like", postRelationDTO{
		ID:        l.ID,
		UserID:    l.UserID,
		PostID:    l.PostID,
		CreatedAt: l.CreatedAt.UTC(),
	})
}

func (s pg) DeleteLike(ctx context.Context, userID, postID string) error {
	return s.deletePostRelation(ctx, "like", userID, postID)
}

func (s pg) GetLikes(ctx context.Context, userID string, postID ...string) (map[string]bool, error) {
	return s.getPostRelations(ctx, "like", userID, postID)
}

func (s pg) CreateBookmark(ctx context.Context, b *entities.Bookmark) error {
	return s.createPostRelation(ctx, "bookmark", postRelationDTO{
		ID:        b.ID,
		UserID:    b.UserID,
		PostID:    b.PostID,
		CreatedAt: b.CreatedAt.UTC(),
	})
}

func (s pg) DeleteBookmark(ctx context.Context, userID, postID string) error {
	return s.deletePostRelation(ctx, "bookmark", userID, postID)
}

func (s pg) GetBookmarks(ctx context.Context, userID string, postID ...string) (map[string]bool, error) {
	return s.getPostRelations(ctx, "bookmark", userID, postID)
}

func (s pg) createPostRelation(ctx context.Context, table string, r postRelationDTO) error {
	res, err := sqlx.NamedExecContext(ctx, s.ext, fmt.Sprintf(`
			INSERT INTO %q(id, user_id, post_id, created_at)
			VALUES(:id, :user_id, :post_id, :created_at)
			ON CONFLICT (user_id, post_id) DO NOTHING
		`, table), r,
	)
	if err != nil {
		return wrapExecError(err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrAlreadyExists
	}

	return nil
}

func (s pg) deletePostRelation(ctx context.Context, table, userID, postID string) error {
	res, err := s.ext.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %q WHERE user_id = $1 AND post_id = $2`, table),
		userID, postID,
	)
	if err != nil {
		return wrapExecError(err)
	}

	return affectedOrNotFound(res)
}

func (s pg) getPostRelations(ctx context.Context, table, userID string, postID []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postID))
	if len(postID) == 0 {
		return out, nil
	}

	var ids []string
	if err := selectIn(ctx, s.ext, &ids,
		fmt.Sprintf(`SELECT post_id FROM %q WHERE user_id = ? AND post_id IN (?)`, table),
		userID, stringsUnique(postID),
	); err != nil {
		return nil, err
	}

	for _, v := range postID {
		out[v] = false
	}
	for _, v := range ids {
		out[v] = true
	}

	return out, nil
}
