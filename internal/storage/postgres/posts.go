package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Decentr-net/photon/internal/entities"
	"github.com/Decentr-net/photon/internal/storage"
)

type postDTO struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Caption   string    `db:"caption"`
	ImageID   string    `db:"image_id"`
	CreatedAt time.Time `db:"created_at"`
}

type postStatsDTO struct {
	ID        string `db:"id"`
	Likes     uint32 `db:"likes"`
	Comments  uint32 `db:"comments"`
	Shares    uint32 `db:"shares"`
	Bookmarks uint32 `db:"bookmarks"`
}

type commentDTO struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PostID    string    `db:"post_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

type hashtagDTO struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	PostCount uint32    `db:"post_count"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (p postDTO) toEntity() *entities.Post {
	return &entities.Post{
		ID:        p.ID,
		UserID:    p.UserID,
		Caption:   p.Caption,
		ImageID:   p.ImageID,
		CreatedAt: p.CreatedAt,
	}
}

func (s pg) CreatePost(ctx context.Context, p *entities.Post) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO post(id, user_id, caption, image_id, created_at)
			VALUES(:id, :user_id, :caption, :image_id, :created_at)
		`, postDTO{
			ID:        p.ID,
			UserID:    p.UserID,
			Caption:   p.Caption,
			ImageID:   p.ImageID,
			CreatedAt: p.CreatedAt.UTC(),
		},
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) GetPost(ctx context.Context, id string) (*entities.Post, error) {
	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p, `
			SELECT id, user_id, caption, image_id, created_at FROM post WHERE id = $1
		`, id,
	); err != nil {
		return nil, wrapGetError(err)
	}

	return p.toEntity(), nil
}

func (s pg) DeletePost(ctx context.Context, id string) error {
	res, err := s.ext.ExecContext(ctx, `DELETE FROM post WHERE id = $1`, id)
	if err != nil {
		return wrapExecError(err)
	}

	return affectedOrNotFound(res)
}

func (s pg) ListPosts(ctx context.Context, p *storage.ListPostsParams) ([]*entities.Post, error) {
	var (
		where []string
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.Owner != nil {
		where = append(where, "p.user_id = "+arg(*p.Owner))
	}

	if p.FollowedBy != nil {
		where = append(where, "p.user_id IN (SELECT followed_id FROM follow WHERE follower_id = "+arg(*p.FollowedBy)+")")
	}

	if p.BookmarkedBy != nil {
		where = append(where, "p.id IN (SELECT post_id FROM bookmark WHERE user_id = "+arg(*p.BookmarkedBy)+")")
	}

	if p.Query != nil {
		where = append(where, "LOWER(p.caption) LIKE "+arg(likePattern(*p.Query)))
	}

	if p.IDs != nil {
		where = append(where, "p.id::text = ANY("+arg(pq.Array(p.IDs))+")")
	}

	if p.ViewerID != nil {
		where = append(where, visibleTo("p.user_id", arg(*p.ViewerID)))
	}

	query := `SELECT p.id, p.user_id, p.caption, p.image_id, p.created_at FROM post p`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id LIMIT " + arg(p.Limit) + " OFFSET " + arg(p.Offset)

	var posts []*postDTO
	if err := sqlx.SelectContext(ctx, s.ext, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Post, len(posts))
	for i, v := range posts {
		out[i] = v.toEntity()
	}

	return out, nil
}

func (s pg) GetPostStats(ctx context.Context, id ...string) (map[string]entities.PostStats, error) {
	out := make(map[string]entities.PostStats, len(id))
	if len(id) == 0 {
		return out, nil
	}

	var stats []*postStatsDTO
	if err := sqlx.SelectContext(ctx, s.ext, &stats, `
			SELECT
				p.id,
				(SELECT COUNT(*) FROM "like" l WHERE l.post_id = p.id) AS likes,
				(SELECT COUNT(*) FROM comment c WHERE c.post_id = p.id) AS comments,
				(SELECT COUNT(*) FROM message m WHERE m.type = 'shared_post' AND m.content = p.id::text) AS shares,
				(SELECT COUNT(*) FROM bookmark b WHERE b.post_id = p.id) AS bookmarks
			FROM post p
			WHERE p.id::text = ANY($1)
		`, pq.Array(stringsUnique(id)),
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	for _, v := range stats {
		out[v.ID] = entities.PostStats{
			Likes:     v.Likes,
			Comments:  v.Comments,
			Shares:    v.Shares,
			Bookmarks: v.Bookmarks,
		}
	}

	return out, nil
}

func (s pg) CreateComment(ctx context.Context, c *entities.Comment) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO comment(id, user_id, post_id, content, created_at)
			VALUES(:id, :user_id, :post_id, :content, :created_at)
		`, commentDTO{
			ID:        c.ID,
			UserID:    c.UserID,
			PostID:    c.PostID,
			Content:   c.Content,
			CreatedAt: c.CreatedAt.UTC(),
		},
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) ListComments(ctx context.Context, postID string, limit, offset uint16) ([]*entities.Comment, error) {
	var c []*commentDTO
	if err := sqlx.SelectContext(ctx, s.ext, &c, `
			SELECT id, user_id, post_id, content, created_at FROM comment
			WHERE post_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, postID, limit, offset,
	); err != nil {
		return nil, wrapGetError(err)
	}

	out := make([]*entities.Comment, len(c))
	for i, v := range c {
		out[i] = &entities.Comment{
			ID:        v.ID,
			UserID:    v.UserID,
			PostID:    v.PostID,
			Content:   v.Content,
			CreatedAt: v.CreatedAt,
		}
	}

	return out, nil
}

func (s pg) IncrementHashtag(ctx context.Context, name string, timestamp time.Time) error {
	if _, err := s.ext.ExecContext(ctx, `
			INSERT INTO hashtag(id, name, post_count, created_at, updated_at)
				VALUES($1, $2, 1, $3, $3)
			ON CONFLICT(name) DO UPDATE SET
				post_count = hashtag.post_count + 1, updated_at = excluded.updated_at
		`, uuid.New().String(), name, timestamp.UTC(),
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) ListTrendingHashtags(ctx context.Context, limit uint16) ([]*entities.Hashtag, error) {
	var h []*hashtagDTO
	if err := sqlx.SelectContext(ctx, s.ext, &h, `
			SELECT id, name, post_count, created_at, updated_at FROM hashtag
			ORDER BY post_count DESC, name
			LIMIT $1
		`, limit,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Hashtag, len(h))
	for i, v := range h {
		out[i] = &entities.Hashtag{
			ID:        v.ID,
			Name:      v.Name,
			PostCount: v.PostCount,
			CreatedAt: v.CreatedAt,
			UpdatedAt: v.UpdatedAt,
		}
	}

	return out, nil
}
