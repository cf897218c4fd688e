package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Decentr-net/photon/internal/entities"
)

type storyDTO struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ImageID   string    `db:"image_id"`
	Caption   string    `db:"caption"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

type reelDTO struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Caption     string    `db:"caption"`
	VideoFileID string    `db:"video_file_id"`
	CreatedAt   time.Time `db:"created_at"`
}

type fileDTO struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	ContentType string    `db:"content_type"`
	Size        int64     `db:"size"`
	Data        []byte    `db:"data"`
	CreatedAt   time.Time `db:"created_at"`
}

func (s pg) CreateStory(ctx context.Context, st *entities.Story) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO story(id, user_id, image_id, caption, created_at, expires_at)
			VALUES(:id, :user_id, :image_id, :caption, :created_at, :expires_at)
		`, storyDTO{
			ID:        st.ID,
			UserID:    st.UserID,
			ImageID:   st.ImageID,
			Caption:   st.Caption,
			CreatedAt: st.CreatedAt.UTC(),
			ExpiresAt: st.ExpiresAt.UTC(),
		},
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) ListStories(ctx context.Context, viewerID string, now time.Time, limit uint16) ([]*entities.Story, error) {
	var st []*storyDTO
	if err := sqlx.SelectContext(ctx, s.ext, &st, `
			SELECT id, user_id, image_id, caption, created_at, expires_at FROM story
			WHERE expires_at > $1 AND `+visibleTo("user_id", "$3")+`
			ORDER BY created_at DESC
			LIMIT $2
		`, now.UTC(), limit, viewerID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Story, len(st))
	for i, v := range st {
		out[i] = &entities.Story{
			ID:        v.ID,
			UserID:    v.UserID,
			ImageID:   v.ImageID,
			Caption:   v.Caption,
			CreatedAt: v.CreatedAt,
			ExpiresAt: v.ExpiresAt,
		}
	}

	return out, nil
}

func (s pg) CreateReel(ctx context.Context, r *entities.Reel) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO reel(id, user_id, caption, video_file_id, created_at)
			VALUES(:id, :user_id, :caption, :video_file_id, :created_at)
		`, reelDTO{
			ID:          r.ID,
			UserID:      r.UserID,
			Caption:     r.Caption,
			VideoFileID: r.VideoFileID,
			CreatedAt:   r.CreatedAt.UTC(),
		},
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) ListReels(ctx context.Context, viewerID string, limit, offset uint16) ([]*entities.Reel, error) {
	var r []*reelDTO
	if err := sqlx.SelectContext(ctx, s.ext, &r, `
			SELECT id, user_id, caption, video_file_id, created_at FROM reel
			WHERE `+visibleTo("user_id", "$3")+`
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, limit, offset, viewerID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Reel, len(r))
	for i, v := range r {
		out[i] = &entities.Reel{
			ID:          v.ID,
			UserID:      v.UserID,
			Caption:     v.Caption,
			VideoFileID: v.VideoFileID,
			CreatedAt:   v.CreatedAt,
		}
	}

	return out, nil
}

func (s pg) CreateFile(ctx context.Context, f *entities.File) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO file(id, name, content_type, size, data, created_at)
			VALUES(:id, :name, :content_type, :size, :data, :created_at)
		`, fileDTO{
			ID:          f.ID,
			Name:        f.Name,
			ContentType: f.ContentType,
			Size:        int64(len(f.Data)),
			Data:        f.Data,
			CreatedAt:   f.CreatedAt.UTC(),
		},
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) GetFile(ctx context.Context, id string) (*entities.File, error) {
	var f fileDTO

	if err := sqlx.GetContext(ctx, s.ext, &f, `
			SELECT id, name, content_type, size, data, created_at FROM file WHERE id = $1
		`, id,
	); err != nil {
		return nil, wrapGetError(err)
	}

	return &entities.File{
		ID:          f.ID,
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        f.Size,
		Data:        f.Data,
		CreatedAt:   f.CreatedAt,
	}, nil
}
