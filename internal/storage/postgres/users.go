package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Decentr-net/photon/internal/entities"
	"github.com/Decentr-net/photon/internal/storage"
)

type accountDTO struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type userDTO struct {
	ID                 string    `db:"id"`
	Email              string    `db:"email"`
	Name               string    `db:"name"`
	Bio                string    `db:"bio"`
	Website            string    `db:"website"`
	Avatar             string    `db:"avatar"`
	IsPrivate          bool      `db:"is_private"`
	ShowActivityStatus bool      `db:"show_activity_status"`
	AllowTagging       bool      `db:"allow_tagging"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

const userColumns = `id, email, name, bio, website, avatar, is_private, show_activity_status, allow_tagging, created_at, updated_at`

func (u userDTO) toEntity() *entities.User {
	return &entities.User{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Bio:                u.Bio,
		Website:            u.Website,
		Avatar:             u.Avatar,
		IsPrivate:          u.IsPrivate,
		ShowActivityStatus: u.ShowActivityStatus,
		AllowTagging:       u.AllowTagging,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func toUsers(u []*userDTO) []*entities.User {
	out := make([]*entities.User, len(u))
	for i, v := range u {
		out[i] = v.toEntity()
	}

	return out
}

func (s pg) CreateAccount(ctx context.Context, a *entities.Account) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO account(id, email, password_hash, created_at)
			VALUES(:id, :email, :password_hash, :created_at)
		`, accountDTO{
			ID:           a.ID,
			Email:        strings.ToLower(a.Email),
			PasswordHash: a.PasswordHash,
			CreatedAt:    a.CreatedAt.UTC(),
		},
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) GetAccountByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var a accountDTO

	if err := sqlx.GetContext(ctx, s.ext, &a, `
			SELECT id, email, password_hash, created_at FROM account WHERE email = $1
		`, strings.ToLower(email),
	); err != nil {
		return nil, wrapGetError(err)
	}

	return &entities.Account{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	}, nil
}

func (s pg) CreateUser(ctx context.Context, u *entities.User) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO "user"(`+userColumns+`)
			VALUES(:id, :email, :name, :bio, :website, :avatar, :is_private, :show_activity_status, :allow_tagging,
				:created_at, :updated_at)
		`, userDTO{
			ID:                 u.ID,
			Email:              strings.ToLower(u.Email),
			Name:               u.Name,
			Bio:                u.Bio,
			Website:            u.Website,
			Avatar:             u.Avatar,
			IsPrivate:          u.IsPrivate,
			ShowActivityStatus: u.ShowActivityStatus,
			AllowTagging:       u.AllowTagging,
			CreatedAt:          u.CreatedAt.UTC(),
			UpdatedAt:          u.UpdatedAt.UTC(),
		},
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) GetUser(ctx context.Context, id string) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, id); err != nil {
		return nil, wrapGetError(err)
	}

	return u.toEntity(), nil
}

func (s pg) GetUsers(ctx context.Context, id ...string) ([]*entities.User, error) {
	if len(id) == 0 {
		return []*entities.User{}, nil
	}

	var u []*userDTO
	if err := selectIn(ctx, s.ext, &u, `SELECT `+userColumns+` FROM "user" WHERE id IN (?)`, stringsUnique(id)); err != nil {
		return nil, err
	}

	return toUsers(u), nil
}

func (s pg) UpdateUser(ctx context.Context, id string, p *storage.UpdateUserParams) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u, `
			UPDATE "user" SET
				name = COALESCE($2, name),
				bio = COALESCE($3, bio),
				website = COALESCE($4, website),
				avatar = COALESCE($5, avatar),
				is_private = COALESCE($6, is_private),
				show_activity_status = COALESCE($7, show_activity_status),
				allow_tagging = COALESCE($8, allow_tagging),
				updated_at = $9
			WHERE id = $1
			RETURNING `+userColumns,
		id, p.Name, p.Bio, p.Website, p.Avatar, p.IsPrivate, p.ShowActivityStatus, p.AllowTagging, p.UpdatedAt.UTC(),
	); err != nil {
		return nil, wrapGetError(err)
	}

	return u.toEntity(), nil
}

func (s pg) SearchUsers(ctx context.Context, query string, limit uint16) ([]*entities.User, error) {
	var u []*userDTO

	if err := sqlx.SelectContext(ctx, s.ext, &u, `
			SELECT `+userColumns+` FROM "user"
			WHERE LOWER(name) LIKE $1
			ORDER BY name
			LIMIT $2
		`, likePattern(query), limit,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toUsers(u), nil
}

// likePattern builds a case insensitive substring pattern.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}
