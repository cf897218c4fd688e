// Package service contains interface for service business-logic.
package service

import (
	"context"
	"errors"

	"github.com/Decentr-net/photon/internal/entities"
	"github.com/Decentr-net/photon/internal/imaging"
)

//go:generate mockgen -destination=./mock/service.go -package=mock -source=service.go

var (
	// ErrInvalidRequest is returned when parameters are not valid.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned on sign up with registered email.
	ErrEmailTaken = errors.New("email is already taken")
	// ErrForbidden is returned when user is not allowed to modify the document.
	ErrForbidden = errors.New("forbidden")
	// ErrBlocked is returned when one of users blocked another one.
	ErrBlocked = errors.New("blocked")
)

// RenderedContentType is a content type of images stored after rendering.
const RenderedContentType = "image/jpeg"

// ToggleState is a state of a relation after it was set or unset.
type ToggleState struct {
	Active bool
	// Count is a count of relations of the target (likes of post, followers of user etc).
	Count uint32
}

// Upload is a file uploaded by user.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UpdateUserParams is a partial update of profile; nil fields are left untouched.
type UpdateUserParams struct {
	Name    *string
	Bio     *string
	Website *string
	entities.PrivacySettings
}

// CreatePostParams ...
type CreatePostParams struct {
	Caption    string
	Image      Upload
	Adjustment imaging.Adjustment
}

// SendMessageParams ...
// Either ConversationID or ReceiverID should be set.
type SendMessageParams struct {
	ConversationID string
	ReceiverID     string
	Content        string
}

// Service ...
type Service interface {
	SignUp(ctx context.Context, email, password, name string) (string, *entities.User, error)
	SignIn(ctx context.Context, email, password string) (string, *entities.User, error)
	SignOut(ctx context.Context, token string) error

	UpdateUser(ctx context.Context, id string, p *UpdateUserParams) (*entities.User, error)
	SetAvatar(ctx context.Context, id string, u *Upload) (*entities.User, error)

	SetFollow(ctx context.Context, followerID, followedID string, on bool) (*ToggleState, error)
	SetBlock(ctx context.Context, userID, blockedUserID string, on bool) error
	SetLike(ctx context.Context, userID, postID string, on bool) (*ToggleState, error)
	SetBookmark(ctx context.Context, userID, postID string, on bool) (*ToggleState, error)

	CreatePost(ctx context.Context, userID string, p *CreatePostParams) (*entities.Post, error)
	DeletePost(ctx context.Context, userID, postID string) error
	AddComment(ctx context.Context, userID, postID, content string) (*entities.Comment, error)

	CreateStory(ctx context.Context, userID, caption string, image *Upload) (*entities.Story, error)
	CreateReel(ctx context.Context, userID, caption string, video *Upload) (*entities.Reel, error)

	SendMessage(ctx context.Context, senderID string, p *SendMessageParams) (*entities.Message, error)
	SharePost(ctx context.Context, senderID, postID, receiverID string) (*entities.Message, error)

	UploadFile(ctx context.Context, u *Upload) (*entities.File, error)
}
