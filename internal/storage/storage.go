// Package storage contains a storage interface.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Decentr-net/photon/internal/entities"
)

//go:generate mockgen -destination=./mock/storage.go -package=mock -source=storage.go

// ErrNotFound ...
var ErrNotFound = fmt.Errorf("not found")

// ErrAlreadyExists is returned when unique constraint is violated.
var ErrAlreadyExists = fmt.Errorf("already exists")

// Storage provides methods for interacting with database.
type Storage interface {
	InTx(ctx context.Context, f func(s Storage) error) error
	Ping(ctx context.Context) error

	CreateAccount(ctx context.Context, a *entities.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*entities.Account, error)

	CreateUser(ctx context.Context, u *entities.User) error
	GetUser(ctx context.Context, id string) (*entities.User, error)
	GetUsers(ctx context.Context, id ...string) ([]*entities.User, error)
	UpdateUser(ctx context.Context, id string, p *UpdateUserParams) (*entities.User, error)
	SearchUsers(ctx context.Context, query string, limit uint16) ([]*entities.User, error)

	CreateFollow(ctx context.Context, f *entities.Follow) error
	DeleteFollow(ctx context.Context, followerID, followedID string) error
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	ListFollows(ctx context.Context, p *ListFollowsParams) ([]*entities.Follow, error)
	GetFollowStats(ctx context.Context, userID string) (*entities.FollowStats, error)

	CreateBlock(ctx context.Context, b *entities.BlockedUser) error
	DeleteBlock(ctx context.Context, userID, blockedUserID string) error
	ListBlocks(ctx context.Context, userID string) ([]*entities.BlockedUser, error)
	IsBlocked(ctx context.Context, a, b string) (bool, error)
	// CanView reports if viewer can see content of owner: owner is viewer, or there is no block between them
	// and owner is public or followed by viewer.
	CanView(ctx context.Context, viewerID, ownerID string) (bool, error)

	CreatePost(ctx context.Context, p *entities.Post) error
	GetPost(ctx context.Context, id string) (*entities.Post, error)
	DeletePost(ctx context.Context, id string) error
	ListPosts(ctx context.Context, p *ListPostsParams) ([]*entities.Post, error)
	GetPostStats(ctx context.Context, id ...string) (map[string]entities.PostStats, error)

	CreateLike(ctx context.Context, l *entities.Like) error
	DeleteLike(ctx context.Context, userID, postID string) error
	GetLikes(ctx context.Context, userID string, postID ...string) (map[string]bool, error)

	CreateBookmark(ctx context.Context, b *entities.Bookmark) error
	DeleteBookmark(ctx context.Context, userID, postID string) error
	GetBookmarks(ctx context.Context, userID string, postID ...string) (map[string]bool, error)

	CreateComment(ctx context.Context, c *entities.Comment) error
	ListComments(ctx context.Context, postID string, limit, offset uint16) ([]*entities.Comment, error)

	IncrementHashtag(ctx context.Context, name string, timestamp time.Time) error
	ListTrendingHashtags(ctx context.Context, limit uint16) ([]*entities.Hashtag, error)

	CreateStory(ctx context.Context, s *entities.Story) error
	ListStories(ctx context.Context, viewerID string, now time.Time, limit uint16) ([]*entities.Story, error)

	CreateReel(ctx context.Context, r *entities.Reel) error
	ListReels(ctx context.Context, viewerID string, limit, offset uint16) ([]*entities.Reel, error)

	CreateNotification(ctx context.Context, n *entities.Notification) error
	ListNotifications(ctx context.Context, userID string, limit uint16) ([]*entities.Notification, error)

	CreateConversation(ctx context.Context, c *entities.Conversation) error
	GetConversation(ctx context.Context, id string) (*entities.Conversation, error)
	FindConversation(ctx context.Context, participants []string) (*entities.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*entities.Conversation, error)
	CreateMessage(ctx context.Context, m *entities.Message) error
	ListMessages(ctx context.Context, conversationID string, limit uint16) ([]*entities.Message, error)

	CreateFile(ctx context.Context, f *entities.File) error
	GetFile(ctx context.Context, id string) (*entities.File, error)
}

// Collection is a name of documents' collection.
type Collection string

const (
	// PostsCollection ...
	PostsCollection Collection = "posts"
	// CommentsCollection ...
	CommentsCollection Collection = "comments"
	// LikesCollection ...
	LikesCollection Collection = "likes"
	// FollowsCollection ...
	FollowsCollection Collection = "follows"
	// StoriesCollection ...
	StoriesCollection Collection = "stories"
	// ReelsCollection ...
	ReelsCollection Collection = "reels"
	// NotificationsCollection ...
	NotificationsCollection Collection = "notifications"
	// MessagesCollection ...
	MessagesCollection Collection = "messages"
)

// UpdateUserParams is a partial update of user; nil fields are left untouched.
type UpdateUserParams struct {
	Name    *string
	Bio     *string
	Website *string
	Avatar  *string
	entities.PrivacySettings
	UpdatedAt time.Time
}

// ListPostsParams ...
type ListPostsParams struct {
	Limit  uint16
	Offset uint16
	// Owner filters posts by author.
	Owner *string
	// FollowedBy filters posts by authors followed by the user.
	FollowedBy *string
	// BookmarkedBy filters posts bookmarked by the user.
	BookmarkedBy *string
	// Query filters posts by caption substring, case insensitive.
	Query *string
	IDs   []string
	// ViewerID hides posts the user can not see, see Storage.CanView.
	ViewerID *string
}

// FollowDirection ...
type FollowDirection string

const (
	// Followers lists users following the user.
	Followers FollowDirection = "followers"
	// Following lists users followed by the user.
	Following FollowDirection = "following"
)

// ListFollowsParams ...
type ListFollowsParams struct {
	UserID    string
	Direction FollowDirection
	Limit     uint16
	Offset    uint16
}
