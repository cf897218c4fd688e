// Package entities contains main entities of service.
package entities

import (
	"time"
)

// Account holds credentials of a user.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// User is a public profile.
type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Bio                string    `json:"bio"`
	Website            string    `json:"website"`
	Avatar             string    `json:"avatar"`
	IsPrivate          bool      `json:"isPrivate"`
	ShowActivityStatus bool      `json:"showActivityStatus"`
	AllowTagging       bool      `json:"allowTagging"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// PrivacySettings is a partial update of user's privacy flags.
type PrivacySettings struct {
	IsPrivate          *bool `json:"isPrivate"`
	ShowActivityStatus *bool `json:"showActivityStatus"`
	AllowTagging       *bool `json:"allowTagging"`
}

// Post ...
type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Caption   string    `json:"caption"`
	ImageID   string    `json:"imageId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostStats contains denormalized counters of post.
type PostStats struct {
	Likes     uint32 `json:"likes"`
	Comments  uint32 `json:"comments"`
	Shares    uint32 `json:"shares"`
	Bookmarks uint32 `json:"bookmarks"`
}

// Comment ...
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PostID    string    `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Like ...
type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PostID    string    `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Bookmark ...
type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PostID    string    `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Follow ...
type Follow struct {
	ID         string    `json:"id"`
	FollowerID string    `json:"followerId"`
	FollowedID string    `json:"followedId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FollowStats ...
type FollowStats struct {
	Followers uint32 `json:"followers"`
	Following uint32 `json:"following"`
}

// BlockedUser ...
type BlockedUser struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	BlockedUserID string    `json:"blockedUserId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Hashtag ...
type Hashtag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	PostCount uint32    `json:"postCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Story is an ephemeral post.
type Story struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ImageID   string    `json:"imageId"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Reel ...
type Reel struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Caption     string    `json:"caption"`
	VideoFileID string    `json:"videoFileId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NotificationType ...
type NotificationType string

const (
	// LikeNotification is sent to post owner.
	LikeNotification NotificationType = "like"
	// CommentNotification is sent to post owner.
	CommentNotification NotificationType = "comment"
	// FollowNotification is sent to followed user.
	FollowNotification NotificationType = "follow"
)

// Notification ...
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	ActorID   string           `json:"actorId"`
	Type      NotificationType `json:"type"`
	PostID    *string          `json:"postId"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Conversation ...
type Conversation struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MessageType ...
type MessageType string

const (
	// TextMessage is a plain text message.
	TextMessage MessageType = "text"
	// SharedPostMessage contains id of shared post as content.
	SharedPostMessage MessageType = "shared_post"
)

// Message ...
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	SenderID       string      `json:"senderId"`
	ReceiverID     string      `json:"receiverId"`
	Type           MessageType `json:"type"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// File is a binary object from the bucket.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}
