package server

import (
	"github.com/Decentr-net/photon/internal/entities"
	"github.com/Decentr-net/photon/internal/service"
)

const maxLimit = 100
const defaultLimit = 10

// Error ...
// swagger:model
type Error struct {
	Error string `json:"error"`
}

// SignUpRequest ...
// swagger:model
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest ...
// swagger:model
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse ...
// swagger:model
type AuthResponse struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

// UpdateUserRequest ...
// swagger:model
type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Bio     *string `json:"bio"`
	Website *string `json:"website"`
}

// PrivacyRequest ...
// swagger:model
type PrivacyRequest entities.PrivacySettings

// ToggleResponse is a state of like, bookmark or follow after the change.
// swagger:model
type ToggleResponse struct {
	Active bool   `json:"active"`
	Count  uint32 `json:"count"`
}

// Post ...
type Post struct {
	entities.Post
	ImageURL   string             `json:"imageUrl"`
	Stats      entities.PostStats `json:"stats"`
	Liked      bool               `json:"liked"`
	Bookmarked bool               `json:"bookmarked"`
}

// ListPostsResponse ...
// swagger:model
type ListPostsResponse struct {
	Posts []*Post `json:"posts"`
	// Profiles dictionary where key is a user id and value is a user.
	Profiles map[string]*entities.User `json:"profiles"`
}

// GetPostResponse ...
// swagger:model
type GetPostResponse struct {
	Post    *Post          `json:"post"`
	Profile *entities.User `json:"profile"`
}

// ProfileResponse is a profile page of user.
// swagger:model
type ProfileResponse struct {
	User        *entities.User `json:"user"`
	Posts       []*Post        `json:"posts"`
	Followers   uint32         `json:"followers"`
	Following   uint32         `json:"following"`
	IsFollowing bool           `json:"isFollowing"`
	IsBlocked   bool           `json:"isBlocked"`
}

// AnalyticsResponse ...
// swagger:model
type AnalyticsResponse struct {
	Likes    uint32 `json:"likes"`
	Comments uint32 `json:"comments"`
	Shares   uint32 `json:"shares"`
}

// CommentRequest ...
// swagger:model
type CommentRequest struct {
	Content string `json:"content"`
}

// ListCommentsResponse ...
// swagger:model
type ListCommentsResponse struct {
	Comments []*entities.Comment       `json:"comments"`
	Profiles map[string]*entities.User `json:"profiles"`
}

// ShareRequest ...
// swagger:model
type ShareRequest struct {
	ReceiverID string `json:"receiverId"`
}

// MessageRequest ...
// swagger:model
type MessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

// BlockedUser ...
type BlockedUser struct {
	entities.BlockedUser
	User *entities.User `json:"user"`
}

func toToggleResponse(s *service.ToggleState) ToggleResponse {
	return ToggleResponse{
		Active: s.Active,
		Count:  s.Count,
	}
}

// Story ...
type Story struct {
	entities.Story
	ImageURL string `json:"imageUrl"`
}

// ListStoriesResponse ...
// swagger:model
type ListStoriesResponse struct {
	Stories  []*Story                  `json:"stories"`
	Profiles map[string]*entities.User `json:"profiles"`
}

// Reel ...
type Reel struct {
	entities.Reel
	VideoURL string `json:"videoUrl"`
}

// ListReelsResponse ...
// swagger:model
type ListReelsResponse struct {
	Reels    []*Reel                   `json:"reels"`
	Profiles map[string]*entities.User `json:"profiles"`
}

// File is an uploaded file with its view url.
// swagger:model
type File struct {
	entities.File
	URL string `json:"url"`
}

// ListNotificationsResponse ...
// swagger:model
type ListNotificationsResponse struct {
	Notifications []*entities.Notification  `json:"notifications"`
	Profiles      map[string]*entities.User `json:"profiles"`
}

// ListConversationsResponse ...
// swagger:model
type ListConversationsResponse struct {
	Conversations []*entities.Conversation  `json:"conversations"`
	Profiles      map[string]*entities.User `json:"profiles"`
}
