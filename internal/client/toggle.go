package client

import (
	"context"
	"net/url"

	"github.com/Decentr-net/photon/internal/server"
)

// PostState is a local state of post's like and bookmark buttons.
// It is not safe for concurrent use.
type PostState struct {
	PostID     string
	Liked      bool
	Likes      uint32
	Bookmarked bool
	Bookmarks  uint32
}

// NewPostState ...
func NewPostState(p *server.Post) *PostState {
	return &PostState{
		PostID:     p.ID,
		Liked:      p.Liked,
		Likes:      p.Stats.Likes,
		Bookmarked: p.Bookmarked,
		Bookmarks:  p.Stats.Bookmarks,
	}
}

// ProfileState is a local state of profile's follow button.
// It is not safe for concurrent use.
type ProfileState struct {
	UserID    string
	Following bool
	Followers uint32
}

// NewProfileState ...
func NewProfileState(p *server.ProfileResponse) *ProfileState {
	return &ProfileState{
		UserID:    p.User.ID,
		Following: p.IsFollowing,
		Followers: p.Followers,
	}
}

// ToggleLike flips like of the post.
func (c *Client) ToggleLike(ctx context.Context, st *PostState) error {
	return c.toggle(ctx, "/v1/posts/"+url.PathEscape(st.PostID)+"/like", &st.Liked, &st.Likes)
}

// ToggleBookmark flips bookmark of the post.
func (c *Client) ToggleBookmark(ctx context.Context, st *PostState) error {
	return c.toggle(ctx, "/v1/posts/"+url.PathEscape(st.PostID)+"/bookmark", &st.Bookmarked, &st.Bookmarks)
}

// ToggleFollow flips follow of the user.
func (c *Client) ToggleFollow(ctx context.Context, st *ProfileState) error {
	return c.toggle(ctx, "/v1/users/"+url.PathEscape(st.UserID)+"/follow", &st.Following, &st.Followers)
}

// toggle updates local state before the remote call and reconciles it with the response.
// Local state is restored when the call fails.
func (c *Client) toggle(ctx context.Context, path string, active *bool, count *uint32) error {
	prevActive, prevCount := *active, *count

	*active = !prevActive
	switch {
	case *active:
		*count++
	case *count > 0:
		*count--
	}

	resp, err := c.setToggle(ctx, path, *active)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("toggle failed, rolling back")
		*active, *count = prevActive, prevCount
		return err
	}

	*active, *count = resp.Active, resp.Count

	return nil
}
