package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Decentr-net/photon/internal/entities"
	"github.com/Decentr-net/photon/internal/imaging"
	mm "github.com/Decentr-net/photon/internal/middleware"
	"github.com/Decentr-net/photon/internal/service"
	"github.com/Decentr-net/photon/internal/storage"
)

func (s server) listPosts(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts Posts ListPosts
	//
	// Return posts with stats and flags of requester.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: owner
	//   description: filters posts by owner
	//   in: query
	//   required: false
	//   example: 6f7b3a0e-4f0a-4f6e-9a4c-6b3c1b6e4d1a
	// - name: feed
	//   description: returns posts of users followed by requester
	//   in: query
	//   required: false
	//   type: boolean
	// - name: q
	//   description: filters posts by caption substring
	//   in: query
	//   required: false
	// - name: limit
	//   description: limits count of returned posts
	//   in: query
	//   required: false
	//   default: 10
	//   minimum: 1
	//   maximum: 100
	// - name: offset
	//   in: query
	//   required: false
	//   default: 0
	// responses:
	//   '200':
	//     description: Posts
	//     schema:
	//       "$ref": "#/definitions/ListPostsResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	ctx := r.Context()
	userID := mm.GetUserID(ctx)

	params, err := extractListPostsParams(r, userID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.writePosts(w, r, params)
}

func (s server) listBookmarks(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /bookmarks Posts ListBookmarks
	//
	// Return posts bookmarked by requester.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: Posts
	//     schema:
	//       "$ref": "#/definitions/ListPostsResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"

	limit, offset, err := extractPagination(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	userID := mm.GetUserID(r.Context())

	s.writePosts(w, r, &storage.ListPostsParams{
		Limit:        limit,
		Offset:       offset,
		BookmarkedBy: &userID,
		ViewerID:     &userID,
	})
}

func (s server) writePosts(w http.ResponseWriter, r *http.Request, params *storage.ListPostsParams) {
	ctx := r.Context()

	posts, err := s.s.ListPosts(ctx, params)
	if err != nil {
		writeInternalError(w, r, "failed to list posts", err)
		return
	}

	out, err := s.buildPosts(ctx, mm.GetUserID(ctx), posts)
	if err != nil {
		writeInternalError(w, r, "failed to build posts", err)
		return
	}

	owners := make([]string, len(posts))
	for i, v := range posts {
		owners[i] = v.UserID
	}

	profiles, err := s.getProfiles(ctx, owners...)
	if err != nil {
		writeInternalError(w, r, "failed to get profiles", err)
		return
	}

	writeOK(w, r, http.StatusOK, ListPostsResponse{
		Posts:    out,
		Profiles: profiles,
	})
}

func (s server) getPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts/{id} Posts GetPost
	//
	// Get post by id.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: Post
	//     schema:
	//       "$ref": "#/definitions/GetPostResponse"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		ctx := r.Context()
		userID := mm.GetUserID(ctx)

		post, err := s.s.GetPost(ctx, id)
		if err != nil {
			writeServiceError(w, r, "failed to get post", err)
			return
		}

		owner, err := s.s.GetUser(ctx, post.UserID)
		if err != nil {
			writeInternalError(w, r, "failed to get owner", err)
			return
		}

		ok, err := s.canView(ctx, userID, owner.ID)
		if err != nil {
			writeInternalError(w, r, "failed to check access", err)
			return
		}
		if !ok {
			writeError(w, r, http.StatusNotFound, "not found")
			return
		}

		out, err := s.buildPosts(ctx, userID, []*entities.Post{post})
		if err != nil {
			writeInternalError(w, r, "failed to build post", err)
			return
		}

		writeOK(w, r, http.StatusOK, GetPostResponse{
			Post:    out[0],
			Profile: owner,
		})
	})(w, r)
}

func (s server) createPost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts Posts CreatePost
	//
	// Creates post. Image is rendered through the adjustment and stored as JPEG.
	//
	// ---
	// consumes:
	// - multipart/form-data
	// produces:
	// - application/json
	// parameters:
	// - name: image
	//   in: formData
	//   type: file
	//   required: true
	// - name: caption
	//   in: formData
	//   type: string
	// - name: filter
	//   description: preset name
	//   in: formData
	//   type: string
	//   enum: [normal, grayscale, sepia, invert, blur]
	//   default: normal
	// - name: brightness
	//   in: formData
	//   type: integer
	//   minimum: 0
	//   maximum: 200
	//   default: 100
	// - name: contrast
	//   in: formData
	//   type: integer
	//   minimum: 0
	//   maximum: 200
	//   default: 100
	// responses:
	//   '201':
	//     description: created post
	//     schema:
	//       "$ref": "#/definitions/Post"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid form: %s", err.Error()))
		return
	}

	image, err := readUpload(r, "image")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	adj, err := extractAdjustment(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	post, err := s.svc.CreatePost(ctx, mm.GetUserID(ctx), &service.CreatePostParams{
		Caption:    r.FormValue("caption"),
		Image:      *image,
		Adjustment: adj,
	})
	if err != nil {
		writeServiceError(w, r, "failed to create post", err)
		return
	}

	writeOK(w, r, http.StatusCreated, s.toPost(post, entities.PostStats{}, false, false))
}

func (s server) deletePost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation DELETE /posts/{id} Posts DeletePost
	//
	// Deletes post of requester.
	//
	// ---
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '204':
	//     description: post is deleted
	//   '403':
	//     description: post belongs to another user
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		if err := s.svc.DeletePost(r.Context(), mm.GetUserID(r.Context()), id); err != nil {
			writeServiceError(w, r, "failed to delete post", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})(w, r)
}

func (s server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts/{id}/analytics Posts GetAnalytics
	//
	// Returns counters of post. Available to the owner only.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: counters
	//     schema:
	//       "$ref": "#/definitions/AnalyticsResponse"
	//   '403':
	//     description: post belongs to another user
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		ctx := r.Context()

		post, err := s.s.GetPost(ctx, id)
		if err != nil {
			writeServiceError(w, r, "failed to get post", err)
			return
		}

		if post.UserID != mm.GetUserID(ctx) {
			writeError(w, r, http.StatusForbidden, service.ErrForbidden.Error())
			return
		}

		stats, err := s.s.GetPostStats(ctx, id)
		if err != nil {
			writeInternalError(w, r, "failed to get stats", err)
			return
		}

		st := stats[id]
		writeOK(w, r, http.StatusOK, AnalyticsResponse{
			Likes:    st.Likes,
			Comments: st.Comments,
			Shares:   st.Shares,
		})
	})(w, r)
}

func (s server) setLike(on bool) http.HandlerFunc {
	// swagger:operation PUT /posts/{id}/like Posts Like
	//
	// Likes post. DELETE method unlikes it. Both are idempotent.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: state of like and count of likes
	//     schema:
	//       "$ref": "#/definitions/ToggleResponse"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	return s.toggle("like", func(ctx context.Context, userID, id string) (*service.ToggleState, error) {
		return s.svc.SetLike(ctx, userID, id, on)
	})
}

func (s server) setBookmark(on bool) http.HandlerFunc {
	// swagger:operation PUT /posts/{id}/bookmark Posts Bookmark
	//
	// Bookmarks post. DELETE method removes the bookmark. Both are idempotent.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: state of bookmark and count of bookmarks
	//     schema:
	//       "$ref": "#/definitions/ToggleResponse"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	return s.toggle("bookmark", func(ctx context.Context, userID, id string) (*service.ToggleState, error) {
		return s.svc.SetBookmark(ctx, userID, id, on)
	})
}

func (s server) toggle(name string, f func(ctx context.Context, userID, id string) (*service.ToggleState, error)) http.HandlerFunc {
	return withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		st, err := f(r.Context(), mm.GetUserID(r.Context()), id)
		if err != nil {
			writeServiceError(w, r, fmt.Sprintf("failed to set %s", name), err)
			return
		}

		writeOK(w, r, http.StatusOK, toToggleResponse(st))
	})
}

func (s server) listComments(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts/{id}/comments Posts ListComments
	//
	// Returns comments of post, newest first.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// - name: limit
	//   in: query
	//   required: false
	//   default: 10
	// - name: offset
	//   in: query
	//   required: false
	// responses:
	//   '200':
	//     description: comments
	//     schema:
	//       "$ref": "#/definitions/ListCommentsResponse"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		ctx := r.Context()

		limit, offset, err := extractPagination(r.URL.Query())
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		post, err := s.s.GetPost(ctx, id)
		if err != nil {
			writeServiceError(w, r, "failed to get post", err)
			return
		}

		ok, err := s.canView(ctx, mm.GetUserID(ctx), post.UserID)
		if err != nil {
			writeInternalError(w, r, "failed to check access", err)
			return
		}
		if !ok {
			writeError(w, r, http.StatusNotFound, "not found")
			return
		}

		comments, err := s.s.ListComments(ctx, id, limit, offset)
		if err != nil {
			writeServiceError(w, r, "failed to list comments", err)
			return
		}

		authors := make([]string, len(comments))
		for i, v := range comments {
			authors[i] = v.UserID
		}

		profiles, err := s.getProfiles(ctx, authors...)
		if err != nil {
			writeInternalError(w, r, "failed to get profiles", err)
			return
		}

		writeOK(w, r, http.StatusOK, ListCommentsResponse{
			Comments: comments,
			Profiles: profiles,
		})
	})(w, r)
}

func (s server) addComment(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts/{id}/comments Posts AddComment
	//
	// Comments post.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/CommentRequest"
	// responses:
	//   '201':
	//     description: created comment
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		var req CommentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		c, err := s.svc.AddComment(r.Context(), mm.GetUserID(r.Context()), id, req.Content)
		if err != nil {
			writeServiceError(w, r, "failed to add comment", err)
			return
		}

		writeOK(w, r, http.StatusCreated, c)
	})(w, r)
}

func (s server) sharePost(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /posts/{id}/share Posts SharePost
	//
	// Sends post to another user as a direct message.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/ShareRequest"
	// responses:
	//   '201':
	//     description: sent message
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '403':
	//     description: receiver is blocked
	//     schema:
	//       "$ref": "#/definitions/Error"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		var req ShareRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		if _, err := uuid.Parse(req.ReceiverID); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid receiver")
			return
		}

		m, err := s.svc.SharePost(r.Context(), mm.GetUserID(r.Context()), id, req.ReceiverID)
		if err != nil {
			writeServiceError(w, r, "failed to share post", err)
			return
		}

		writeOK(w, r, http.StatusCreated, m)
	})(w, r)
}

func (s server) listTrendingHashtags(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /hashtags/trending Posts ListTrendingHashtags
	//
	// Returns hashtags ordered by count of posts.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: limit
	//   in: query
	//   required: false
	//   default: 10
	// responses:
	//   '200':
	//     description: hashtags
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"

	limit, _, err := extractPagination(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h, err := s.s.ListTrendingHashtags(r.Context(), limit)
	if err != nil {
		writeInternalError(w, r, "failed to list hashtags", err)
		return
	}

	writeOK(w, r, http.StatusOK, h)
}

// buildPosts attaches stats and requester's flags to posts.
func (s server) buildPosts(ctx context.Context, userID string, posts []*entities.Post) ([]*Post, error) {
	out := make([]*Post, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	ids := make([]string, len(posts))
	for i, v := range posts {
		ids[i] = v.ID
	}

	stats, err := s.s.GetPostStats(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	liked, err := s.s.GetLikes(ctx, userID, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to get likes: %w", err)
	}

	bookmarked, err := s.s.GetBookmarks(ctx, userID, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	for i, v := range posts {
		out[i] = s.toPost(v, stats[v.ID], liked[v.ID], bookmarked[v.ID])
	}

	return out, nil
}

func (s server) toPost(p *entities.Post, stats entities.PostStats, liked, bookmarked bool) *Post {
	return &Post{
		Post:       *p,
		ImageURL:   s.fileURL(p.ImageID),
		Stats:      stats,
		Liked:      liked,
		Bookmarked: bookmarked,
	}
}

func (s server) getProfiles(ctx context.Context, id ...string) (map[string]*entities.User, error) {
	out := make(map[string]*entities.User, len(id))
	if len(id) == 0 {
		return out, nil
	}

	users, err := s.s.GetUsers(ctx, id...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	for _, v := range users {
		out[v.ID] = v
	}

	return out, nil
}

// canView reports if viewer can see posts of the user.
// Posts of private accounts are visible to followers only, blocks hide everything.
func (s server) canView(ctx context.Context, viewerID, ownerID string) (bool, error) {
	if viewerID == ownerID {
		return true, nil
	}

	ok, err := s.s.CanView(ctx, viewerID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to check access: %w", err)
	}

	return ok, nil
}

func extractListPostsParams(r *http.Request, userID string) (*storage.ListPostsParams, error) {
	q := r.URL.Query()

	limit, offset, err := extractPagination(q)
	if err != nil {
		return nil, err
	}

	p := storage.ListPostsParams{
		Limit:    limit,
		Offset:   offset,
		ViewerID: &userID,
	}

	if owner := q.Get("owner"); owner != "" {
		if _, err := uuid.Parse(owner); err != nil {
			return nil, fmt.Errorf("%w: invalid owner", errInvalidRequest)
		}
		p.Owner = &owner
	}

	if feed := q.Get("feed"); feed != "" {
		v, err := strconv.ParseBool(feed)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid feed", errInvalidRequest)
		}
		if v {
			p.FollowedBy = &userID
		}
	}

	if s := strings.TrimSpace(q.Get("q")); s != "" {
		p.Query = &s
	}

	return &p, nil
}

func extractAdjustment(r *http.Request) (imaging.Adjustment, error) {
	adj := imaging.DefaultAdjustment()

	if v := r.FormValue("filter"); v != "" {
		adj.Preset = v
	}

	for _, v := range []struct {
		name string
		dst  *int
	}{
		{"brightness", &adj.Brightness},
		{"contrast", &adj.Contrast},
	} {
		s := r.FormValue(v.name)
		if s == "" {
			continue
		}

		n, err := strconv.Atoi(s)
		if err != nil {
			return adj, fmt.Errorf("%w: invalid %s", errInvalidRequest, v.name)
		}
		*v.dst = n
	}

	if err := adj.Validate(); err != nil {
		return adj, fmt.Errorf("%w: %s", errInvalidRequest, err.Error())
	}

	return adj, nil
}

// readUpload reads file from parsed multipart form.
func readUpload(r *http.Request, field string) (*service.Upload, error) {
	f, h, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is required", errInvalidRequest, field)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s", errInvalidRequest, field)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", errInvalidRequest, field)
	}

	contentType := h.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &service.Upload{
		Name:        h.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
