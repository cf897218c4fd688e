package server

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/feeds"

	"github.com/Decentr-net/photon/internal/entities"
	mm "github.com/Decentr-net/photon/internal/middleware"
	"github.com/Decentr-net/photon/internal/service"
	"github.com/Decentr-net/photon/internal/storage"
)

const feedSize = 20

func (s server) viewFile(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /files/{id}/view Files ViewFile
	//
	// Returns file content. Files are immutable.
	//
	// ---
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: file content
	//   '404':
	//     description: file not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		f, err := s.s.GetFile(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, "failed to get file", err)
			return
		}

		w.Header().Set("Content-Type", f.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		if f.Name != "" {
			w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": f.Name}))
		}

		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(f.Data); err != nil {
			mm.GetLogger(r.Context()).WithError(err).Debug("failed to write file")
		}
	})(w, r)
}

func (s server) uploadFile(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /files Files UploadFile
	//
	// Stores file in the bucket.
	//
	// ---
	// consumes:
	// - multipart/form-data
	// produces:
	// - application/json
	// parameters:
	// - name: file
	//   in: formData
	//   type: file
	//   required: true
	// responses:
	//   '201':
	//     description: stored file
	//     schema:
	//       "$ref": "#/definitions/File"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	u, err := readUpload(r, "file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	f, err := s.svc.UploadFile(r.Context(), u)
	if err != nil {
		writeServiceError(w, r, "failed to upload file", err)
		return
	}

	writeOK(w, r, http.StatusCreated, File{File: *f, URL: s.fileURL(f.ID)})
}

func (s server) listStories(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /stories Stories ListStories
	//
	// Returns unexpired stories, newest first.
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
	//     description: stories
	//     schema:
	//       "$ref": "#/definitions/ListStoriesResponse"

	ctx := r.Context()

	limit, _, err := extractPagination(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	stories, err := s.s.ListStories(ctx, mm.GetUserID(ctx), s.now(), limit)
	if err != nil {
		writeInternalError(w, r, "failed to list stories", err)
		return
	}

	out := make([]*Story, len(stories))
	owners := make([]string, len(stories))
	for i, v := range stories {
		out[i] = &Story{Story: *v, ImageURL: s.fileURL(v.ImageID)}
		owners[i] = v.UserID
	}

	profiles, err := s.getProfiles(ctx, owners...)
	if err != nil {
		writeInternalError(w, r, "failed to get profiles", err)
		return
	}

	writeOK(w, r, http.StatusOK, ListStoriesResponse{Stories: out, Profiles: profiles})
}

func (s server) createStory(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /stories Stories CreateStory
	//
	// Creates story which expires in a day.
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
	// responses:
	//   '201':
	//     description: created story
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	image, err := readUpload(r, "image")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	st, err := s.svc.CreateStory(r.Context(), mm.GetUserID(r.Context()), r.FormValue("caption"), image)
	if err != nil {
		writeServiceError(w, r, "failed to create story", err)
		return
	}

	writeOK(w, r, http.StatusCreated, Story{Story: *st, ImageURL: s.fileURL(st.ImageID)})
}

func (s server) listReels(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /reels Reels ListReels
	//
	// Returns reels, newest first.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: reels
	//     schema:
	//       "$ref": "#/definitions/ListReelsResponse"

	ctx := r.Context()

	limit, offset, err := extractPagination(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reels, err := s.s.ListReels(ctx, mm.GetUserID(ctx), limit, offset)
	if err != nil {
		writeInternalError(w, r, "failed to list reels", err)
		return
	}

	out := make([]*Reel, len(reels))
	owners := make([]string, len(reels))
	for i, v := range reels {
		out[i] = &Reel{Reel: *v, VideoURL: s.fileURL(v.VideoFileID)}
		owners[i] = v.UserID
	}

	profiles, err := s.getProfiles(ctx, owners...)
	if err != nil {
		writeInternalError(w, r, "failed to get profiles", err)
		return
	}

	writeOK(w, r, http.StatusOK, ListReelsResponse{Reels: out, Profiles: profiles})
}

func (s server) createReel(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /reels Reels CreateReel
	//
	// Creates reel.
	//
	// ---
	// consumes:
	// - multipart/form-data
	// produces:
	// - application/json
	// parameters:
	// - name: video
	//   in: formData
	//   type: file
	//   required: true
	// - name: caption
	//   in: formData
	//   type: string
	// responses:
	//   '201':
	//     description: created reel
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	video, err := readUpload(r, "video")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	reel, err := s.svc.CreateReel(r.Context(), mm.GetUserID(r.Context()), r.FormValue("caption"), video)
	if err != nil {
		writeServiceError(w, r, "failed to create reel", err)
		return
	}

	writeOK(w, r, http.StatusCreated, Reel{Reel: *reel, VideoURL: s.fileURL(reel.VideoFileID)})
}

func (s server) listNotifications(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /notifications Notifications ListNotifications
	//
	// Returns notifications of requester, newest first.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: notifications
	//     schema:
	//       "$ref": "#/definitions/ListNotificationsResponse"

	ctx := r.Context()

	limit, _, err := extractPagination(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.s.ListNotifications(ctx, mm.GetUserID(ctx), limit)
	if err != nil {
		writeInternalError(w, r, "failed to list notifications", err)
		return
	}

	actors := make([]string, len(n))
	for i, v := range n {
		actors[i] = v.ActorID
	}

	profiles, err := s.getProfiles(ctx, actors...)
	if err != nil {
		writeInternalError(w, r, "failed to get profiles", err)
		return
	}

	writeOK(w, r, http.StatusOK, ListNotificationsResponse{Notifications: n, Profiles: profiles})
}

func (s server) profileFeed(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /profiles/{id}/feed.rss Users ProfileFeed
	//
	// Returns RSS feed of public profile's posts.
	//
	// ---
	// produces:
	// - application/rss+xml
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '200':
	//     description: rss feed
	//   '404':
	//     description: user not found or profile is private
	//     schema:
	//       "$ref": "#/definitions/Error"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		ctx := r.Context()

		u, err := s.s.GetUser(ctx, id)
		if err != nil {
			writeServiceError(w, r, "failed to get user", err)
			return
		}

		if u.IsPrivate {
			writeError(w, r, http.StatusNotFound, "not found")
			return
		}

		posts, err := s.s.ListPosts(ctx, &storage.ListPostsParams{
			Limit: feedSize,
			Owner: &id,
		})
		if err != nil {
			writeInternalError(w, r, "failed to list posts", err)
			return
		}

		rss, err := s.newFeed(u, posts).ToRss()
		if err != nil {
			writeInternalError(w, r, "failed to render feed", err)
			return
		}

		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(rss))
	})(w, r)
}

func (s server) newFeed(u *entities.User, posts []*entities.Post) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("Photon - %s", u.Name),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/users/%s", s.publicURL, u.ID)},
		Description: u.Bio,
		Author:      &feeds.Author{Name: u.Name},
		Created:     u.CreatedAt,
	}

	for _, p := range posts {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          p.ID,
			Title:       postTitle(p.Caption),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/posts/%s", s.publicURL, p.ID)},
			Description: p.Caption,
			Author:      &feeds.Author{Name: u.Name},
			Enclosure:   &feeds.Enclosure{Url: s.fileURL(p.ImageID), Type: service.RenderedContentType, Length: "0"},
			Created:     p.CreatedAt,
		})
	}

	if len(posts) > 0 {
		feed.Updated = posts[0].CreatedAt
	}

	return feed
}

func postTitle(caption string) string {
	title := strings.TrimSpace(strings.SplitN(caption, "\n", 2)[0])
	if title == "" {
		return "Post"
	}

	if r := []rune(title); len(r) > 80 {
		return string(r[:80]) + "..."
	}

	return title
}
