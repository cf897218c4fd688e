// Package server Photon
//
// The Photon is a photo sharing service: profiles, posts with filtered images, likes, comments,
// follows, stories, reels, direct messages and realtime updates.
//
//     Schemes: https
//     BasePath: /v1
//     Version: 1.0.0
//
//     Produces:
//     - application/json
//     Consumes:
//     - application/json
//     - multipart/form-data
//
// swagger:meta
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	mm "github.com/Decentr-net/photon/internal/middleware"
	"github.com/Decentr-net/photon/internal/service"
	"github.com/Decentr-net/photon/internal/session"
	"github.com/Decentr-net/photon/internal/storage"
)

//go:generate swagger generate spec -t swagger -m -c . -o ../../static/swagger.json

const (
	maxBodySize   = 1024
	maxUploadSize = 20 << 20

	trendingCacheTTL = time.Minute
)

// Config contains dependencies of API.
type Config struct {
	Storage     storage.Storage
	Service     service.Service
	Sessions    session.Manager
	Realtime    http.Handler
	Cache       mm.Storage
	RateLimiter *mm.RateLimiter
	Timeout     time.Duration
	// PublicURL is a base url used in links to files and posts.
	PublicURL string
}

type server struct {
	s         storage.Storage
	svc       service.Service
	publicURL string
	now       func() time.Time
}

// SetupRouter setups handlers to chi router.
func SetupRouter(r chi.Router, c Config) {
	r.Use(
		middleware.RequestID,
		mm.Logger,
		middleware.StripSlashes,
		cors.AllowAll().Handler,
		middleware.Recoverer,
	)

	if c.RateLimiter != nil {
		r.Use(c.RateLimiter.Handler)
	}

	srv := server{
		s:         c.Storage,
		svc:       c.Service,
		publicURL: strings.TrimSuffix(c.PublicURL, "/"),
		now:       time.Now,
	}

	r.Route("/v1", func(r chi.Router) {
		// websocket connections live longer than timeout
		r.With(mm.Authenticator(c.Sessions)).Get("/realtime", c.Realtime.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(c.Timeout))

			r.Group(func(r chi.Router) {
				r.Use(mm.BodyLimiter(maxBodySize))

				r.Post("/auth/signup", srv.signUp)
				r.Post("/auth/login", srv.login)
				r.Get("/files/{id}/view", srv.viewFile)
				r.Get("/profiles/{id}/feed.rss", srv.profileFeed)
			})

			r.Group(func(r chi.Router) {
				r.Use(mm.Authenticator(c.Sessions))

				r.Group(func(r chi.Router) {
					r.Use(mm.BodyLimiter(maxBodySize))

					r.Post("/auth/logout", srv.logout)

					r.Get("/me", srv.getMe)
					r.Patch("/me", srv.updateMe)
					r.Put("/me/privacy", srv.updatePrivacy)
					r.Get("/me/blocked", srv.listBlocked)

					r.Get("/users", srv.searchUsers)
					r.Get("/users/{id}", srv.getProfile)
					r.Get("/users/{id}/followers", srv.listFollowers)
					r.Get("/users/{id}/following", srv.listFollowing)
					r.Put("/users/{id}/follow", srv.setFollow(true))
					r.Delete("/users/{id}/follow", srv.setFollow(false))
					r.Put("/users/{id}/block", srv.setBlock(true))
					r.Delete("/users/{id}/block", srv.setBlock(false))

					r.Get("/posts", srv.listPosts)
					r.Get("/posts/{id}", srv.getPost)
					r.Delete("/posts/{id}", srv.deletePost)
					r.Get("/posts/{id}/analytics", srv.getAnalytics)
					r.Put("/posts/{id}/like", srv.setLike(true))
					r.Delete("/posts/{id}/like", srv.setLike(false))
					r.Put("/posts/{id}/bookmark", srv.setBookmark(true))
					r.Delete("/posts/{id}/bookmark", srv.setBookmark(false))
					r.Get("/posts/{id}/comments", srv.listComments)
					r.Post("/posts/{id}/comments", srv.addComment)
					r.Post("/posts/{id}/share", srv.sharePost)
					r.Get("/bookmarks", srv.listBookmarks)

					r.Get("/hashtags/trending", mm.Cached(c.Cache, trendingCacheTTL, srv.listTrendingHashtags))

					r.Get("/stories", srv.listStories)
					r.Get("/reels", srv.listReels)
					r.Get("/notifications", srv.listNotifications)

					r.Get("/conversations", srv.listConversations)
					r.Get("/conversations/{id}/messages", srv.listMessages)
					r.Post("/conversations/{id}/messages", srv.sendToConversation)
					r.Post("/messages", srv.sendMessage)
				})

				r.Group(func(r chi.Router) {
					r.Use(mm.BodyLimiter(maxUploadSize))

					r.Put("/me/avatar", srv.setAvatar)
					r.Post("/posts", srv.createPost)
					r.Post("/stories", srv.createStory)
					r.Post("/reels", srv.createReel)
					r.Post("/files", srv.uploadFile)
				})
			})
		})
	})
}
