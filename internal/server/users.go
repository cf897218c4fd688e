package server

import (
	"net/http"
	"strings"

	"github.com/Decentr-net/photon/internal/entities"
	mm "github.com/Decentr-net/photon/internal/middleware"
	"github.com/Decentr-net/photon/internal/service"
	"github.com/Decentr-net/photon/internal/storage"
)

func (s server) getMe(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /me Users GetMe
	//
	// Returns profile of requester.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: user
	//   '401':
	//     description: unauthenticated
	//     schema:
	//       "$ref": "#/definitions/Error"

	u, err := s.s.GetUser(r.Context(), mm.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, "failed to get user", err)
		return
	}

	writeOK(w, r, http.StatusOK, u)
}

func (s server) updateMe(w http.ResponseWriter, r *http.Request) {
	// swagger:operation PATCH /me Users UpdateMe
	//
	// Updates profile of requester. Omitted fields are left untouched.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/UpdateUserRequest"
	// responses:
	//   '200':
	//     description: updated user
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.updateUser(w, r, &service.UpdateUserParams{
		Name:    req.Name,
		Bio:     req.Bio,
		Website: req.Website,
	})
}

func (s server) updatePrivacy(w http.ResponseWriter, r *http.Request) {
	// swagger:operation PUT /me/privacy Users UpdatePrivacy
	//
	// Updates privacy flags of requester.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/PrivacyRequest"
	// responses:
	//   '200':
	//     description: updated user

	var req PrivacyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.updateUser(w, r, &service.UpdateUserParams{
		PrivacySettings: entities.PrivacySettings(req),
	})
}

func (s server) updateUser(w http.ResponseWriter, r *http.Request, p *service.UpdateUserParams) {
	u, err := s.svc.UpdateUser(r.Context(), mm.GetUserID(r.Context()), p)
	if err != nil {
		writeServiceError(w, r, "failed to update user", err)
		return
	}

	writeOK(w, r, http.StatusOK, u)
}

func (s server) setAvatar(w http.ResponseWriter, r *http.Request) {
	// swagger:operation PUT /me/avatar Users SetAvatar
	//
	// Uploads avatar of requester.
	//
	// ---
	// consumes:
	// - multipart/form-data
	// produces:
	// - application/json
	// parameters:
	// - name: avatar
	//   in: formData
	//   type: file
	//   required: true
	// responses:
	//   '200':
	//     description: updated user
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}

	avatar, err := readUpload(r, "avatar")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	u, err := s.svc.SetAvatar(r.Context(), mm.GetUserID(r.Context()), avatar)
	if err != nil {
		writeServiceError(w, r, "failed to set avatar", err)
		return
	}

	writeOK(w, r, http.StatusOK, u)
}

func (s server) listBlocked(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /me/blocked Users ListBlocked
	//
	// Returns users blocked by requester.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: blocked users

	ctx := r.Context()

	blocks, err := s.s.ListBlocks(ctx, mm.GetUserID(ctx))
	if err != nil {
		writeInternalError(w, r, "failed to list blocks", err)
		return
	}

	ids := make([]string, len(blocks))
	for i, v := range blocks {
		ids[i] = v.BlockedUserID
	}

	profiles, err := s.getProfiles(ctx, ids...)
	if err != nil {
		writeInternalError(w, r, "failed to get profiles", err)
		return
	}

	out := make([]BlockedUser, len(blocks))
	for i, v := range blocks {
		out[i] = BlockedUser{
			BlockedUser: *v,
			User:        profiles[v.BlockedUserID],
		}
	}

	writeOK(w, r, http.StatusOK, out)
}

func (s server) searchUsers(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /users Users SearchUsers
	//
	// Searches users by name.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: q
	//   in: query
	//   required: true
	// - name: limit
	//   in: query
	//   required: false
	//   default: 10
	// responses:
	//   '200':
	//     description: users
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, r, http.StatusBadRequest, "q is required")
		return
	}

	limit, _, err := extractPagination(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	users, err := s.s.SearchUsers(r.Context(), q, limit)
	if err != nil {
		writeInternalError(w, r, "failed to search users", err)
		return
	}

	writeOK(w, r, http.StatusOK, users)
}

func (s server) getProfile(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /users/{id} Users GetProfile
	//
	// Returns profile page: user, posts and follow counters.
	// Posts of private account are returned to followers only.
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
	//     description: profile
	//     schema:
	//       "$ref": "#/definitions/ProfileResponse"
	//   '404':
	//     description: user not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		ctx := r.Context()
		userID := mm.GetUserID(ctx)

		limit, offset, err := extractPagination(r.URL.Query())
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		u, err := s.s.GetUser(ctx, id)
		if err != nil {
			writeServiceError(w, r, "failed to get user", err)
			return
		}

		stats, err := s.s.GetFollowStats(ctx, id)
		if err != nil {
			writeInternalError(w, r, "failed to get follow stats", err)
			return
		}

		resp := ProfileResponse{
			User:      u,
			Posts:     []*Post{},
			Followers: stats.Followers,
			Following: stats.Following,
		}

		if id != userID {
			if resp.IsFollowing, err = s.s.IsFollowing(ctx, userID, id); err != nil {
				writeInternalError(w, r, "failed to check follow", err)
				return
			}

			if resp.IsBlocked, err = s.s.IsBlocked(ctx, userID, id); err != nil {
				writeInternalError(w, r, "failed to check block", err)
				return
			}
		}

		if id == userID || (!resp.IsBlocked && (!u.IsPrivate || resp.IsFollowing)) {
			posts, err := s.s.ListPosts(ctx, &storage.ListPostsParams{
				Limit:  limit,
				Offset: offset,
				Owner:  &id,
			})
			if err != nil {
				writeInternalError(w, r, "failed to list posts", err)
				return
			}

			if resp.Posts, err = s.buildPosts(ctx, userID, posts); err != nil {
				writeInternalError(w, r, "failed to build posts", err)
				return
			}
		}

		writeOK(w, r, http.StatusOK, resp)
	})(w, r)
}

func (s server) listFollowers(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /users/{id}/followers Users ListFollowers
	//
	// Returns users following the user.
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
	//     description: users

	s.listFollows(storage.Followers)(w, r)
}

func (s server) listFollowing(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /users/{id}/following Users ListFollowing
	//
	// Returns users followed by the user.
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
	//     description: users

	s.listFollows(storage.Following)(w, r)
}

func (s server) listFollows(d storage.FollowDirection) http.HandlerFunc {
	return withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		ctx := r.Context()

		limit, offset, err := extractPagination(r.URL.Query())
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		follows, err := s.s.ListFollows(ctx, &storage.ListFollowsParams{
			UserID:    id,
			Direction: d,
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			writeInternalError(w, r, "failed to list follows", err)
			return
		}

		ids := make([]string, len(follows))
		for i, v := range follows {
			if d == storage.Followers {
				ids[i] = v.FollowerID
			} else {
				ids[i] = v.FollowedID
			}
		}

		profiles, err := s.getProfiles(ctx, ids...)
		if err != nil {
			writeInternalError(w, r, "failed to get profiles", err)
			return
		}

		out := make([]*entities.User, 0, len(ids))
		for _, v := range ids {
			if u, ok := profiles[v]; ok {
				out = append(out, u)
			}
		}

		writeOK(w, r, http.StatusOK, out)
	})
}

func (s server) setFollow(on bool) http.HandlerFunc {
	// swagger:operation PUT /users/{id}/follow Users Follow
	//
	// Follows user. DELETE method unfollows. Both are idempotent.
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
	//     description: state of follow and count of followers
	//     schema:
	//       "$ref": "#/definitions/ToggleResponse"
	//   '400':
	//     description: user can not follow themselves
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '403':
	//     description: one of users is blocked
	//     schema:
	//       "$ref": "#/definitions/Error"

	return withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		st, err := s.svc.SetFollow(r.Context(), mm.GetUserID(r.Context()), id, on)
		if err != nil {
			writeServiceError(w, r, "failed to set follow", err)
			return
		}

		writeOK(w, r, http.StatusOK, toToggleResponse(st))
	})
}

func (s server) setBlock(on bool) http.HandlerFunc {
	// swagger:operation PUT /users/{id}/block Users Block
	//
	// Blocks user and removes follows in both directions. DELETE method unblocks.
	//
	// ---
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	//   type: string
	// responses:
	//   '204':
	//     description: done

	return withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		if err := s.svc.SetBlock(r.Context(), mm.GetUserID(r.Context()), id, on); err != nil {
			writeServiceError(w, r, "failed to set block", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}
