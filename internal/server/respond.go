package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	mm "github.com/Decentr-net/photon/internal/middleware"
	"github.com/Decentr-net/photon/internal/service"
	"github.com/Decentr-net/photon/internal/session"
	"github.com/Decentr-net/photon/internal/storage"
)

var errInvalidRequest = errors.New("invalid request")

func writeOK(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Error{Error: msg})
}

func writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	mm.GetLogger(r.Context()).WithError(err).Error(msg)
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

// writeServiceError maps known errors to status codes, the rest are internal errors.
func writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, errInvalidRequest):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrBlocked):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, storage.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeInternalError(w, r, msg, err)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errInvalidRequest)
		}
		return fmt.Errorf("%w: %s", errInvalidRequest, err.Error())
	}

	return nil
}

// pathID returns document id from url; ok is false when it is not valid uuid and so can't exist.
func pathID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}

	return id, true
}

func withPathID(f func(w http.ResponseWriter, r *http.Request, id string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeError(w, r, http.StatusNotFound, "not found")
			return
		}

		f(w, r, id)
	}
}

func extractPagination(q url.Values) (uint16, uint16, error) {
	limit, offset := uint16(defaultLimit), uint16(0)

	if s := q.Get("limit"); s != "" {
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil || v < 1 || v > maxLimit {
			return 0, 0, fmt.Errorf("%w: limit should be in [1, %d]", errInvalidRequest, maxLimit)
		}
		limit = uint16(v)
	}

	if s := q.Get("offset"); s != "" {
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: invalid offset", errInvalidRequest)
		}
		offset = uint16(v)
	}

	return limit, offset, nil
}

func (s server) fileURL(id string) string {
	return fmt.Sprintf("%s/v1/files/%s/view", s.publicURL, id)
}
