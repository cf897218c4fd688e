package server

import (
	"net/http"

	mm "github.com/Decentr-net/photon/internal/middleware"
)

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     mm.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     mm.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s server) signUp(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /auth/signup Auth SignUp
	//
	// Creates account and profile, starts session.
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
	//     "$ref": "#/definitions/SignUpRequest"
	// responses:
	//   '201':
	//     description: session token and created user
	//     schema:
	//       "$ref": "#/definitions/AuthResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '409':
	//     description: email is already taken
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := s.svc.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeServiceError(w, r, "failed to sign up", err)
		return
	}

	setSessionCookie(w, token)
	writeOK(w, r, http.StatusCreated, AuthResponse{Token: token, User: user})
}

func (s server) login(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /auth/login Auth Login
	//
	// Starts session.
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
	//     "$ref": "#/definitions/LoginRequest"
	// responses:
	//   '200':
	//     description: session token and user
	//     schema:
	//       "$ref": "#/definitions/AuthResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '401':
	//     description: invalid credentials
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := s.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "failed to sign in", err)
		return
	}

	setSessionCookie(w, token)
	writeOK(w, r, http.StatusOK, AuthResponse{Token: token, User: user})
}

func (s server) logout(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /auth/logout Auth Logout
	//
	// Revokes current session.
	//
	// ---
	// responses:
	//   '204':
	//     description: session is revoked
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	if err := s.svc.SignOut(r.Context(), mm.GetToken(r.Context())); err != nil {
		writeServiceError(w, r, "failed to sign out", err)
		return
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
