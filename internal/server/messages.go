package server

import (
	"net/http"
	"slices"

	"github.com/google/uuid"

	mm "github.com/Decentr-net/photon/internal/middleware"
	"github.com/Decentr-net/photon/internal/service"
)

func (s server) listConversations(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /conversations Messages ListConversations
	//
	// Returns conversations of requester, recently updated first.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: conversations
	//     schema:
	//       "$ref": "#/definitions/ListConversationsResponse"

	ctx := r.Context()

	c, err := s.s.ListConversations(ctx, mm.GetUserID(ctx))
	if err != nil {
		writeInternalError(w, r, "failed to list conversations", err)
		return
	}

	var participants []string
	for _, v := range c {
		participants = append(participants, v.Participants...)
	}

	profiles, err := s.getProfiles(ctx, participants...)
	if err != nil {
		writeInternalError(w, r, "failed to get profiles", err)
		return
	}

	writeOK(w, r, http.StatusOK, ListConversationsResponse{Conversations: c, Profiles: profiles})
}

func (s server) listMessages(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /conversations/{id}/messages Messages ListMessages
	//
	// Returns messages of conversation, newest first.
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
	// responses:
	//   '200':
	//     description: messages
	//   '403':
	//     description: requester is not a participant
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '404':
	//     description: conversation not found
	//     schema:
	//       "$ref": "#/definitions/Error"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		ctx := r.Context()

		limit, _, err := extractPagination(r.URL.Query())
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		c, err := s.s.GetConversation(ctx, id)
		if err != nil {
			writeServiceError(w, r, "failed to get conversation", err)
			return
		}

		if !slices.Contains(c.Participants, mm.GetUserID(ctx)) {
			writeError(w, r, http.StatusForbidden, service.ErrForbidden.Error())
			return
		}

		m, err := s.s.ListMessages(ctx, id, limit)
		if err != nil {
			writeInternalError(w, r, "failed to list messages", err)
			return
		}

		writeOK(w, r, http.StatusOK, m)
	})(w, r)
}

func (s server) sendToConversation(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /conversations/{id}/messages Messages SendToConversation
	//
	// Sends text message to conversation.
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
	//     "$ref": "#/definitions/MessageRequest"
	// responses:
	//   '201':
	//     description: sent message
	//   '403':
	//     description: requester is not a participant or blocked
	//     schema:
	//       "$ref": "#/definitions/Error"

	withPathID(func(w http.ResponseWriter, r *http.Request, id string) {
		var req MessageRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}

		s.send(w, r, &service.SendMessageParams{
			ConversationID: id,
			Content:        req.Content,
		})
	})(w, r)
}

func (s server) sendMessage(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /messages Messages SendMessage
	//
	// Sends text message to user. Conversation is created when needed.
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
	//     "$ref": "#/definitions/MessageRequest"
	// responses:
	//   '201':
	//     description: sent message
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '403':
	//     description: one of users is blocked
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := uuid.Parse(req.ReceiverID); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid receiver")
		return
	}

	s.send(w, r, &service.SendMessageParams{
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
	})
}

func (s server) send(w http.ResponseWriter, r *http.Request, p *service.SendMessageParams) {
	m, err := s.svc.SendMessage(r.Context(), mm.GetUserID(r.Context()), p)
	if err != nil {
		writeServiceError(w, r, "failed to send message", err)
		return
	}

	writeOK(w, r, http.StatusCreated, m)
}
