package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Decentr-net/photon/internal/entities"
)

type notificationDTO struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ActorID   string    `db:"actor_id"`
	Type      string    `db:"type"`
	PostID    *string   `db:"post_id"`
	CreatedAt time.Time `db:"created_at"`
}

type conversationDTO struct {
	ID           string         `db:"id"`
	Participants pq.StringArray `db:"participants"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type messageDTO struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	SenderID       string    `db:"sender_id"`
	ReceiverID     string    `db:"receiver_id"`
	Type           string    `db:"type"`
	Content        string    `db:"content"`
	CreatedAt      time.Time `db:"created_at"`
}

func (c conversationDTO) toEntity() *entities.Conversation {
	return &entities.Conversation{
		ID:           c.ID,
		Participants: []string(c.Participants),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (s pg) CreateNotification(ctx context.Context, n *entities.Notification) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO notification(id, user_id, actor_id, type, post_id, created_at)
			VALUES(:id, :user_id, :actor_id, :type, :post_id, :created_at)
		`, notificationDTO{
			ID:        n.ID,
			UserID:    n.UserID,
			ActorID:   n.ActorID,
			Type:      string(n.Type),
			PostID:    n.PostID,
			CreatedAt: n.CreatedAt.UTC(),
		},
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) ListNotifications(ctx context.Context, userID string, limit uint16) ([]*entities.Notification, error) {
	var n []*notificationDTO
	if err := sqlx.SelectContext(ctx, s.ext, &n, `
			SELECT id, user_id, actor_id, type, post_id, created_at FROM notification
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, userID, limit,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Notification, len(n))
	for i, v := range n {
		out[i] = &entities.Notification{
			ID:        v.ID,
			UserID:    v.UserID,
			ActorID:   v.ActorID,
			Type:      entities.NotificationType(v.Type),
			PostID:    v.PostID,
			CreatedAt: v.CreatedAt,
		}
	}

	return out, nil
}

func (s pg) CreateConversation(ctx context.Context, c *entities.Conversation) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO conversation(id, participants, created_at, updated_at)
			VALUES(:id, :participants, :created_at, :updated_at)
		`, conversationDTO{
			ID:           c.ID,
			Participants: sortedParticipants(c.Participants),
			CreatedAt:    c.CreatedAt.UTC(),
			UpdatedAt:    c.UpdatedAt.UTC(),
		},
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) GetConversation(ctx context.Context, id string) (*entities.Conversation, error) {
	var c conversationDTO
	if err := sqlx.GetContext(ctx, s.ext, &c, `
			SELECT id, participants, created_at, updated_at FROM conversation WHERE id = $1
		`, id,
	); err != nil {
		return nil, wrapGetError(err)
	}

	return c.toEntity(), nil
}

func (s pg) FindConversation(ctx context.Context, participants []string) (*entities.Conversation, error) {
	var c conversationDTO
	if err := sqlx.GetContext(ctx, s.ext, &c, `
			SELECT id, participants, created_at, updated_at FROM conversation
			WHERE participants = $1
			ORDER BY created_at
			LIMIT 1
		`, sortedParticipants(participants),
	); err != nil {
		return nil, wrapGetError(err)
	}

	return c.toEntity(), nil
}

func (s pg) ListConversations(ctx context.Context, userID string) ([]*entities.Conversation, error) {
	var c []*conversationDTO
	if err := sqlx.SelectContext(ctx, s.ext, &c, `
			SELECT id, participants, created_at, updated_at FROM conversation
			WHERE participants @> ARRAY[$1]::TEXT[]
			ORDER BY updated_at DESC
		`, userID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Conversation, len(c))
	for i, v := range c {
		out[i] = v.toEntity()
	}

	return out, nil
}

func (s pg) CreateMessage(ctx context.Context, m *entities.Message) error {
	if _, err := sqlx.NamedExecContext(ctx, s.ext,
		`
			INSERT INTO message(id, conversation_id, sender_id, receiver_id, type, content, created_at)
			VALUES(:id, :conversation_id, :sender_id, :receiver_id, :type, :content, :created_at)
		`, messageDTO{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			ReceiverID:     m.ReceiverID,
			Type:           string(m.Type),
			Content:        m.Content,
			CreatedAt:      m.CreatedAt.UTC(),
		},
	); err != nil {
		return wrapExecError(err)
	}

	if _, err := s.ext.ExecContext(ctx,
		`UPDATE conversation SET updated_at = $2 WHERE id = $1`, m.ConversationID, m.CreatedAt.UTC(),
	); err != nil {
		return wrapExecError(err)
	}

	return nil
}

func (s pg) ListMessages(ctx context.Context, conversationID string, limit uint16) ([]*entities.Message, error) {
	var m []*messageDTO
	if err := sqlx.SelectContext(ctx, s.ext, &m, `
			SELECT id, conversation_id, sender_id, receiver_id, type, content, created_at FROM message
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		`, conversationID, limit,
	); err != nil {
		return nil, wrapGetError(err)
	}

	out := make([]*entities.Message, len(m))
	for i, v := range m {
		out[i] = &entities.Message{
			ID:             v.ID,
			ConversationID: v.ConversationID,
			SenderID:       v.SenderID,
			ReceiverID:     v.ReceiverID,
			Type:           entities.MessageType(v.Type),
			Content:        v.Content,
			CreatedAt:      v.CreatedAt,
		}
	}

	return out, nil
}

// sortedParticipants makes participants comparable as a set.
func sortedParticipants(p []string) pq.StringArray {
	out := stringsUnique(p)
	sort.Strings(out)

	return out
}
