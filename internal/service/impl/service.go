// Package impl is implementation of service interface.
package impl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Decentr-net/photon/internal/entities"
	"github.com/Decentr-net/photon/internal/events"
	"github.com/Decentr-net/photon/internal/hashtag"
	"github.com/Decentr-net/photon/internal/imaging"
	"github.com/Decentr-net/photon/internal/service"
	"github.com/Decentr-net/photon/internal/session"
	"github.com/Decentr-net/photon/internal/storage"
)

const minPasswordLength = 8

var log = logrus.WithField("layer", "service").WithField("package", "impl")

type srv struct {
	s  storage.Storage
	sm session.Manager
	p  events.Publisher

	storyTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	newID      func() string
}

// New creates new instance of service.
func New(s storage.Storage, sm session.Manager, p events.Publisher, storyTTL time.Duration) service.Service {
	return srv{
		s:          s,
		sm:         sm,
		p:          p,
		storyTTL:   storyTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
}

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", service.ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func (s srv) SignUp(ctx context.Context, email, password, name string) (string, *entities.User, error) {
	email, name = strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(name)

	if !strings.Contains(email, "@") {
		return "", nil, invalidRequest("invalid email")
	}
	if len(password) < minPasswordLength {
		return "", nil, invalidRequest("password should contain at least %d characters", minPasswordLength)
	}
	if name == "" {
		return "", nil, invalidRequest("name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now().UTC()
	u := &entities.User{
		ID:                 s.newID(),
		Email:              email,
		Name:               name,
		IsPrivate:          false,
		ShowActivityStatus: true,
		AllowTagging:       true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.s.InTx(ctx, func(tx storage.Storage) error {
		if err := tx.CreateAccount(ctx, &entities.Account{
			ID:           u.ID,
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    now,
		}); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return service.ErrEmailTaken
			}
			return fmt.Errorf("failed to create account: %w", err)
		}

		if err := tx.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return nil
	}); err != nil {
		return "", nil, err
	}

	token, _, err := s.sm.Create(ctx, u.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return token, u, nil
}

func (s srv) SignIn(ctx context.Context, email, password string) (string, *entities.User, error) {
	a, err := s.s.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil, service.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)); err != nil {
		return "", nil, service.ErrInvalidCredentials
	}

	u, err := s.s.GetUser(ctx, a.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	token, _, err := s.sm.Create(ctx, u.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return token, u, nil
}

func (s srv) SignOut(ctx context.Context, token string) error {
	if err := s.sm.Revoke(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

func (s srv) UpdateUser(ctx context.Context, id string, p *service.UpdateUserParams) (*entities.User, error) {
	params := storage.UpdateUserParams{
		Name:            trimmed(p.Name),
		Bio:             trimmed(p.Bio),
		Website:         trimmed(p.Website),
		PrivacySettings: p.PrivacySettings,
		UpdatedAt:       s.now().UTC(),
	}

	if params.Name != nil && *params.Name == "" {
		return nil, invalidRequest("name can not be empty")
	}

	u, err := s.s.UpdateUser(ctx, id, &params)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

func (s srv) SetAvatar(ctx context.Context, id string, upload *service.Upload) (*entities.User, error) {
	data, err := render(upload, nil)
	if err != nil {
		return nil, err
	}

	var u *entities.User
	if err := s.s.InTx(ctx, func(tx storage.Storage) error {
		f, err := s.createFile(ctx, tx, jpegName(upload.Name), service.RenderedContentType, data)
		if err != nil {
			return err
		}

		u, err = tx.UpdateUser(ctx, id, &storage.UpdateUserParams{
			Avatar:    &f.ID,
			UpdatedAt: s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return u, nil
}

func (s srv) SetFollow(ctx context.Context, followerID, followedID string, on bool) (*service.ToggleState, error) {
	if followerID == followedID {
		return nil, invalidRequest("user can not follow themselves")
	}

	if _, err := s.s.GetUser(ctx, followedID); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var (
		follow       *entities.Follow
		notification *entities.Notification
		stats        *entities.FollowStats
	)

	if err := s.s.InTx(ctx, func(tx storage.Storage) error {
		if on {
			blocked, err := tx.IsBlocked(ctx, followerID, followedID)
			if err != nil {
				return fmt.Errorf("failed to check block: %w", err)
			}
			if blocked {
				return service.ErrBlocked
			}

			f := &entities.Follow{
				ID:         s.newID(),
				FollowerID: followerID,
				FollowedID: followedID,
				CreatedAt:  s.now().UTC(),
			}

			switch err := tx.CreateFollow(ctx, f); {
			case err == nil:
				follow = f
				if notification, err = s.notify(ctx, tx, followedID, followerID, entities.FollowNotification, nil); err != nil {
					return err
				}
			case errors.Is(err, storage.ErrAlreadyExists):
			default:
				return fmt.Errorf("failed to create follow: %w", err)
			}
		} else {
			if err := tx.DeleteFollow(ctx, followerID, followedID); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("failed to delete follow: %w", err)
			}
		}

		var err error
		if stats, err = tx.GetFollowStats(ctx, followedID); err != nil {
			return fmt.Errorf("failed to get follow stats: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	if follow != nil {
		s.publish(ctx, storage.FollowsCollection, follow.ID, follow, events.To(followerID, followedID))
	}
	if notification != nil {
		s.publish(ctx, storage.NotificationsCollection, notification.ID, notification, events.To(notification.UserID))
	}

	return &service.ToggleState{Active: on, Count: stats.Followers}, nil
}

func (s srv) SetBlock(ctx context.Context, userID, blockedUserID string, on bool) error {
	if userID == blockedUserID {
		return invalidRequest("user can not block themselves")
	}

	if _, err := s.s.GetUser(ctx, blockedUserID); err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !on {
		if err := s.s.DeleteBlock(ctx, userID, blockedUserID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to delete block: %w", err)
		}
		return nil
	}

	return s.s.InTx(ctx, func(tx storage.Storage) error {
		if err := tx.CreateBlock(ctx, &entities.BlockedUser{
			ID:            s.newID(),
			UserID:        userID,
			BlockedUserID: blockedUserID,
			CreatedAt:     s.now().UTC(),
		}); err != nil && !errors.Is(err, storage.ErrAlreadyExists) {
			return fmt.Errorf("failed to create block: %w", err)
		}

		for _, v := range [][2]string{{userID, blockedUserID}, {blockedUserID, userID}} {
			if err := tx.DeleteFollow(ctx, v[0], v[1]); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("failed to delete follow: %w", err)
			}
		}

		return nil
	})
}

func (s srv) SetLike(ctx context.Context, userID, postID string, on bool) (*service.ToggleState, error) {
	return s.setPostRelation(ctx, userID, postID, on, postRelation{
		collection: storage.LikesCollection,
		create: func(tx storage.Storage, id string, ts time.Time) (interface{}, error) {
			l := &entities.Like{ID: id, UserID: userID, PostID: postID, CreatedAt: ts}
			return l, tx.CreateLike(ctx, l)
		},
		delete: func(tx storage.Storage) error {
			return tx.DeleteLike(ctx, userID, postID)
		},
		count: func(st entities.PostStats) uint32 {
			return st.Likes
		},
		notification: entities.LikeNotification,
	})
}

func (s srv) SetBookmark(ctx context.Context, userID, postID string, on bool) (*service.ToggleState, error) {
	return s.setPostRelation(ctx, userID, postID, on, postRelation{
		create: func(tx storage.Storage, id string, ts time.Time) (interface{}, error) {
			return nil, tx.CreateBookmark(ctx, &entities.Bookmark{ID: id, UserID: userID, PostID: postID, CreatedAt: ts})
		},
		delete: func(tx storage.Storage) error {
			return tx.DeleteBookmark(ctx, userID, postID)
		},
		count: func(st entities.PostStats) uint32 {
			return st.Bookmarks
		},
	})
}

type postRelation struct {
	// collection is a collection to publish created relation to; empty means no event.
	collection storage.Collection
	create     func(tx storage.Storage, id string, ts time.Time) (interface{}, error)
	delete     func(tx storage.Storage) error
	count      func(s entities.PostStats) uint32
	// notification is sent to post owner on creation; empty means no notification.
	notification entities.NotificationType
}

func (s srv) setPostRelation(ctx context.Context, userID, postID string, on bool, r postRelation) (*service.ToggleState, error) {
	post, err := s.getVisiblePost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	var (
		id           = s.newID()
		created      interface{}
		notification *entities.Notification
		stats        map[string]entities.PostStats
	)

	if err := s.s.InTx(ctx, func(tx storage.Storage) error {
		if on {
			v, err := r.create(tx, id, s.now().UTC())
			switch {
			case err == nil:
				created = v
				if r.notification != "" && post.UserID != userID {
					if notification, err = s.notify(ctx, tx, post.UserID, userID, r.notification, &post.ID); err != nil {
						return err
					}
				}
			case errors.Is(err, storage.ErrAlreadyExists):
			default:
				return fmt.Errorf("failed to create relation: %w", err)
			}
		} else {
			if err := r.delete(tx); err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("failed to delete relation: %w", err)
			}
		}

		if stats, err = tx.GetPostStats(ctx, postID); err != nil {
			return fmt.Errorf("failed to get post stats: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	if created != nil && r.collection != "" {
		s.publish(ctx, r.collection, id, created, events.OwnedBy(post.UserID))
	}
	if notification != nil {
		s.publish(ctx, storage.NotificationsCollection, notification.ID, notification, events.To(notification.UserID))
	}

	return &service.ToggleState{Active: on, Count: r.count(stats[postID])}, nil
}

func (s srv) CreatePost(ctx context.Context, userID string, p *service.CreatePostParams) (*entities.Post, error) {
	filter, err := p.Adjustment.Filter()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", service.ErrInvalidRequest, err.Error())
	}

	data, err := render(&p.Image, filter)
	if err != nil {
		return nil, err
	}

	post := &entities.Post{
		ID:        s.newID(),
		UserID:    userID,
		Caption:   strings.TrimSpace(p.Caption),
		CreatedAt: s.now().UTC(),
	}

	if err := s.s.InTx(ctx, func(tx storage.Storage) error {
		f, err := s.createFile(ctx, tx, jpegName(p.Image.Name), service.RenderedContentType, data)
		if err != nil {
			return err
		}
		post.ImageID = f.ID

		if err := tx.CreatePost(ctx, post); err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}

		for _, v := range hashtag.Extract(post.Caption) {
			if err := tx.IncrementHashtag(ctx, v, post.CreatedAt); err != nil {
				return fmt.Errorf("failed to increment hashtag %s: %w", v, err)
			}
		}

		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, storage.PostsCollection, post.ID, post, events.OwnedBy(userID))

	return post, nil
}

func (s srv) DeletePost(ctx context.Context, userID, postID string) error {
	p, err := s.s.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}

	if p.UserID != userID {
		return service.ErrForbidden
	}

	if err := s.s.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

func (s srv) AddComment(ctx context.Context, userID, postID, content string) (*entities.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidRequest("comment can not be empty")
	}

	post, err := s.getVisiblePost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	c := &entities.Comment{
		ID:        s.newID(),
		UserID:    userID,
		PostID:    postID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}

	var notification *entities.Notification
	if err := s.s.InTx(ctx, func(tx storage.Storage) error {
		if err := tx.CreateComment(ctx, c); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		if post.UserID != userID {
			if notification, err = s.notify(ctx, tx, post.UserID, userID, entities.CommentNotification, &post.ID); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, storage.CommentsCollection, c.ID, c, events.OwnedBy(post.UserID))
	if notification != nil {
		s.publish(ctx, storage.NotificationsCollection, notification.ID, notification, events.To(notification.UserID))
	}

	return c, nil
}

func (s srv) CreateStory(ctx context.Context, userID, caption string, image *service.Upload) (*entities.Story, error) {
	data, err := render(image, nil)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	st := &entities.Story{
		ID:        s.newID(),
		UserID:    userID,
		Caption:   strings.TrimSpace(caption),
		CreatedAt: now,
		ExpiresAt: now.Add(s.storyTTL),
	}

	if err := s.s.InTx(ctx, func(tx storage.Storage) error {
		f, err := s.createFile(ctx, tx, jpegName(image.Name), service.RenderedContentType, data)
		if err != nil {
			return err
		}
		st.ImageID = f.ID

		if err := tx.CreateStory(ctx, st); err != nil {
			return fmt.Errorf("failed to create story: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, storage.StoriesCollection, st.ID, st, events.OwnedBy(userID))

	return st, nil
}

func (s srv) CreateReel(ctx context.Context, userID, caption string, video *service.Upload) (*entities.Reel, error) {
	if !strings.HasPrefix(video.ContentType, "video/") {
		return nil, invalidRequest("unsupported content type %q", video.ContentType)
	}
	if len(video.Data) == 0 {
		return nil, invalidRequest("empty file")
	}

	r := &entities.Reel{
		ID:        s.newID(),
		UserID:    userID,
		Caption:   strings.TrimSpace(caption),
		CreatedAt: s.now().UTC(),
	}

	if err := s.s.InTx(ctx, func(tx storage.Storage) error {
		f, err := s.createFile(ctx, tx, video.Name, video.ContentType, video.Data)
		if err != nil {
			return err
		}
		r.VideoFileID = f.ID

		if err := tx.CreateReel(ctx, r); err != nil {
			return fmt.Errorf("failed to create reel: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, storage.ReelsCollection, r.ID, r, events.OwnedBy(userID))

	return r, nil
}

func (s srv) SendMessage(ctx context.Context, senderID string, p *service.SendMessageParams) (*entities.Message, error) {
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return nil, invalidRequest("message can not be empty")
	}

	receiverID := p.ReceiverID

	if p.ConversationID != "" {
		c, err := s.s.GetConversation(ctx, p.ConversationID)
		if err != nil {
			return nil, fmt.Errorf("failed to get conversation: %w", err)
		}

		if receiverID, err = interlocutor(c, senderID); err != nil {
			return nil, err
		}
	}

	if receiverID == "" {
		return nil, invalidRequest("conversation or receiver is required")
	}

	return s.sendMessage(ctx, senderID, receiverID, entities.TextMessage, content)
}

func (s srv) SharePost(ctx context.Context, senderID, postID, receiverID string) (*entities.Message, error) {
	if _, err := s.getVisiblePost(ctx, senderID, postID); err != nil {
		return nil, err
	}

	return s.sendMessage(ctx, senderID, receiverID, entities.SharedPostMessage, postID)
}

func (s srv) sendMessage(ctx context.Context, senderID, receiverID string, t entities.MessageType, content string) (*entities.Message, error) {
	if senderID != receiverID {
		if _, err := s.s.GetUser(ctx, receiverID); err != nil {
			return nil, fmt.Errorf("failed to get receiver: %w", err)
		}

		blocked, err := s.s.IsBlocked(ctx, senderID, receiverID)
		if err != nil {
			return nil, fmt.Errorf("failed to check block: %w", err)
		}
		if blocked {
			return nil, service.ErrBlocked
		}
	}

	m := &entities.Message{
		ID:         s.newID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Type:       t,
		Content:    content,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.s.InTx(ctx, func(tx storage.Storage) error {
		participants := []string{senderID, receiverID}

		c, err := tx.FindConversation(ctx, participants)
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrNotFound):
			c = &entities.Conversation{
				ID:           s.newID(),
				Participants: participants,
				CreatedAt:    m.CreatedAt,
				UpdatedAt:    m.CreatedAt,
			}
			if err := tx.CreateConversation(ctx, c); err != nil {
				return fmt.Errorf("failed to create conversation: %w", err)
			}
		default:
			return fmt.Errorf("failed to find conversation: %w", err)
		}

		m.ConversationID = c.ID

		if err := tx.CreateMessage(ctx, m); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, storage.MessagesCollection, m.ID, m, events.To(senderID, receiverID))

	return m, nil
}

func (s srv) UploadFile(ctx context.Context, u *service.Upload) (*entities.File, error) {
	if len(u.Data) == 0 {
		return nil, invalidRequest("empty file")
	}

	return s.createFile(ctx, s.s, path.Base(u.Name), u.ContentType, u.Data)
}

func (s srv) createFile(ctx context.Context, tx storage.Storage, name, contentType string, data []byte) (*entities.File, error) {
	f := &entities.File{
		ID:          s.newID(),
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
		CreatedAt:   s.now().UTC(),
	}

	if err := tx.CreateFile(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return f, nil
}

func (s srv) notify(
	ctx context.Context,
	tx storage.Storage,
	userID, actorID string,
	t entities.NotificationType,
	postID *string,
) (*entities.Notification, error) {
	n := &entities.Notification{
		ID:        s.newID(),
		UserID:    userID,
		ActorID:   actorID,
		Type:      t,
		PostID:    postID,
		CreatedAt: s.now().UTC(),
	}

	if err := tx.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return n, nil
}

// publish sends the event; the document is already stored, so failures are only logged.
// getVisiblePost returns post if the user can see it. Hidden posts are reported as not found.
func (s srv) getVisiblePost(ctx context.Context, userID, postID string) (*entities.Post, error) {
	post, err := s.s.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if post.UserID == userID {
		return post, nil
	}

	ok, err := s.s.CanView(ctx, userID, post.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check access: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("failed to get post: %w", storage.ErrNotFound)
	}

	return post, nil
}

func (s srv) publish(ctx context.Context, c storage.Collection, id string, payload interface{}, scope *events.Scope) {
	e, err := events.NewCreateEvent(string(c), id, payload, s.now())
	if err != nil {
		log.WithError(err).Error("failed to create event")
		return
	}
	e.Scope = scope

	if err := s.p.Publish(ctx, e); err != nil {
		log.WithField("channel", e.Channel).WithError(err).Error("failed to publish event")
	}
}

func render(u *service.Upload, f imaging.Filter) ([]byte, error) {
	if u == nil || len(u.Data) == 0 {
		return nil, invalidRequest("image is required")
	}

	data, err := imaging.Render(bytes.NewReader(u.Data), f)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			return nil, fmt.Errorf("%w: %s", service.ErrInvalidRequest, err.Error())
		}
		return nil, fmt.Errorf("failed to render image: %w", err)
	}

	return data, nil
}

func interlocutor(c *entities.Conversation, userID string) (string, error) {
	var (
		member bool
		other  = userID
	)

	for _, v := range c.Participants {
		if v == userID {
			member = true
		} else {
			other = v
		}
	}

	if !member {
		return "", service.ErrForbidden
	}

	return other, nil
}

func jpegName(name string) string {
	name = path.Base(name)
	if name == "." || name == "/" {
		name = "image"
	}

	return strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}

	v := strings.TrimSpace(*s)
	return &v
}
