package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Decentr-net/photon/internal/client"
	"github.com/Decentr-net/photon/internal/events"
	"github.com/Decentr-net/photon/internal/imaging"
)

type credentials struct {
	Email    string `long:"email" required:"true" description:"email"`
	Password string `long:"password" env:"PHOTON_PASSWORD" required:"true" description:"password"`
}

type signUpCommand struct {
	credentials
	Name string `long:"name" required:"true" description:"display name"`
}

func (c *signUpCommand) Execute(_ []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	u, err := cl.SignUp(context.Background(), c.Email, c.Password, c.Name)
	if err != nil {
		return fmt.Errorf("failed to sign up: %w", err)
	}

	if err := saveToken(cl.Token()); err != nil {
		return err
	}

	printUser(u)
	return nil
}

type loginCommand struct {
	credentials
}

func (c *loginCommand) Execute(_ []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	u, err := cl.Login(context.Background(), c.Email, c.Password)
	if err != nil {
		return fmt.Errorf("failed to login: %w", err)
	}

	if err := saveToken(cl.Token()); err != nil {
		return err
	}

	printUser(u)
	return nil
}

type logoutCommand struct{}

func (c *logoutCommand) Execute(_ []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	logoutErr := cl.Logout(context.Background())

	if err := saveToken(""); err != nil {
		return err
	}

	if logoutErr != nil {
		return fmt.Errorf("session is removed locally, but failed to revoke it: %w", logoutErr)
	}

	return nil
}

type whoAmICommand struct{}

func (c *whoAmICommand) Execute(_ []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	u, err := cl.RequireUser(context.Background())
	if err != nil {
		return err
	}

	printUser(u)
	return nil
}

type feedCommand struct {
	Limit     uint16 `long:"limit" default:"10" description:"count of posts"`
	Offset    uint16 `long:"offset" description:"count of posts to skip"`
	Owner     string `long:"owner" description:"list posts of the user"`
	Following bool   `long:"following" description:"list posts of followed users"`
	Query     string `long:"query" short:"q" description:"filter posts by caption"`
}

func (c *feedCommand) Execute(_ []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := cl.RequireUser(ctx); err != nil {
		return err
	}

	resp, err := cl.ListPosts(ctx, client.ListPostsParams{
		Limit:  c.Limit,
		Offset: c.Offset,
		Owner:  c.Owner,
		Feed:   c.Following,
		Query:  c.Query,
	})
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}

	if len(resp.Posts) == 0 {
		fmt.Println(emptyStyle.Render("no posts"))
		return nil
	}

	for _, p := range resp.Posts {
		printPost(p, resp.Profiles[p.UserID])
	}

	return nil
}

type adjustmentOptions struct {
	Preset     string `long:"filter" default:"normal" choice:"normal" choice:"grayscale" choice:"sepia" choice:"invert" choice:"blur" description:"filter preset"`
	Brightness int    `long:"brightness" default:"100" description:"brightness in percents, 0..200"`
	Contrast   int    `long:"contrast" default:"100" description:"contrast in percents, 0..200"`
}

func (o adjustmentOptions) adjustment() imaging.Adjustment {
	return imaging.Adjustment{
		Preset:     o.Preset,
		Brightness: o.Brightness,
		Contrast:   o.Contrast,
	}
}

type postCommand struct {
	adjustmentOptions
	Caption string `long:"caption" description:"post caption, #hashtags are counted"`
	Args    struct {
		Image string `positional-arg-name:"image" description:"image file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *postCommand) Execute(_ []string) error {
	adj := c.adjustment()
	if err := adj.Validate(); err != nil {
		return err
	}

	f, err := os.Open(c.Args.Image)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cl, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	u, err := cl.RequireUser(ctx)
	if err != nil {
		return err
	}

	p, err := cl.CreatePost(ctx, client.CreatePostParams{
		Caption:    c.Caption,
		ImageName:  filepath.Base(c.Args.Image),
		Image:      f,
		Adjustment: adj,
	})
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	printPost(p, u)
	return nil
}

type postID struct {
	PostID string `positional-arg-name:"post-id"`
}

type likeCommand struct {
	Args postID `positional-args:"yes" required:"yes"`
}

func (c *likeCommand) Execute(_ []string) error {
	return togglePost(c.Args.PostID, func(ctx context.Context, cl *client.Client, st *client.PostState) (string, error) {
		if err := cl.ToggleLike(ctx, st); err != nil {
			return "", fmt.Errorf("failed to toggle like: %w", err)
		}
		return toggleStatus(st.Liked, "liked", "unliked", st.Likes, "likes"), nil
	})
}

type bookmarkCommand struct {
	Args postID `positional-args:"yes" required:"yes"`
}

func (c *bookmarkCommand) Execute(_ []string) error {
	return togglePost(c.Args.PostID, func(ctx context.Context, cl *client.Client, st *client.PostState) (string, error) {
		if err := cl.ToggleBookmark(ctx, st); err != nil {
			return "", fmt.Errorf("failed to toggle bookmark: %w", err)
		}
		return toggleStatus(st.Bookmarked, "bookmarked", "bookmark removed", st.Bookmarks, "bookmarks"), nil
	})
}

func togglePost(id string, f func(ctx context.Context, cl *client.Client, st *client.PostState) (string, error)) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := cl.RequireUser(ctx); err != nil {
		return err
	}

	p, err := cl.GetPost(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get post: %w", err)
	}

	status, err := f(ctx, cl, client.NewPostState(p.Post))
	if err != nil {
		return err
	}

	fmt.Println(statusStyle.Render(status))
	return nil
}

type followCommand struct {
	Args struct {
		UserID string `positional-arg-name:"user-id"`
	} `positional-args:"yes" required:"yes"`
}

func (c *followCommand) Execute(_ []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := cl.RequireUser(ctx); err != nil {
		return err
	}

	p, err := cl.GetProfile(ctx, c.Args.UserID)
	if err != nil {
		return fmt.Errorf("failed to get profile: %w", err)
	}

	st := client.NewProfileState(p)
	if err := cl.ToggleFollow(ctx, st); err != nil {
		return fmt.Errorf("failed to toggle follow: %w", err)
	}

	fmt.Println(statusStyle.Render(toggleStatus(st.Following, "following "+p.User.Name, "unfollowed "+p.User.Name, st.Followers, "followers")))
	return nil
}

type commentCommand struct {
	Text string `long:"text" short:"t" required:"true" description:"comment text"`
	Args postID `positional-args:"yes" required:"yes"`
}

func (c *commentCommand) Execute(_ []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := cl.RequireUser(ctx); err != nil {
		return err
	}

	comment, err := cl.AddComment(ctx, c.Args.PostID, c.Text)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}

	fmt.Println(statusStyle.Render("commented " + comment.ID))
	return nil
}

type filterCommand struct {
	adjustmentOptions
	Args struct {
		Input  string `positional-arg-name:"input"`
		Output string `positional-arg-name:"output"`
	} `positional-args:"yes" required:"yes"`
}

func (c *filterCommand) Execute(_ []string) error {
	adj := c.adjustment()

	filter, err := adj.Filter()
	if err != nil {
		return err
	}

	in, err := os.Open(c.Args.Input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	b, err := imaging.Render(in, filter)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	if err := os.WriteFile(c.Args.Output, b, 0o644); err != nil { // nolint:gosec
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Println(statusStyle.Render(fmt.Sprintf("%s -> %s (%s)", c.Args.Input, c.Args.Output, adj.String())))
	return nil
}

type watchCommand struct {
	Channels []string `long:"channel" short:"c" description:"channel to subscribe to, posts by default"`
}

func (c *watchCommand) Execute(_ []string) error {
	cl, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := cl.RequireUser(ctx); err != nil {
		return err
	}

	channels := c.Channels
	if len(channels) == 0 {
		channels = []string{events.Channel("posts")}
	}

	enc := json.NewEncoder(os.Stdout)

	return cl.Subscribe(ctx, channels, func(e *events.Event) {
		fmt.Fprintln(os.Stderr, statusStyle.Render(fmt.Sprintf("%s %s", e.Timestamp.Format("15:04:05"), e.Channel)))
		_ = enc.Encode(e.Payload)
	})
}
