package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/photon/internal/client"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	URL      string `long:"url" env:"PHOTON_URL" default:"http://localhost:8080" description:"photon api url"`
	Session  string `long:"session" env:"PHOTON_SESSION" description:"file the session token is kept in, defaults to photon/session in user config dir"`
	LogLevel string `long:"log.level" env:"LOG_LEVEL" default:"warning" description:"Log level" choice:"debug" choice:"info" choice:"warning" choice:"error"`

	SignUp   signUpCommand   `command:"signup" description:"create account and sign in"`
	Login    loginCommand    `command:"login" description:"sign in"`
	Logout   logoutCommand   `command:"logout" description:"sign out"`
	WhoAmI   whoAmICommand   `command:"whoami" description:"print signed in user"`
	Feed     feedCommand     `command:"feed" description:"list posts"`
	Post     postCommand     `command:"post" description:"create post"`
	Like     likeCommand     `command:"like" description:"like or unlike post"`
	Bookmark bookmarkCommand `command:"bookmark" description:"bookmark post or remove bookmark"`
	Follow   followCommand   `command:"follow" description:"follow or unfollow user"`
	Comment  commentCommand  `command:"comment" description:"comment post"`
	Filter   filterCommand   `command:"filter" description:"render image through adjustment locally"`
	Watch    watchCommand    `command:"watch" description:"print realtime events"`
}{}

func main() {
	_ = godotenv.Load()

	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.ShortDescription = "photonctl"
	parser.LongDescription = "Command line client of Photon"
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		lvl, _ := logrus.ParseLevel(opts.LogLevel) // err will always be nil
		logrus.SetLevel(lvl)

		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}

		fmt.Fprintln(os.Stderr, errorStyle.Render(describe(err)))
		os.Exit(1)
	}
}

func newClient() (*client.Client, error) {
	token, err := loadToken()
	if err != nil {
		return nil, err
	}

	return client.New(opts.URL, client.WithToken(token)), nil
}

func sessionPath() (string, error) {
	if opts.Session != "" {
		return opts.Session, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config dir: %w", err)
	}

	return filepath.Join(dir, "photon", "session"), nil
}

func loadToken() (string, error) {
	path, err := sessionPath()
	if err != nil {
		return "", err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}

	return strings.TrimSpace(string(b)), nil
}

func saveToken(token string) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}

	if token == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}

	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}

	return nil
}

func describe(err error) string {
	if errors.Is(err, client.ErrUnauthenticated) {
		return "not signed in, run `photonctl login`"
	}

	return err.Error()
}
