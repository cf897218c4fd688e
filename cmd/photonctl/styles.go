package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Decentr-net/photon/internal/entities"
	"github.com/Decentr-net/photon/internal/server"
)

// nolint:gochecknoglobals
var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	authorStyle  = lipgloss.NewStyle().Bold(true)
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	emptyStyle   = mutedStyle.Italic(true)
	postStyle    = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("241")).
			PaddingLeft(1).
			MarginBottom(1)
)

func printUser(u *entities.User) {
	fmt.Println(authorStyle.Render(u.Name) + " " + mutedStyle.Render(u.Email+" "+u.ID))
}

func printPost(p *server.Post, author *entities.User) {
	name := p.UserID
	if author != nil {
		name = author.Name
	}

	var marks []string
	if p.Liked {
		marks = append(marks, "liked")
	}
	if p.Bookmarked {
		marks = append(marks, "bookmarked")
	}

	lines := []string{
		authorStyle.Render(name) + " " + mutedStyle.Render(p.CreatedAt.Local().Format("2006-01-02 15:04")),
	}
	if p.Caption != "" {
		lines = append(lines, captionStyle.Render(p.Caption))
	}
	lines = append(lines,
		mutedStyle.Render(fmt.Sprintf("%d likes  %d comments  %d shares  %s", p.Stats.Likes, p.Stats.Comments, p.Stats.Shares, strings.Join(marks, " "))),
		mutedStyle.Render(p.ID+"  "+p.ImageURL),
	)

	fmt.Println(postStyle.Render(strings.Join(lines, "\n")))
}

func toggleStatus(active bool, on, off string, count uint32, unit string) string {
	s := off
	if active {
		s = on
	}

	return fmt.Sprintf("%s, %d %s", s, count, unit)
}
