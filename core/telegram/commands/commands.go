package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Usage is shown by help output in place of the bare command name.
	Usage     string
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}

// Visible reports whether the command belongs in the public command menu.
func (c Command) Visible() bool {
	return !c.Hidden && !c.AdminOnly
}

// HelpLine renders "usage - description" for help messages.
func (c Command) HelpLine(name string) string {
	usage := strings.TrimSpace(c.Usage)
	if usage == "" {
		usage = name
	}
	return usage + " - " + c.Description
}
