// Package bot implements the chat conversation: menus, modes and the
// convert and translate flows, independent of the chat platform.
package bot

import "strings"

// User identifies who sent an update
type User struct {
	ID       int64
	Username string
}

// Attachment is a file sent to the bot
type Attachment struct {
	FileID   string
	FileName string
	Size     int64
}

// Callback is an inline button press
type Callback struct {
	ID        string
	Data      string
	MessageID int64
}

// Update is one inbound event from the chat platform
type Update struct {
	ID        int64
	ChatID    int64
	MessageID int64
	User      User
	Text      string
	Callback  *Callback
	Document  *Attachment
	Photo     *Attachment
}

// Command returns the bot command in Text, without the leading slash and
// any @botname suffix, or "" when Text is not a command
func (u Update) Command() string {
	if !strings.HasPrefix(u.Text, "/") {
		return ""
	}
	cmd := strings.Fields(u.Text)[0][1:]
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}
