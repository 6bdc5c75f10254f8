package models

import (
	"regexp"
	"strings"
	"time"
)

var mentionPattern = regexp.MustCompile(`<@!?(\d+)>`)

// AuthorName is the name shown in front of a message: the member nick for
// guild messages, otherwise the global name, otherwise the username.
func (m Message) AuthorName() string {
	if m.GuildID != "" && m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	return m.Author.DisplayName()
}

// ResolvedContent replaces user mentions with @username. Unknown ids are left as is.
func (m Message) ResolvedContent() string {
	content := m.Content
	if len(m.Mentions) > 0 {
		names := make(map[string]string, len(m.Mentions))
		for _, u := range m.Mentions {
			names[u.ID] = u.Username
		}
		content = mentionPattern.ReplaceAllStringFunc(content, func(tok string) string {
			id := mentionPattern.FindStringSubmatch(tok)[1]
			if name, ok := names[id]; ok {
				return "@" + name
			}
			return tok
		})
	}
	if len(m.Attachments) > 0 {
		parts := make([]string, 0, len(m.Attachments)+1)
		if content != "" {
			parts = append(parts, content)
		}
		for _, a := range m.Attachments {
			parts = append(parts, "["+a.Filename+"]")
		}
		content = strings.Join(parts, " ")
	}
	return content
}

// Format renders "[HH:MM:SS] name> content" with the timestamp in loc.
func (m Message) Format(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return "[" + m.Timestamp.In(loc).Format("15:04:05") + "] " + m.AuthorName() + "> " + m.ResolvedContent()
}
