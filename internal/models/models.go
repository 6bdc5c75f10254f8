package models

import (
	"time"
)

// User is a gateway user object. Only the fields the client displays are kept.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
	Bot        bool   `json:"bot,omitempty"`
}

// DisplayName prefers the global display name over the account name.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Member is the guild-specific part of a user.
type Member struct {
	Nick     string     `json:"nick,omitempty"`
	Roles    []string   `json:"roles,omitempty"`
	JoinedAt *time.Time `json:"joined_at,omitempty"`
	Mute     bool       `json:"mute,omitempty"`
	Deaf     bool       `json:"deaf,omitempty"`
}

type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Message is the payload of MESSAGE_CREATE.
type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	GuildID     string       `json:"guild_id,omitempty"`
	Author      User         `json:"author"`
	Member      *Member      `json:"member,omitempty"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Mentions    []User       `json:"mentions"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Channel is a guild or private channel.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
	NSFW bool   `json:"nsfw,omitempty"`
}

// Guild as delivered in READY. User sessions carry the name under properties.
type Guild struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Channels    []Channel `json:"channels"`
	MemberCount int       `json:"member_count,omitempty"`
	Properties  *struct {
		Name string `json:"name"`
	} `json:"properties,omitempty"`
}

// DisplayName returns the guild name from wherever the gateway put it.
func (g Guild) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	if g.Properties != nil {
		return g.Properties.Name
	}
	return g.ID
}

// Ready is the payload of the READY dispatch.
type Ready struct {
	User      User    `json:"user"`
	Guilds    []Guild `json:"guilds"`
	SessionID string  `json:"session_id,omitempty"`
}

// FindChannel looks a channel up across all guilds.
func (r Ready) FindChannel(id string) (Guild, Channel, bool) {
	for _, g := range r.Guilds {
		for _, c := range g.Channels {
			if c.ID == id {
				return g, c, true
			}
		}
	}
	return Guild{}, Channel{}, false
}
