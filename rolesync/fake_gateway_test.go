package rolesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

const (
	botID   = "100"
	guildID = "g1"
)

type memberRole struct {
	guildID, userID, roleID string
}

// fakeGateway is an in-memory guild
type fakeGateway struct {
	mu       sync.Mutex
	users    map[string]*User
	messages map[string]*Message
	roles    []Role
	emojis   []Emoji
	members  map[memberRole]bool

	sent      []*Message
	reactions []Emoji
	deleted   []string
	created   []string
	removed   []string

	addRoleErr    error
	createRoleErr map[string]error
	nextID        int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		users: map[string]*User{
			"u1": {ID: "u1", Username: "alice"},
			botID: {ID: botID, Username: "nuggies", Bot: true},
			"b2":  {ID: "b2", Username: "otherbot", Bot: true},
		},
		messages:      map[string]*Message{},
		members:       map[memberRole]bool{},
		createRoleErr: map[string]error{},
	}
}

func (f *fakeGateway) id() string {
	f.nextID++
	return fmt.Sprintf("id%d", f.nextID)
}

func (f *fakeGateway) SelfID() string { return botID }

func (f *fakeGateway) User(ctx context.Context, userID string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, errors.New("unknown user")
}

func (f *fakeGateway) ChannelMessage(ctx context.Context, channelID, messageID string) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.messages[messageID]; ok {
		return m, nil
	}
	return nil, errors.New("unknown message")
}

func (f *fakeGateway) SendMessage(ctx context.Context, channelID, content string) (*Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &Message{ID: f.id(), ChannelID: channelID, AuthorID: botID, Content: content}
	f.messages[m.ID] = m
	f.sent = append(f.sent, m)
	return m, nil
}

func (f *fakeGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeGateway) AddReaction(ctx context.Context, channelID, messageID string, emoji Emoji) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, emoji)
	return nil
}

func (f *fakeGateway) GuildEmojis(ctx context.Context, guildID string) ([]Emoji, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Emoji(nil), f.emojis...), nil
}

func (f *fakeGateway) GuildRoles(ctx context.Context, guildID string) ([]Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Role(nil), f.roles...), nil
}

func (f *fakeGateway) CreateRole(ctx context.Context, guildID, name string, mentionable bool) (*Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createRoleErr[name]; err != nil {
		return nil, err
	}
	role := Role{ID: f.id(), Name: name}
	f.roles = append(f.roles, role)
	f.created = append(f.created, name)
	return &role, nil
}

func (f *fakeGateway) DeleteRole(ctx context.Context, guildID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.roles {
		if r.ID == roleID {
			f.roles = append(f.roles[:i], f.roles[i+1:]...)
			f.removed = append(f.removed, r.Name)
			return nil
		}
	}
	return errors.New("unknown role")
}

func (f *fakeGateway) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addRoleErr != nil {
		return f.addRoleErr
	}
	f.members[memberRole{guildID, userID, roleID}] = true
	return nil
}

func (f *fakeGateway) RemoveMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members, memberRole{guildID, userID, roleID})
	return nil
}

func (f *fakeGateway) hasRole(userID, roleID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[memberRole{guildID, userID, roleID}]
}
