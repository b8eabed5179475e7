package bot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"nuggies/rolesync"
)

const (
	ConstantinopleCaption  = "That's Constantinople!"
	ConstantinopleFallback = "That's Constantinople! (but I couldn't find the image)"
)

// IncomingMessage is a plain chat message, stripped of gateway types
type IncomingMessage struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	AuthorBot bool
	Content   string
}

// Trigger reacts to a plain message
type Trigger struct {
	Name   string
	Match  func(msg IncomingMessage) bool
	Handle func(ctx context.Context, msg IncomingMessage) error
}

// TriggerSet is evaluated in order; the first matching trigger handles the message.
type TriggerSet struct {
	selfID   func() string
	triggers []Trigger
}

// Match returns the trigger that owns msg, or nil. Messages from bots,
// including this one, never match.
func (ts *TriggerSet) Match(msg IncomingMessage) *Trigger {
	if msg.AuthorBot || (ts.selfID != nil && msg.AuthorID == ts.selfID()) {
		return nil
	}
	for i := range ts.triggers {
		if ts.triggers[i].Match(msg) {
			return &ts.triggers[i]
		}
	}
	return nil
}

// Names lists triggers in evaluation order
func (ts *TriggerSet) Names() []string {
	names := make([]string, len(ts.triggers))
	for i, t := range ts.triggers {
		names[i] = t.Name
	}
	return names
}

// Messenger posts plain messages
type Messenger interface {
	SendMessage(ctx context.Context, channelID, content string) (*rolesync.Message, error)
	SendFile(ctx context.Context, channelID, content, name string, r io.Reader) error
	Typing(ctx context.Context, channelID string) error
}

// Provisioner posts role binding messages
type Provisioner interface {
	Bindings() []*rolesync.Binding
	Provision(ctx context.Context, req rolesync.SetupRequest) (*rolesync.Message, error)
}

// MentionResponder answers a message that talks to the bot
type MentionResponder interface {
	MentionReply(ctx context.Context, content string) string
}

type triggerDeps struct {
	adminID   int64
	imagePath string
	openImage func(path string) (io.ReadCloser, error)
	selfID    func() string
	messenger Messenger
	roles     Provisioner
	assistant MentionResponder
}

func openFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func newTriggerSet(deps triggerDeps) *TriggerSet {
	if deps.openImage == nil {
		deps.openImage = openFile
	}
	admin := strconv.FormatInt(deps.adminID, 10)

	var triggers []Trigger
	for _, binding := range deps.roles.Bindings() {
		triggers = append(triggers, provisionTrigger(admin, binding, deps.roles))
	}
	triggers = append(triggers,
		Trigger{
			Name: "istanbul",
			Match: func(msg IncomingMessage) bool {
				return strings.Contains(strings.ToLower(msg.Content), "istanbul")
			},
			Handle: func(ctx context.Context, msg IncomingMessage) error {
				return sendConstantinople(ctx, deps, msg.ChannelID)
			},
		},
		Trigger{
			Name: "nuggies",
			Match: func(msg IncomingMessage) bool {
				return strings.Contains(strings.ToLower(msg.Content), "nuggies")
			},
			Handle: func(ctx context.Context, msg IncomingMessage) error {
				if err := deps.messenger.Typing(ctx, msg.ChannelID); err != nil {
					log.WithError(err).Debug("Could not show typing indicator")
				}
				_, err := deps.messenger.SendMessage(ctx, msg.ChannelID, deps.assistant.MentionReply(ctx, msg.Content))
				return err
			},
		},
	)

	return &TriggerSet{selfID: deps.selfID, triggers: triggers}
}

func provisionTrigger(adminID string, binding *rolesync.Binding, roles Provisioner) Trigger {
	return Trigger{
		Name: "admin:" + binding.Trigger,
		Match: func(msg IncomingMessage) bool {
			return msg.AuthorID == adminID && msg.GuildID != "" && msg.Content == binding.Trigger
		},
		Handle: func(ctx context.Context, msg IncomingMessage) error {
			sent, err := roles.Provision(ctx, rolesync.SetupRequest{
				GuildID:          msg.GuildID,
				ChannelID:        msg.ChannelID,
				TriggerMessageID: msg.ID,
				Binding:          binding,
			})
			if err != nil {
				return fmt.Errorf("provision %s: %w", binding.Name, err)
			}
			log.WithFields(log.Fields{
				"binding":    binding.Name,
				"message_id": sent.ID,
			}).Info("Posted role binding message")
			return nil
		},
	}
}

func sendConstantinople(ctx context.Context, deps triggerDeps, channelID string) error {
	img, err := deps.openImage(deps.imagePath)
	if err != nil {
		log.WithError(err).WithField("path", deps.imagePath).Warn("Constantinople image unavailable")
		_, err = deps.messenger.SendMessage(ctx, channelID, ConstantinopleFallback)
		return err
	}
	defer img.Close()

	return deps.messenger.SendFile(ctx, channelID, ConstantinopleCaption, filepath.Base(deps.imagePath), img)
}
