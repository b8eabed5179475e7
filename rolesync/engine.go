package rolesync

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Outcome records what HandleReaction decided. It exists for logs and tests;
// callers never need to act on it.
type Outcome string

const (
	OutcomeIgnoredDirect  Outcome = "ignored_direct"
	OutcomeIgnoredBot     Outcome = "ignored_bot"
	OutcomeIgnoredForeign Outcome = "ignored_foreign_message"
	OutcomeNoBinding      Outcome = "no_binding"
	OutcomeUnmappedEmoji  Outcome = "unmapped_emoji"
	OutcomeRoleMissing    Outcome = "role_missing"
	OutcomeGranted        Outcome = "granted"
	OutcomeRevoked        Outcome = "revoked"
	OutcomeFailed         Outcome = "failed"
)

// Engine turns reactions on bot-authored binding messages into role changes.
type Engine struct {
	gateway  Gateway
	bindings []*Binding
}

// NewEngine creates an engine over the given bindings, in match order.
func NewEngine(gateway Gateway, bindings []*Binding) *Engine {
	return &Engine{gateway: gateway, bindings: bindings}
}

// Bindings returns the configured bindings.
func (e *Engine) Bindings() []*Binding {
	return e.bindings
}

// BindingForTrigger returns the binding provisioned by an exact admin message.
func (e *Engine) BindingForTrigger(content string) *Binding {
	for _, b := range e.bindings {
		if b.Trigger == content {
			return b
		}
	}
	return nil
}

func (e *Engine) classify(content string) *Binding {
	for _, b := range e.bindings {
		if b.Matches(content) {
			return b
		}
	}
	return nil
}

// HandleReaction grants or revokes the bound role for one reaction. Every
// failure is logged and contained to this event.
func (e *Engine) HandleReaction(ctx context.Context, r Reaction) Outcome {
	logger := log.WithFields(log.Fields{
		"user_id":    r.UserID,
		"guild_id":   r.GuildID,
		"message_id": r.MessageID,
		"emoji":      r.Emoji.Name,
		"added":      r.Added,
	})

	if r.GuildID == "" {
		return OutcomeIgnoredDirect
	}

	user, err := e.gateway.User(ctx, r.UserID)
	if err != nil {
		logger.WithError(err).Error("Could not fetch reacting user")
		return OutcomeFailed
	}
	if user.Bot {
		return OutcomeIgnoredBot
	}

	msg, err := e.gateway.ChannelMessage(ctx, r.ChannelID, r.MessageID)
	if err != nil {
		logger.WithError(err).Error("Could not fetch reacted message")
		return OutcomeFailed
	}
	if msg.AuthorID != e.gateway.SelfID() {
		return OutcomeIgnoredForeign
	}

	binding := e.classify(msg.Content)
	if binding == nil {
		return OutcomeNoBinding
	}

	roleName := binding.RoleFor(r.Emoji.Key())
	if roleName == "" {
		logger.WithField("binding", binding.Name).Debug("Reaction emoji is not bound to a role")
		return OutcomeUnmappedEmoji
	}
	logger = logger.WithFields(log.Fields{"binding": binding.Name, "role": roleName})

	roles, err := e.gateway.GuildRoles(ctx, r.GuildID)
	if err != nil {
		logger.WithError(err).Error("Could not fetch guild roles")
		return OutcomeFailed
	}
	role := findRole(roles, roleName)
	if role == nil {
		// Roles are only created by the admin setup flow
		logger.Warn("Bound role does not exist in guild")
		return OutcomeRoleMissing
	}

	if r.Added {
		if err := e.gateway.AddMemberRole(ctx, r.GuildID, r.UserID, role.ID); err != nil {
			logger.WithError(err).Error("Failed to assign role. Check permissions.")
			return OutcomeFailed
		}
		logger.Info("Assigned role")
		return OutcomeGranted
	}

	if err := e.gateway.RemoveMemberRole(ctx, r.GuildID, r.UserID, role.ID); err != nil {
		logger.WithError(err).Error("Failed to remove role. Check permissions.")
		return OutcomeFailed
	}
	logger.Info("Removed role")
	return OutcomeRevoked
}

func findRole(roles []Role, name string) *Role {
	for i := range roles {
		if roles[i].Name == name {
			return &roles[i]
		}
	}
	return nil
}
