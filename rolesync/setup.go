package rolesync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrConfigurationMissing means a required emoji is absent from the guild.
var ErrConfigurationMissing = errors.New("configuration missing")

// SetupRequest asks for a binding message to be posted in a channel.
type SetupRequest struct {
	GuildID          string
	ChannelID        string
	TriggerMessageID string
	Binding          *Binding
}

// Provision posts a binding message: it verifies every emoji, makes sure each
// role exists, posts the message, seeds the reactions and deletes the admin's
// trigger message. Nothing is posted unless every emoji and role is in place,
// and roles created by a failed run are removed again.
func (e *Engine) Provision(ctx context.Context, req SetupRequest) (*Message, error) {
	if req.Binding == nil {
		return nil, fmt.Errorf("no binding to provision")
	}
	logger := log.WithFields(log.Fields{
		"guild_id": req.GuildID,
		"binding":  req.Binding.Name,
	})

	var (
		emojis []Emoji
		roles  []Role
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		emojis, err = e.gateway.GuildEmojis(gctx, req.GuildID)
		if err != nil {
			return fmt.Errorf("failed to fetch guild emojis: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		roles, err = e.gateway.GuildRoles(gctx, req.GuildID)
		if err != nil {
			return fmt.Errorf("failed to fetch guild roles: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bound := make([]Emoji, len(req.Binding.Roles))
	for i, er := range req.Binding.Roles {
		emoji := findEmoji(emojis, er.Emoji)
		if emoji == nil {
			return nil, fmt.Errorf("%w: emoji %q not found on the server", ErrConfigurationMissing, er.Emoji)
		}
		bound[i] = *emoji
	}

	if err := e.ensureRoles(ctx, req.GuildID, req.Binding, roles); err != nil {
		return nil, err
	}

	markup := make([]string, len(bound))
	for i, emoji := range bound {
		markup[i] = emoji.Markup()
	}

	sent, err := e.gateway.SendMessage(ctx, req.ChannelID, req.Binding.Render(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to send role assignment message: %w", err)
	}
	logger.WithField("message_id", sent.ID).Info("Sent role assignment message")

	// Reactions go on in binding order so the menu reads top to bottom
	for _, emoji := range bound {
		if err := e.gateway.AddReaction(ctx, sent.ChannelID, sent.ID, emoji); err != nil {
			logger.WithError(err).WithField("emoji", emoji.Name).Error("Failed to react to the message")
		}
	}

	if req.TriggerMessageID != "" {
		if err := e.gateway.DeleteMessage(ctx, req.ChannelID, req.TriggerMessageID); err != nil {
			logger.WithError(err).Warn("Failed to delete trigger message")
		}
	}

	return sent, nil
}

// ensureRoles creates every missing bound role, concurrently. If any creation
// fails the roles created here are deleted again.
func (e *Engine) ensureRoles(ctx context.Context, guildID string, binding *Binding, existing []Role) error {
	var (
		mu      sync.Mutex
		created []Role
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, er := range binding.Roles {
		if findRole(existing, er.Role) != nil {
			log.WithField("role", er.Role).Debug("Found existing role")
			continue
		}
		name := er.Role
		g.Go(func() error {
			role, err := e.gateway.CreateRole(gctx, guildID, name, true)
			if err != nil {
				return fmt.Errorf("could not create role %q: %w", name, err)
			}
			log.WithField("role", name).Info("Created role")
			mu.Lock()
			created = append(created, *role)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		return nil
	}

	for _, role := range created {
		if delErr := e.gateway.DeleteRole(context.WithoutCancel(ctx), guildID, role.ID); delErr != nil {
			log.WithError(delErr).WithField("role", role.Name).Error("Failed to remove role after aborted setup")
		}
	}
	return err
}

func findEmoji(emojis []Emoji, name string) *Emoji {
	for i := range emojis {
		if emojis[i].Name == name {
			return &emojis[i]
		}
	}
	return nil
}
