package common

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// DeferResponse acknowledges an interaction so the result can be sent later
func DeferResponse(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: flags,
		},
	}, discordgo.WithContext(ctx))
}

// UpdateContent replaces the deferred response with text
func UpdateContent(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction, content string) error {
	content = Truncate(content, MaxMessageLength)
	_, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: &content,
	}, discordgo.WithContext(ctx))
	return err
}

// InteractionResponder drives the deferred reply of one slash command
type InteractionResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func NewInteractionResponder(s *discordgo.Session, i *discordgo.Interaction) *InteractionResponder {
	return &InteractionResponder{session: s, interaction: i}
}

func (r *InteractionResponder) Defer(ctx context.Context) error {
	return DeferResponse(ctx, r.session, r.interaction, false)
}

func (r *InteractionResponder) Finalize(ctx context.Context, content string) error {
	return UpdateContent(ctx, r.session, r.interaction, content)
}
