package assistant

import (
	"context"
	"errors"
	"fmt"

	"nuggies/bot/common"
	"nuggies/bot/router"
	"nuggies/infrastructure"

	log "github.com/sirupsen/logrus"
)

const (
	AskFallback       = "Sorry, I couldn't get a response right now."
	ChatFallback      = "Sorry, I couldn't get a response from Nuggies right now."
	TranslateFallback = "Sorry, I couldn't translate that."
	MentionFallback   = "My circuits are fried."

	// OverloadedReply stands in for an empty completion
	OverloadedReply = "Sorry, the Endpoint is currently overloaded, please try again."
)

// PersonaPrompt sets the Nuggies character for chat replies
const PersonaPrompt = "You are an Female AI assistant called 'Nuggies'. " +
	"You have a somewhat friendly, norse nordic, slightly pagan, with a healthy dose of cute sarcasm, gothic and somewhat unhinged personality. " +
	"dont Roleplay"

// Completer produces a text completion for a prompt
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Feature struct {
	ai Completer
}

// New creates the assistant feature. ai may be nil when no API key is
// configured; every command then answers with its fallback.
func New(ai Completer) *Feature {
	return &Feature{ai: ai}
}

// Routes returns the AI-backed slash commands
func (f *Feature) Routes() []router.Route {
	return []router.Route{
		{
			Name:        "ask",
			Description: "Ask the AI a question",
			Effect:      router.EffectAIChat,
			Options:     []router.Option{{Name: "question", Description: "Your question for the AI", Required: true}},
			Prompt:      "Please provide a question.",
			Fallback:    AskFallback,
			Handle:      f.handleAsk,
		},
		{
			Name:        "nuggies",
			Description: "Chat with Nuggies AI",
			Effect:      router.EffectAIChat,
			Options:     []router.Option{{Name: "message", Description: "Your message to Nuggies", Required: true}},
			Prompt:      "Please provide a message for Nuggies.",
			Fallback:    ChatFallback,
			Handle:      f.handleChat,
		},
		{
			Name:        "translate",
			Description: "Translate text to a specified language",
			Effect:      router.EffectTranslate,
			Options: []router.Option{
				{Name: "language", Description: "The language to translate to (e.g., 'French')", Required: true},
				{Name: "text", Description: "The text to translate", Required: true},
			},
			Prompt:   "Please provide both a language and text.",
			Fallback: TranslateFallback,
			Handle:   f.handleTranslate,
		},
	}
}

func (f *Feature) complete(ctx context.Context, prompt string) (string, error) {
	if f.ai == nil {
		return "", errors.New("assistant is not configured")
	}

	text, err := f.ai.Complete(ctx, prompt)
	if errors.Is(err, infrastructure.ErrEmptyCompletion) {
		return OverloadedReply, nil
	}
	return text, err
}

func (f *Feature) handleAsk(ctx context.Context, inv router.Invocation) (string, error) {
	question := inv.Option("question")

	answer, err := f.complete(ctx, question)
	if err != nil {
		log.WithError(err).WithField("task_id", inv.TaskID).Warn("Ask completion failed")
		answer = AskFallback
	}

	return formatAsked(inv.UserID, question, answer), nil
}

func (f *Feature) handleChat(ctx context.Context, inv router.Invocation) (string, error) {
	message := inv.Option("message")

	prompt := fmt.Sprintf("%s\nRespond to the following message as Nuggies:\n\n%s", PersonaPrompt, message)
	answer, err := f.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("nuggies completion failed: %w", err)
	}

	return formatAsked(inv.UserID, message, answer), nil
}

func (f *Feature) handleTranslate(ctx context.Context, inv router.Invocation) (string, error) {
	prompt := fmt.Sprintf("Translate the following text to %s exactly and only output the translated text:\n\n%s",
		inv.Option("language"), inv.Option("text"))

	translated, err := f.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	return translated, nil
}

// MentionReply answers a plain message that mentions Nuggies, in one or two sentences.
func (f *Feature) MentionReply(ctx context.Context, content string) string {
	prompt := fmt.Sprintf("%s\nRespond to the following message as Nuggies and keep the response at one or 2 sentences:\n\n%s",
		PersonaPrompt, content)

	answer, err := f.complete(ctx, prompt)
	if err != nil {
		log.WithError(err).Warn("Mention completion failed")
		return MentionFallback
	}
	return answer
}

func formatAsked(userID, question, answer string) string {
	return fmt.Sprintf("%s asked: %s\n\n%s", common.FormatMention(userID), question, answer)
}
