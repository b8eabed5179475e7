package economy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"nuggies/bot/common"
	"nuggies/bot/router"
	"nuggies/models"
	"nuggies/service"
)

const (
	NoAccountReply      = "You don't have a nuggetbox yet! Use `/daily` to get your first nuggets."
	AlreadyClaimedReply = "You have already claimed your daily nuggets. Please try again tomorrow."
)

var wittyLines = []string{
	"Don't spend it all in one place... or do, I'm not your mother.",
	"Fortune favors the bold. Or in your case, the lucky.",
	"The gods have smiled upon you. Or perhaps they just sneezed.",
	"Ooh, shiny! A gift from my hoard to yours.",
	"I suppose that's better than a kick in the teeth.",
	"You call that a win? Adorable.",
	"Jackpot! Or, you know, a minor financial gain.",
	"There. Are you happy now?",
}

// recentMovements is how many ledger entries /nuggetbox lists
const recentMovements = 3

type Feature struct {
	economy service.EconomyService
	rng     service.Rand
}

func New(economy service.EconomyService, rng service.Rand) *Feature {
	if rng == nil {
		rng = service.DefaultRand
	}
	return &Feature{economy: economy, rng: rng}
}

// Routes returns the nugget economy commands
func (f *Feature) Routes() []router.Route {
	return []router.Route{
		{
			Name:        "daily",
			Description: "Claim your daily nuggets",
			Effect:      router.EffectEconomy,
			Handle:      f.handleDaily,
		},
		{
			Name:        "nuggetbox",
			Description: "Check your personal amount of nuggets",
			Effect:      router.EffectEconomy,
			Handle:      f.handleNuggetbox,
		},
		{
			Name:        "slots",
			Description: fmt.Sprintf("Spend %d nuggets for a chance to win big!", service.SlotAnte),
			Effect:      router.EffectEconomy,
			Handle:      f.handleSlots,
		},
	}
}

func parseUserID(inv router.Invocation) (int64, error) {
	userID, err := strconv.ParseInt(inv.UserID, 10, 64)
	if err != nil {
		return 0, common.NewUserError("Unable to process request. Please try again.", fmt.Sprintf("invalid user id %q: %v", inv.UserID, err))
	}
	return userID, nil
}

func (f *Feature) handleDaily(ctx context.Context, inv router.Invocation) (string, error) {
	userID, err := parseUserID(inv)
	if err != nil {
		return "", err
	}

	result, err := f.economy.ClaimDaily(ctx, userID)
	if err != nil {
		return "", common.NewSystemError(err, "daily claim failed")
	}

	switch {
	case result.AlreadyClaimed:
		return AlreadyClaimedReply, nil
	case result.FirstTime:
		return fmt.Sprintf("Welcome! You received your first %d nuggets!", result.Amount), nil
	default:
		return fmt.Sprintf("You received %d nuggets! You now have a total of %d nuggets.", result.Amount, result.NewBalance), nil
	}
}

func (f *Feature) handleNuggetbox(ctx context.Context, inv router.Invocation) (string, error) {
	userID, err := parseUserID(inv)
	if err != nil {
		return "", err
	}

	balance, err := f.economy.GetBalance(ctx, userID)
	if errors.Is(err, service.ErrAccountNotFound) {
		return NoAccountReply, nil
	}
	if err != nil {
		return "", common.NewSystemError(err, "balance lookup failed")
	}

	reply := fmt.Sprintf("You have %d nuggets in your nuggetbox.", balance)

	// History is a nicety; a failure here still answers with the balance
	history, err := f.economy.History(ctx, userID, recentMovements)
	if err != nil || len(history) == 0 {
		return reply, nil
	}
	return reply + "\n" + formatHistory(history), nil
}

func (f *Feature) handleSlots(ctx context.Context, inv router.Invocation) (string, error) {
	userID, err := parseUserID(inv)
	if err != nil {
		return "", err
	}

	result, err := f.economy.PlaySlots(ctx, userID)
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return NoAccountReply, nil
	case errors.Is(err, service.ErrInsufficientFunds):
		return fmt.Sprintf("You don't have enough nuggets to play the slots! You need at least %d.", service.SlotAnte), nil
	case err != nil:
		return "", common.NewSystemError(err, "slots failed")
	}

	return fmt.Sprintf("%s\n%s\nYou spent %d nuggets and won %d nuggets! Your new total is %d.\n*%s*",
		common.FormatReels(result.Outcome.Reels),
		common.FormatTier(result.Outcome.Tier),
		result.Ante,
		result.Outcome.Payout,
		result.NewBalance,
		wittyLines[f.rng.IntN(len(wittyLines))],
	), nil
}

func formatHistory(history []*models.BalanceHistory) string {
	parts := make([]string, 0, len(history))
	for _, h := range history {
		sign := "+"
		if h.ChangeAmount < 0 {
			sign = ""
		}
		parts = append(parts, fmt.Sprintf("%s%d %s", sign, h.ChangeAmount, describe(h.TransactionType)))
	}
	return "Recent: " + strings.Join(parts, ", ")
}

func describe(t models.TransactionType) string {
	switch t {
	case models.TransactionTypeFirstClaim:
		return "welcome bonus"
	case models.TransactionTypeDailyClaim:
		return "daily"
	case models.TransactionTypeSlots:
		return "slots"
	default:
		return string(t)
	}
}
