package common

import (
	"fmt"
	"strings"

	"nuggies/models"
)

// MaxMessageLength is Discord's content limit for a single message.
const MaxMessageLength = 2000

// FormatBalance formats a balance amount with thousand separators
func FormatBalance(balance int64) string {
	str := fmt.Sprintf("%d", balance)
	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	n := len(str)
	if n <= 3 {
		if negative {
			return "-" + str
		}
		return str
	}

	var result strings.Builder
	if negative {
		result.WriteRune('-')
	}
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatMention renders a user mention
func FormatMention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// FormatReels renders three slot reels as a single line
func FormatReels(reels [3]models.Symbol) string {
	return fmt.Sprintf("🎰 | %s %s %s | 🎰", reels[0].Emoji(), reels[1].Emoji(), reels[2].Emoji())
}

// FormatTier names the payout class
func FormatTier(tier models.SlotTier) string {
	switch tier {
	case models.SlotTierJackpot:
		return "**JACKPOT!**"
	case models.SlotTierBreakEven:
		return "Break even."
	default:
		return "No luck."
	}
}

// Truncate cuts content to fit in one message
func Truncate(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit-1]) + "…"
}
