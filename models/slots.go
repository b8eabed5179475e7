package models

// Symbol is a slot machine reel symbol
type Symbol string

const (
	SymbolCherry Symbol = "cherry"
	SymbolOrange Symbol = "orange"
	SymbolBell   Symbol = "bell"
	SymbolClover Symbol = "clover"
	SymbolGem    Symbol = "gem"
)

// Symbols lists every reel symbol in weight order (most to least common).
var Symbols = []Symbol{SymbolCherry, SymbolOrange, SymbolBell, SymbolClover, SymbolGem}

// symbolWeights are relative draw weights for the jackpot symbol (30 units total).
var symbolWeights = map[Symbol]int{
	SymbolCherry: 10,
	SymbolOrange: 8,
	SymbolBell:   6,
	SymbolClover: 4,
	SymbolGem:    2,
}

// jackpotValues are fixed payouts for three of a kind.
var jackpotValues = map[Symbol]int64{
	SymbolCherry: 10,
	SymbolOrange: 25,
	SymbolBell:   40,
	SymbolClover: 75,
	SymbolGem:    250,
}

var symbolEmoji = map[Symbol]string{
	SymbolCherry: "🍒",
	SymbolOrange: "🍊",
	SymbolBell:   "🔔",
	SymbolClover: "🍀",
	SymbolGem:    "💎",
}

// Weight returns the jackpot draw weight of the symbol.
func (s Symbol) Weight() int {
	return symbolWeights[s]
}

// TotalSymbolWeight sums the draw weights of all symbols.
func TotalSymbolWeight() int {
	total := 0
	for _, s := range Symbols {
		total += s.Weight()
	}
	return total
}

// JackpotValue returns the three-of-a-kind payout for the symbol.
func (s Symbol) JackpotValue() int64 {
	return jackpotValues[s]
}

// Emoji returns the reel glyph shown in chat.
func (s Symbol) Emoji() string {
	if e, ok := symbolEmoji[s]; ok {
		return e
	}
	return "❔"
}

// SlotTier is the payout class of a spin
type SlotTier string

const (
	SlotTierJackpot   SlotTier = "jackpot"
	SlotTierBreakEven SlotTier = "break_even"
	SlotTierLoss      SlotTier = "loss"
)

// SlotOutcome is a single spin: three reels, the tier they fall into and the payout.
type SlotOutcome struct {
	Reels  [3]Symbol
	Tier   SlotTier
	Payout int64
}

// SlotResult is a settled spin for one account
type SlotResult struct {
	Outcome    SlotOutcome
	Ante       int64
	OldBalance int64
	NewBalance int64
}
