package service

import (
	"math/rand/v2"

	"nuggies/models"
)

const (
	// SlotAnte is the cost of one spin and also the break-even payout.
	SlotAnte int64 = 5

	// DailyRewardMin and DailyRewardMax bound the daily claim, inclusive.
	DailyRewardMin int64 = 1
	DailyRewardMax int64 = 15

	// Rolls are 1..100: up to jackpotMaxRoll is a jackpot, up to breakEvenMaxRoll breaks even.
	jackpotMaxRoll   = 5
	breakEvenMaxRoll = 20
)

// Rand is the randomness source for the economy. IntN returns a value in [0, n).
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand is safe for concurrent use.
var DefaultRand Rand = globalRand{}

// SpinSlots rolls one slot outcome. Expected payout is about 2.98 nuggets
// against an ante of 5.
func SpinSlots(r Rand) models.SlotOutcome {
	roll := r.IntN(100) + 1

	switch {
	case roll <= jackpotMaxRoll:
		symbol := weightedSymbol(r)
		return models.SlotOutcome{
			Reels:  [3]models.Symbol{symbol, symbol, symbol},
			Tier:   models.SlotTierJackpot,
			Payout: symbol.JackpotValue(),
		}

	case roll <= breakEvenMaxRoll:
		// Two distinct symbols, drawn without replacement
		n := len(models.Symbols)
		i := r.IntN(n)
		j := r.IntN(n - 1)
		if j >= i {
			j++
		}
		pair, single := models.Symbols[i], models.Symbols[j]

		reels := [3]models.Symbol{pair, pair, pair}
		reels[r.IntN(3)] = single
		return models.SlotOutcome{
			Reels:  reels,
			Tier:   models.SlotTierBreakEven,
			Payout: SlotAnte,
		}

	default:
		var reels [3]models.Symbol
		for k := range reels {
			reels[k] = models.Symbols[r.IntN(len(models.Symbols))]
		}
		return models.SlotOutcome{
			Reels:  reels,
			Tier:   models.SlotTierLoss,
			Payout: 0,
		}
	}
}

func weightedSymbol(r Rand) models.Symbol {
	n := r.IntN(models.TotalSymbolWeight())
	for _, s := range models.Symbols {
		if n < s.Weight() {
			return s
		}
		n -= s.Weight()
	}
	return models.Symbols[len(models.Symbols)-1]
}

// drawDailyReward picks uniformly from DailyRewardMin..DailyRewardMax.
func drawDailyReward(r Rand) int64 {
	return DailyRewardMin + int64(r.IntN(int(DailyRewardMax-DailyRewardMin+1)))
}

// TierOdds returns the probability of each tier.
func TierOdds() map[models.SlotTier]float64 {
	return map[models.SlotTier]float64{
		models.SlotTierJackpot:   float64(jackpotMaxRoll) / 100,
		models.SlotTierBreakEven: float64(breakEvenMaxRoll-jackpotMaxRoll) / 100,
		models.SlotTierLoss:      float64(100-breakEvenMaxRoll) / 100,
	}
}

// ExpectedPayout is the mean payout of one spin.
func ExpectedPayout() float64 {
	var weighted int64
	for _, s := range models.Symbols {
		weighted += int64(s.Weight()) * s.JackpotValue()
	}
	odds := TierOdds()
	return odds[models.SlotTierJackpot]*float64(weighted)/float64(models.TotalSymbolWeight()) +
		odds[models.SlotTierBreakEven]*float64(SlotAnte)
}
