package cmd

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"nuggies/bot/common"
	"nuggies/models"
	"nuggies/service"
)

// slotStats tallies simulated spins
type slotStats struct {
	Spins    int
	Tiers    map[models.SlotTier]int
	Jackpots map[models.Symbol]int
	Payout   int64
}

func simulateSlots(r service.Rand, spins int) slotStats {
	stats := slotStats{
		Spins:    spins,
		Tiers:    make(map[models.SlotTier]int),
		Jackpots: make(map[models.Symbol]int),
	}
	for i := 0; i < spins; i++ {
		outcome := service.SpinSlots(r)
		stats.Tiers[outcome.Tier]++
		stats.Payout += outcome.Payout
		if outcome.Tier == models.SlotTierJackpot {
			stats.Jackpots[outcome.Reels[0]]++
		}
	}
	return stats
}

// chiSquared compares observed tier counts with TierOdds
func (s slotStats) chiSquared() float64 {
	var chi float64
	for tier, p := range service.TierOdds() {
		expected := p * float64(s.Spins)
		chi += math.Pow(float64(s.Tiers[tier])-expected, 2) / expected
	}
	return chi
}

func (s slotStats) report(w io.Writer) {
	fmt.Fprintf(w, "=== Slots simulation: %d spins ===\n", s.Spins)

	odds := service.TierOdds()
	for _, tier := range []models.SlotTier{models.SlotTierJackpot, models.SlotTierBreakEven, models.SlotTierLoss} {
		actual := float64(s.Tiers[tier]) / float64(s.Spins)
		fmt.Fprintf(w, "  %-10s %7d  actual %6.2f%%  expected %6.2f%%\n",
			tier, s.Tiers[tier], actual*100, odds[tier]*100)
	}

	// chi-squared critical value for 2 degrees of freedom at p=0.05
	verdict := "✓ PASS"
	if s.chiSquared() > 5.991 {
		verdict = "✗ FAIL"
	}
	fmt.Fprintf(w, "  χ²: %.2f %s\n", s.chiSquared(), verdict)

	jackpots := s.Tiers[models.SlotTierJackpot]
	if jackpots > 0 {
		fmt.Fprintln(w, "\nJackpot symbols:")
		for _, sym := range models.Symbols {
			share := float64(s.Jackpots[sym]) / float64(jackpots)
			expected := float64(sym.Weight()) / float64(models.TotalSymbolWeight())
			bar := strings.Repeat("█", int(share*40))
			fmt.Fprintf(w, "  %s %6d (%5.2f%%, expected %5.2f%%) %s\n", sym.Emoji(), s.Jackpots[sym], share*100, expected*100, bar)
		}
	}

	mean := float64(s.Payout) / float64(s.Spins)
	fmt.Fprintf(w, "\nWagered: %s nuggets, paid out: %s nuggets\n",
		common.FormatBalance(int64(s.Spins)*service.SlotAnte), common.FormatBalance(s.Payout))
	fmt.Fprintf(w, "Mean payout: %.3f nuggets (expected %.3f, ante %d)\n", mean, service.ExpectedPayout(), service.SlotAnte)
	fmt.Fprintf(w, "Return to player: %.2f%%\n", mean/float64(service.SlotAnte)*100)
}

func newSimulateCommand() *cobra.Command {
	var (
		spins int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate slot spins and compare against the configured odds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if spins <= 0 {
				return fmt.Errorf("spins must be positive, got %d", spins)
			}
			var r service.Rand = service.DefaultRand
			if seed != 0 {
				r = rand.New(rand.NewPCG(seed, seed))
			}
			simulateSlots(r, spins).report(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().IntVar(&spins, "spins", 100000, "number of spins to simulate")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "fixed PCG seed; 0 uses the global source")
	return cmd
}
