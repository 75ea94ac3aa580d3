package billing

import "fmt"

const (
	TierBasic = "Basic"
	TierPro   = "Pro"
	TierElite = "Elite"
)

var ErrUnknownTier = fmt.Errorf("unknown subscription tier")

// PriceIDs maps the three tiers to their billing price identifiers,
// provided via configuration.
type PriceIDs struct {
	Basic string
	Pro   string
	Elite string
}

func (p PriceIDs) ForTier(tier string) (string, error) {
	switch tier {
	case TierBasic:
		return p.Basic, nil
	case TierPro:
		return p.Pro, nil
	case TierElite:
		return p.Elite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTier, tier)
	}
}

func (p PriceIDs) TierForPrice(priceID string) (string, bool) {
	switch priceID {
	case p.Basic:
		return TierBasic, true
	case p.Pro:
		return TierPro, true
	case p.Elite:
		return TierElite, true
	default:
		return "", false
	}
}

// TierForAmount buckets a monthly unit amount in cents into a tier.
func TierForAmount(unitAmount int64) string {
	switch {
	case unitAmount <= 999:
		return TierBasic
	case unitAmount <= 1999:
		return TierPro
	default:
		return TierElite
	}
}
