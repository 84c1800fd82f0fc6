package assignment

import "github.com/helpdesk-ops/ticket-assignment/internal/domain"

// TierFor returns the priority tier for an availability/classification pair.
// Unavailable technicians always land in the fallback tier; tiers 4 and 5 are
// intentionally never produced.
func TierFor(available bool, classification domain.Classification) int {
	if !available {
		return domain.FallbackTier
	}
	switch classification {
	case domain.ClassificationStrong:
		return 1
	case domain.ClassificationMid:
		return 2
	default:
		return 3
	}
}

// Eligible reports whether a tier may be selected.
func Eligible(tier int) bool {
	return tier >= 1 && tier <= 3
}

// TierDescription is a human label for a tier, used in reasoning text.
func TierDescription(tier int) string {
	switch tier {
	case 1:
		return "Available + Strong match (>=70%)"
	case 2:
		return "Available + Mid match (60-69%)"
	case 3:
		return "Available + Weak match (<60%)"
	case domain.FallbackTier:
		return "Fallback assignment"
	default:
		return "Unknown tier"
	}
}
