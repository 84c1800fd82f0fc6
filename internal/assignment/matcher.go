package assignment

import (
	"strings"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

// Classification thresholds. These are fixed policy.
const (
	StrongThreshold = 70
	MidThreshold    = 60
)

// Match scores possessed skills against required skills. A required skill
// matches when, ignoring case, it equals a possessed skill, is contained in one,
// or contains one. Nothing required yields 0% and Weak.
func Match(required, possessed []string) domain.SkillMatchResult {
	result := domain.SkillMatchResult{
		MatchedSkills: []string{},
		MissingSkills: []string{},
	}

	have := make([]string, 0, len(possessed))
	for _, skill := range possessed {
		if s := normalizeSkill(skill); s != "" {
			have = append(have, s)
		}
	}

	for _, skill := range required {
		if matchesAny(normalizeSkill(skill), have) {
			result.MatchedSkills = append(result.MatchedSkills, skill)
		} else {
			result.MissingSkills = append(result.MissingSkills, skill)
		}
	}

	if len(required) > 0 {
		result.Percentage = len(result.MatchedSkills) * 100 / len(required)
	}
	result.Classification = Classify(result.Percentage)
	return result
}

// Classify maps a match percentage to its classification.
func Classify(percentage int) domain.Classification {
	switch {
	case percentage >= StrongThreshold:
		return domain.ClassificationStrong
	case percentage >= MidThreshold:
		return domain.ClassificationMid
	default:
		return domain.ClassificationWeak
	}
}

func matchesAny(required string, possessed []string) bool {
	// an empty string is a substring of everything
	if required == "" {
		return false
	}
	for _, have := range possessed {
		if required == have || strings.Contains(have, required) || strings.Contains(required, have) {
			return true
		}
	}
	return false
}

func normalizeSkill(skill string) string {
	return strings.ToLower(strings.TrimSpace(skill))
}
