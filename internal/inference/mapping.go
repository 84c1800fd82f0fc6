package inference

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

// GenericSkill is required when nothing better is known about a ticket.
const GenericSkill = "General IT Support"

// SkillMapping maps an issue type to the skills it usually needs.
type SkillMapping map[string][]string

// DefaultSkillMapping returns the built-in issue type table.
func DefaultSkillMapping() SkillMapping {
	return SkillMapping{
		"Hardware":      {"Hardware Troubleshooting", "PC Repair", "Printer Support"},
		"Software/SaaS": {"Software Installation", "Application Support", "Troubleshooting"},
		"Network":       {"Network Troubleshooting", "Router Configuration", "WiFi Setup"},
		"Security":      {"Security Analysis", "Antivirus Support", "Access Control"},
		"Database":      {"SQL Database", "Database Administration", "Data Recovery"},
		"Email":         {"Email Configuration", "Outlook Support", "Exchange Server"},
		"Server":        {"Windows Server", "Linux Server", "Server Administration"},
	}
}

// LoadSkillMapping reads a YAML issue-type table and layers it over the
// defaults. Keys compare case-insensitively: a file entry replaces the
// built-in one it folds to, and two file entries that fold together are
// rejected.
func LoadSkillMapping(path string) (SkillMapping, error) {
	mapping := DefaultSkillMapping()
	if path == "" {
		return mapping, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill mapping %s: %w", path, err)
	}

	var overrides map[string][]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse skill mapping %s: %w", path, err)
	}

	seen := make(map[string]string, len(overrides))
	for raw, skills := range overrides {
		issueType := strings.TrimSpace(raw)
		folded := strings.ToLower(issueType)
		if folded == "" {
			return nil, fmt.Errorf("skill mapping %s: empty issue type", path)
		}
		if prev, dup := seen[folded]; dup {
			return nil, fmt.Errorf("skill mapping %s: issue types %q and %q differ only by case", path, prev, issueType)
		}
		seen[folded] = issueType

		skills = normalizeList(skills)
		if len(skills) == 0 {
			return nil, fmt.Errorf("skill mapping %s: issue type %q has no skills", path, issueType)
		}
		for key := range mapping {
			if strings.EqualFold(key, issueType) {
				delete(mapping, key)
			}
		}
		mapping[issueType] = skills
	}
	return mapping, nil
}

// Lookup finds the skills for issueType, preferring an exact key.
func (m SkillMapping) Lookup(issueType string) ([]string, bool) {
	issueType = strings.TrimSpace(issueType)
	if issueType == "" {
		return nil, false
	}
	if skills, ok := m[issueType]; ok {
		return skills, true
	}
	for key, skills := range m {
		if strings.EqualFold(key, issueType) {
			return skills, true
		}
	}
	return nil, false
}

// Fallback derives a skill set from the ticket's issue type alone.
func (m SkillMapping) Fallback(ticket domain.Ticket, reason string) domain.RequiredSkillSet {
	set := domain.RequiredSkillSet{
		Source:         domain.InferenceSourceFallback,
		DegradedReason: reason,
	}
	if ticket.IssueType != "" {
		set.SpecializedKnowledge = []string{ticket.IssueType}
	}

	skills, ok := m.Lookup(ticket.IssueType)
	if !ok {
		set.Skills = []string{GenericSkill}
		set.Complexity = 1
		return set
	}
	set.Skills = append([]string(nil), skills...)
	set.Complexity = complexityForPriority(ticket.Priority)
	return set
}

func complexityForPriority(p domain.TicketPriority) int {
	switch p {
	case domain.TicketPriorityLow:
		return 2
	case domain.TicketPriorityMedium:
		return 3
	case domain.TicketPriorityHigh:
		return 4
	case domain.TicketPriorityCritical:
		return 5
	default:
		return 3
	}
}
