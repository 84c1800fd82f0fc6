package inference

import (
	"strings"
	"text/template"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

var promptTemplate = template.Must(template.New("skills").Parse(`Analyze this IT support ticket and provide:
1. Required technical skills (comma-separated list)
2. Complexity level (1-5 scale where 1=basic, 5=expert)
3. Specialized knowledge areas (comma-separated list)

Ticket Details:
- Summary: {{.Summary}}
- Issue Type: {{.IssueType}}
- Sub Issue Type: {{.SubIssueType}}
- Description: {{.Description}}

Respond with JSON only, in this format:
{"required_skills": "skill1, skill2", "complexity_level": 3, "specialized_knowledge": "area1, area2"}
`))

// BuildPrompt renders the fixed skill-analysis prompt for ticket.
func BuildPrompt(ticket domain.Ticket) string {
	var b strings.Builder
	// the template only reads string fields, so Execute cannot fail
	_ = promptTemplate.Execute(&b, ticket)
	return b.String()
}
