package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/helpdesk-ops/ticket-assignment/internal/domain"
)

const analysisSchemaJSON = `{
  "type": "object",
  "required": ["required_skills", "complexity_level"],
  "properties": {
    "required_skills": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "complexity_level": {"type": "integer", "minimum": 1, "maximum": 5},
    "specialized_knowledge": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    }
  }
}`

var analysisSchema = mustSchema(analysisSchemaJSON)

// ErrMalformedResponse marks completion output that cannot be used.
var ErrMalformedResponse = errors.New("malformed skill analysis")

type rawAnalysis struct {
	RequiredSkills       json.RawMessage `json:"required_skills"`
	ComplexityLevel      float64         `json:"complexity_level"`
	SpecializedKnowledge json.RawMessage `json:"specialized_knowledge"`
}

// ParseAnalysis turns completion text into a required skill set. Skill lists may
// be JSON arrays or comma-separated strings.
func ParseAnalysis(text string) (domain.RequiredSkillSet, error) {
	doc := extractJSONObject(text)
	if doc == "" {
		return domain.RequiredSkillSet{}, fmt.Errorf("%w: no JSON object in response", ErrMalformedResponse)
	}

	result, err := analysisSchema.Validate(gojsonschema.NewStringLoader(doc))
	if err != nil {
		return domain.RequiredSkillSet{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return domain.RequiredSkillSet{}, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(msgs, "; "))
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return domain.RequiredSkillSet{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	skills := normalizeList(splitList(raw.RequiredSkills))
	if len(skills) == 0 {
		return domain.RequiredSkillSet{}, fmt.Errorf("%w: no required skills", ErrMalformedResponse)
	}

	return domain.RequiredSkillSet{
		Skills:               skills,
		Complexity:           int(raw.ComplexityLevel),
		SpecializedKnowledge: normalizeList(splitList(raw.SpecializedKnowledge)),
	}, nil
}

// extractJSONObject strips markdown fences and any prose around the outermost object.
func extractJSONObject(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func splitList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return strings.Split(joined, ",")
	}
	return nil
}

func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("inference: invalid analysis schema: %v", err))
	}
	return schema
}
