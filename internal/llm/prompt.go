package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt steers providers that support a system role.
const SystemPrompt = "You are an expert designer of GOV.UK-style digital forms. " +
	"Respond with ONLY a JSON object, no explanations or markdown formatting."

const schemaDescription = `{
  "title": "Form title",
  "pages": [
    {
      "title": "Question page title",
      "fields": [
        {
          "name": "machine-name",
          "type": "text|textarea|radios|checkboxes|select|date|email|phone|number|file",
          "label": "Question shown to the user",
          "hint": "Optional help text",
          "options": ["Only for radios, checkboxes and select"],
          "required": true
        }
      ]
    }
  ]
}`

// BuildPrompt creates a prompt for form generation. When CurrentJSON is set
// the model is asked to revise the existing definition instead of starting
// fresh.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("Design a GOV.UK-style digital form as a JSON object with this exact structure:\n\n")
	b.WriteString(schemaDescription)
	b.WriteString("\n\nRules:\n")
	b.WriteString("1. Output ONLY the JSON object, no explanations or markdown\n")
	b.WriteString("2. One question per page, following GOV.UK Design System guidance\n")
	b.WriteString("3. Field names are lowercase, hyphen-separated, and unique across the form\n")
	b.WriteString("4. Use radios for up to 5 mutually exclusive options, select for more\n")
	b.WriteString("5. Write labels as questions in plain English\n")
	b.WriteString("6. Only radios, checkboxes and select fields carry options, always at least two\n")

	if req.CurrentJSON != "" {
		b.WriteString("\nCurrent form definition:\n")
		b.WriteString(req.CurrentJSON)
		b.WriteString("\n\nRevise the form above according to this request. Keep unrelated pages unchanged.\n")
	}

	fmt.Fprintf(&b, "\nRequest: %s\n\nJSON:", req.Prompt)

	return b.String()
}

// ExtractJSON pulls the JSON object out of a model response, tolerating
// markdown code fences and surrounding prose.
func ExtractJSON(content string) string {
	if body := fromCodeBlock(content, "```json"); body != "" {
		return body
	}
	if body := fromCodeBlock(content, "```"); body != "" {
		return body
	}

	// Fall back to the outermost braces.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(content[start : end+1])
}

func fromCodeBlock(content, marker string) string {
	start := strings.Index(content, marker)
	if start == -1 {
		return ""
	}
	body := content[start+len(marker):]

	end := strings.Index(body, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(body[:end])
}
