package analyzer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// systemPrompt — строгий формат ответа классификатора.
const systemPrompt = "" +
	"You classify student requests for a study assistant. " +
	"Respond with a single JSON object and nothing else: " +
	`{"topic": string, "intent": "study_planning"|"resource_finding"|"assessment"|"general_help", ` +
	`"complexity": "simple"|"moderate"|"complex", "has_time_constraint": bool, ` +
	`"needs_personalization": bool, "has_uploaded_content": bool}.`

const userTemplate = `Analyze this student request and extract key information.

Request: "{{ .Text }}"
{{- if .HasDocument }}
The student also uploaded a document. First part:
{{ .Excerpt }}
{{- end }}

Return ONLY the JSON object.`

var promptTmpl = template.Must(template.New("analysis").Parse(userTemplate))

// excerptLimit — сколько символов документа отправляется в классификатор.
const excerptLimit = 500

// promptData — данные для шаблона запроса.
type promptData struct {
	Text        string
	HasDocument bool
	Excerpt     string
}

// renderPrompt рендерит пользовательскую часть запроса к модели.
func renderPrompt(text, document string) (string, error) {
	data := promptData{
		Text:        strings.ReplaceAll(text, `"`, `'`),
		HasDocument: document != "",
	}
	if data.HasDocument {
		runes := []rune(document)
		if len(runes) > excerptLimit {
			runes = runes[:excerptLimit]
		}
		data.Excerpt = string(runes)
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPromptRender, err)
	}
	return buf.String(), nil
}
