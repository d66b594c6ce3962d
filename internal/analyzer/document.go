package analyzer

import "strings"

// Маркеры блока документа, встроенного в текст запроса.
const (
	DocumentStart = "[UPLOADED_BOOK_CONTENT]"
	DocumentEnd   = "[/UPLOADED_BOOK_CONTENT]"
)

// previewLimit — длина превью документа в метаданных ответа.
const previewLimit = 1000

// ExtractDocument вырезает блок документа из текста.
//
// Возвращает текст без блока и содержимое блока. Если закрывающего
// маркера нет, документом считается всё после открывающего.
func ExtractDocument(text string) (clean, document string) {
	start := strings.Index(text, DocumentStart)
	if start < 0 {
		return strings.TrimSpace(text), ""
	}

	body := text[start+len(DocumentStart):]
	rest := ""
	if end := strings.Index(body, DocumentEnd); end >= 0 {
		rest = body[end+len(DocumentEnd):]
		body = body[:end]
	}

	clean = strings.TrimSpace(text[:start] + " " + rest)
	return strings.Join(strings.Fields(clean), " "), strings.TrimSpace(body)
}

// Preview возвращает первые 1000 символов документа.
func Preview(document string) string {
	runes := []rune(document)
	if len(runes) <= previewLimit {
		return document
	}
	return string(runes[:previewLimit]) + "..."
}
