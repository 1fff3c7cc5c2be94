// Package prompt assembles the German-language prompts sent to the LLM
// providers for section generation and attachment summarization.
package prompt

import (
	"fmt"
	"strings"
)

const generationSystemBase = `Du bist ein Experte für die Erstellung von Projekt- und Förderanträgen für Wirtschaftsunternehmen.

Deine Aufgabe ist es, basierend auf den gegebenen Leitfragen, dem Benutzerinput und den Best-Practice-Beispielen einen professionellen und strukturierten Abschnitt zu verfassen.

Beachte dabei:
- Verwende eine professionelle, aber zugängliche Sprache
- Strukturiere den Text logisch und kohärent
- Nutze die Best-Practice-Beispiele als Orientierung für Stil und Tiefe
- Gehe spezifisch auf den Benutzerinput ein
- Stelle sicher, dass alle wichtigen Aspekte der Leitfragen abgedeckt werden`

// GenerationSystem returns the system prompt for section generation.
// maxLength <= 0 means no length constraint.
func GenerationSystem(maxLength int) string {
	if maxLength > 0 {
		return generationSystemBase + fmt.Sprintf("\n- Halte den Text unter %d Zeichen", maxLength)
	}
	return generationSystemBase
}

// GenerationUser returns the user prompt for section generation.
// Attachment summaries, when present, are folded in as "Zusätzliche Details".
func GenerationUser(title, questions, userInput string, examples, attachmentSummaries []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Abschnittstitel: %s\n\n", title)
	fmt.Fprintf(&b, "Leitfragen:\n%s\n\n", questions)
	fmt.Fprintf(&b, "Benutzerinput:\n%s\n\n", userInput)

	if len(attachmentSummaries) > 0 {
		b.WriteString("Zusätzliche Details:\n")
		b.WriteString(numberedBlocks("Anhangszusammenfassung", attachmentSummaries))
		b.WriteString("\n\n")
	}

	b.WriteString("Best-Practice-Beispiele:\n")
	b.WriteString(numberedBlocks("Beispiel", examples))
	b.WriteString("\n\n")

	b.WriteString("Bitte erstelle basierend auf diesen Informationen einen professionellen Abschnitt für einen Projektantrag. " +
		"Wiederhole den Abschnittstitel nicht im Text, sondern beginne direkt mit dem Inhalt.")

	return b.String()
}

// Content type labels used in the summarization system prompt.
const (
	ContentTypePDF  = "pdf"
	ContentTypeWeb  = "web"
	ContentTypeText = "text"
)

func contentTypeLabel(contentType string) string {
	switch contentType {
	case ContentTypePDF:
		return "PDF-Dokument"
	case ContentTypeWeb:
		return "Webseite"
	case ContentTypeText:
		return "Text"
	default:
		return "Dokument"
	}
}

// SummarySystem returns the system prompt for question-aware summarization.
// maxLength <= 0 means no length constraint.
func SummarySystem(contentType string, maxLength int) string {
	p := fmt.Sprintf(`Du bist ein Experte für die Analyse und Zusammenfassung von Inhalten für Projektanträge.

Deine Aufgabe ist es, aus dem bereitgestellten %s die relevanten Informationen zu extrahieren, die zur Beantwortung der gegebenen Leitfragen benötigt werden.

Richtlinien für die Zusammenfassung:
- Fokussiere dich ausschließlich auf Informationen, die relevant für die Leitfragen sind
- Strukturiere die Zusammenfassung logisch und kohärent
- Verwende eine professionelle, sachliche Sprache
- Extrahiere konkrete Daten, Zahlen und Fakten, wo verfügbar
- Ignoriere irrelevante Details oder Marketing-Sprache
- Falls das Dokument nicht relevant für die Fragen ist, sage das deutlich

Ziel: Eine präzise, fokussierte Zusammenfassung, die als Grundlage für die Antragserstellung dient.`, contentTypeLabel(contentType))

	if maxLength > 0 {
		p += fmt.Sprintf("\n- Halte die Zusammenfassung unter %d Zeichen", maxLength)
	}
	return p
}

// SummaryUser returns the user prompt for question-aware summarization.
func SummaryUser(content, questions string) string {
	return fmt.Sprintf(`Leitfragen, die beantwortet werden sollen:
%s

Zu analysierender Inhalt:
%s

Bitte erstelle eine fokussierte Zusammenfassung des Inhalts, die speziell auf die Beantwortung der oben genannten Leitfragen ausgerichtet ist. Extrahiere nur die relevanten Informationen und strukturiere sie so, dass sie für die Erstellung eines Projektantrags hilfreich sind.`, questions, content)
}

func numberedBlocks(label string, blocks []string) string {
	parts := make([]string, 0, len(blocks))
	for i, block := range blocks {
		parts = append(parts, fmt.Sprintf("%s %d:\n%s", label, i+1, block))
	}
	return strings.Join(parts, "\n\n")
}
