// Package report renders a session's outputs into a paginated PDF document.
package report

import (
	"bytes"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"research-assistant/internal/session"
)

const (
	headingSummary = "SUMMARY"
	headingHistory = "CONVERSATION HISTORY"
	headingText    = "FULL TEXT"
)

// section is one rendered block: a bold heading followed by one paragraph
// per non-empty line of content.
type section struct {
	Heading string
	Lines   []string
}

// Build produces a PDF report containing, in order: the summary, one
// section per question/answer pair, the conversation history, and the full
// extracted text. Sections with no content are omitted. Output is
// deterministic for identical inputs.
func Build(summary string, qa []session.QAPair, messages []session.Message, fullText string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "Letter", "")
	// Fixed metadata dates keep identical inputs byte-identical.
	doc.SetCreationDate(time.Unix(0, 0))
	doc.SetModificationDate(time.Unix(0, 0))
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")
	for _, sec := range sections(summary, qa, messages, fullText) {
		doc.SetFont("Helvetica", "B", 13)
		doc.MultiCell(0, 7, tr(sec.Heading), "", "L", false)
		doc.Ln(2)
		doc.SetFont("Helvetica", "", 11)
		for _, line := range sec.Lines {
			doc.MultiCell(0, 6, tr(line), "", "L", false)
		}
		doc.Ln(4)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sections assembles the ordered report blocks, skipping empty sources.
func sections(summary string, qa []session.QAPair, messages []session.Message, fullText string) []section {
	var secs []section
	if strings.TrimSpace(summary) != "" {
		secs = append(secs, section{Heading: headingSummary, Lines: nonEmptyLines(summary)})
	}
	for _, pair := range qa {
		secs = append(secs, section{
			Heading: "Q: " + pair.Question,
			Lines:   nonEmptyLines("A: " + pair.Answer),
		})
	}
	if hist := historyLines(messages); len(hist) > 0 {
		secs = append(secs, section{Heading: headingHistory, Lines: hist})
	}
	if strings.TrimSpace(fullText) != "" {
		secs = append(secs, section{Heading: headingText, Lines: nonEmptyLines(fullText)})
	}
	return secs
}

// historyLines renders the conversation as "speaker: content" lines. The
// leading system message is not part of the visible conversation, so a log
// holding only that yields no history section.
func historyLines(messages []session.Message) []string {
	var lines []string
	for _, m := range messages {
		switch m.Role {
		case session.RoleUser:
			lines = append(lines, nonEmptyLines("You: "+m.Content)...)
		case session.RoleAssistant:
			lines = append(lines, nonEmptyLines("Assistant: "+m.Content)...)
		}
	}
	return lines
}

func nonEmptyLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
