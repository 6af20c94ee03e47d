package llm

import (
	"fmt"
	"strings"
)

// Prompt builders shared by the chat-completions providers. The
// primary inference service owns its own prompts server-side; these
// exist so the fallback providers produce output the parsers accept.

func SummaryPrompt(content, title string, maxLength int) string {
	return fmt.Sprintf(
		"Create a concise summary of the following document titled %q. "+
			"Keep it under %d words and focus on the key concepts a student should remember.\n\n%s",
		title, maxLength, content)
}

func QuizPrompt(content, title string, numQuestions int, difficulty string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %d multiple-choice quiz questions", numQuestions)
	if difficulty != "" {
		fmt.Fprintf(&b, " at %s difficulty", difficulty)
	}
	fmt.Fprintf(&b, " from the document titled %q.\n", title)
	b.WriteString("Format every question exactly like this, with no extra commentary:\n\n")
	b.WriteString("Q1) Question text here?\n")
	b.WriteString("A) First option\n")
	b.WriteString("B) Second option\n")
	b.WriteString("C) Third option\n")
	b.WriteString("D) Fourth option\n")
	b.WriteString("Correct: A\n\n")
	b.WriteString("Document:\n")
	b.WriteString(content)
	return b.String()
}

func FlashcardsPrompt(content, title string, numCards int) string {
	return fmt.Sprintf(
		"Create %d flashcards from the document titled %q. "+
			"Respond with a JSON array only, where each element has the keys "+
			"\"front\", \"back\", \"category\" and \"difficulty\" (easy, medium or hard).\n\n%s",
		numCards, title, content)
}

// ExtractJSONArray pulls the first top-level JSON array out of a model
// reply, tolerating markdown code fences and surrounding prose.
func ExtractJSONArray(reply string) (string, bool) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return reply[start : end+1], true
}
