package quiz

import (
	"regexp"
	"strconv"
	"strings"

	"notesquest-be/internal/apperror"
)

// Options holds the four labeled choices of a question. Any of them may
// be empty when the provider output was incomplete.
type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

func (o Options) Get(label string) string {
	switch label {
	case "A":
		return o.A
	case "B":
		return o.B
	case "C":
		return o.C
	case "D":
		return o.D
	}
	return ""
}

// Question is one parsed multiple-choice question.
type Question struct {
	Number        int     `json:"number"`
	Question      string  `json:"question"`
	Options       Options `json:"options"`
	CorrectAnswer string  `json:"correct_answer"`
	Explanation   string  `json:"explanation,omitempty"`
	// Defaulted is set when the Correct: line was missing and "A" was
	// assumed, so callers can surface the parse as degraded.
	Defaulted bool `json:"defaulted,omitempty"`
}

var (
	questionMarkerRe = regexp.MustCompile(`(?m)^\s*Q(\d+)\)\s*`)
	optionLineRe     = regexp.MustCompile(`^([A-Da-d])\)\s*(.*)$`)
	correctLineRe    = regexp.MustCompile(`(?i)^correct:\s*([A-Da-d])`)
	explanationRe    = regexp.MustCompile(`(?i)^explanation:\s*(.*)$`)
)

// Parse turns the raw quiz text emitted by a provider into typed
// questions. The format is lenient by policy: a missing option becomes
// an empty string and a missing Correct: line defaults to "A" rather
// than failing the whole parse. Only input with no question markers at
// all is rejected.
func Parse(raw string) ([]Question, error) {
	markers := questionMarkerRe.FindAllStringSubmatchIndex(raw, -1)
	if len(markers) == 0 {
		return nil, &apperror.ParseError{Kind: "quiz", Message: "no question markers found"}
	}

	questions := make([]Question, 0, len(markers))
	for i, m := range markers {
		end := len(raw)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		number, _ := strconv.Atoi(raw[m[2]:m[3]])
		if number == 0 {
			number = i + 1
		}
		block := raw[m[1]:end]
		questions = append(questions, parseBlock(number, block))
	}
	return questions, nil
}

func parseBlock(number int, block string) Question {
	q := Question{Number: number, CorrectAnswer: "A", Defaulted: true}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := correctLineRe.FindStringSubmatch(line); m != nil {
			q.CorrectAnswer = strings.ToUpper(m[1])
			q.Defaulted = false
			continue
		}
		if m := explanationRe.FindStringSubmatch(line); m != nil {
			q.Explanation = strings.TrimSpace(m[1])
			continue
		}
		if m := optionLineRe.FindStringSubmatch(line); m != nil {
			setOption(&q.Options, strings.ToUpper(m[1]), strings.TrimSpace(m[2]))
			continue
		}
		if q.Question == "" {
			q.Question = line
		}
	}
	return q
}

func setOption(o *Options, label, text string) {
	switch label {
	case "A":
		o.A = text
	case "B":
		o.B = text
	case "C":
		o.C = text
	case "D":
		o.D = text
	}
}

// Format renders questions back into the wire format. Parsing the
// output of Format yields the same questions.
func Format(questions []Question) string {
	var b strings.Builder
	for i, q := range questions {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Q")
		b.WriteString(strconv.Itoa(q.Number))
		b.WriteString(") ")
		b.WriteString(q.Question)
		b.WriteString("\n")
		for _, label := range []string{"A", "B", "C", "D"} {
			b.WriteString(label)
			b.WriteString(") ")
			b.WriteString(q.Options.Get(label))
			b.WriteString("\n")
		}
		b.WriteString("Correct: ")
		b.WriteString(q.CorrectAnswer)
		b.WriteString("\n")
		if q.Explanation != "" {
			b.WriteString("Explanation: ")
			b.WriteString(q.Explanation)
			b.WriteString("\n")
		}
	}
	return b.String()
}
