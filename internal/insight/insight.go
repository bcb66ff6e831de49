// Package insight answers free-text questions about the student
// collection.
//
// A question is matched against a fixed, ordered list of keyword rules.
// The first rule whose keyword appears in the lower-cased question
// answers it from the records directly. Questions no rule claims are
// sent to an external completion service together with a short summary
// of the collection. If that call fails, the caller still gets an
// answer: FallbackAnswer.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aanand-mishra/students-records/internal/types"
)

const (
	// FallbackAnswer replaces any failed delegation.
	FallbackAnswer = "AI service is currently unavailable. Please try again later."

	// SystemInstruction is sent with every delegated question.
	SystemInstruction = "You are a helpful assistant for a student records system. " +
		"Answer strictly from the provided summary. If the summary does not contain the answer, say so."

	DefaultMaxOutputTokens = 200
	DefaultTimeout         = 15 * time.Second
)

// Intent names the path that produced an answer.
type Intent string

const (
	IntentFemaleCount Intent = "female_count"
	IntentMaleCount   Intent = "male_count"
	IntentTotalCount  Intent = "total_count"
	IntentPrograms    Intent = "programs"
	IntentYearLevels  Intent = "year_levels"
	IntentDelegated   Intent = "delegated"
	IntentFallback    Intent = "fallback"
)

// Completer is a hosted text-completion service.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// Observer is told which intent answered each question.
type Observer interface {
	Answered(intent Intent)
}

// ExternalServiceError wraps any failure of the delegated call.
type ExternalServiceError struct {
	Err error
}

func (e *ExternalServiceError) Error() string {
	return "external completion service: " + e.Err.Error()
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// Answer is the reply to one question.
type Answer struct {
	Text   string
	Intent Intent
}

type rule struct {
	intent  Intent
	keyword string
	respond func([]types.Student) string
}

// rules is evaluated top to bottom. "female" must precede "male":
// every question containing "female" also contains "male".
var rules = []rule{
	{IntentFemaleCount, "female", func(s []types.Student) string {
		return fmt.Sprintf("There are %d female students enrolled.", countGender(s, "female"))
	}},
	{IntentMaleCount, "male", func(s []types.Student) string {
		return fmt.Sprintf("There are %d male students enrolled.", countGender(s, "male"))
	}},
	{IntentTotalCount, "total", func(s []types.Student) string {
		return fmt.Sprintf("There are %d students enrolled in total.", len(s))
	}},
	{IntentPrograms, "program", func(s []types.Student) string {
		programs := distinct(s, func(st types.Student) string { return st.Program })
		if len(programs) == 0 {
			return "No programs have been recorded yet."
		}
		return fmt.Sprintf("Programs: %s.", strings.Join(programs, ", "))
	}},
	{IntentYearLevels, "year", func(s []types.Student) string {
		levels := distinct(s, func(st types.Student) string { return st.YearLevel })
		if len(levels) == 0 {
			return "No year levels have been recorded yet."
		}
		return fmt.Sprintf("Year levels: %s.", strings.Join(levels, ", "))
	}},
}

// Options tunes delegation.
type Options struct {
	MaxOutputTokens int
	Timeout         time.Duration
	Observer        Observer
}

// Responder answers questions. It holds no per-request state.
type Responder struct {
	completer Completer
	opts      Options
	log       *slog.Logger
}

// New returns a Responder delegating to completer. A nil completer is
// allowed: every delegated question then gets FallbackAnswer.
func New(completer Completer, opts Options, log *slog.Logger) *Responder {
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Responder{completer: completer, opts: opts, log: log}
}

// Classify returns the intent of the first matching rule, or
// IntentDelegated if none matches.
func Classify(question string) Intent {
	if rl, ok := match(question); ok {
		return rl.intent
	}
	return IntentDelegated
}

func match(question string) (rule, bool) {
	q := strings.ToLower(question)
	for _, rl := range rules {
		if strings.Contains(q, rl.keyword) {
			return rl, true
		}
	}
	return rule{}, false
}

// Answer replies to question using students as the dataset. It never
// fails: delegation errors are logged and replaced with FallbackAnswer.
func (r *Responder) Answer(ctx context.Context, question string, students []types.Student) Answer {
	ans := r.answer(ctx, question, students)
	if r.opts.Observer != nil {
		r.opts.Observer.Answered(ans.Intent)
	}
	return ans
}

func (r *Responder) answer(ctx context.Context, question string, students []types.Student) Answer {
	if rl, ok := match(question); ok {
		return Answer{Text: rl.respond(students), Intent: rl.intent}
	}

	text, err := r.delegate(ctx, question, students)
	if err != nil {
		r.log.Warn("delegated answer failed, using fallback",
			slog.String("error", err.Error()))
		return Answer{Text: FallbackAnswer, Intent: IntentFallback}
	}
	return Answer{Text: text, Intent: IntentDelegated}
}

func (r *Responder) delegate(ctx context.Context, question string, students []types.Student) (string, error) {
	if r.completer == nil {
		return "", &ExternalServiceError{Err: fmt.Errorf("no completer configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	text, err := r.completer.Complete(ctx, SystemInstruction, Prompt(question, students), r.opts.MaxOutputTokens)
	if err != nil {
		return "", &ExternalServiceError{Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &ExternalServiceError{Err: fmt.Errorf("empty completion")}
	}
	return text, nil
}

// Prompt is the user message sent for a delegated question.
func Prompt(question string, students []types.Student) string {
	return "Question: " + question + "\n\nStudent data summary:\n" + Summarize(students)
}

// Summarize renders the bounded context handed to the completion
// service: counts and distinct values only, never individual records.
func Summarize(students []types.Student) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total students: %d\n", len(students))
	fmt.Fprintf(&b, "Male students: %d\n", countGender(students, "male"))
	fmt.Fprintf(&b, "Female students: %d\n", countGender(students, "female"))
	fmt.Fprintf(&b, "Programs: %s\n", joinOrNone(distinct(students, func(s types.Student) string { return s.Program })))
	fmt.Fprintf(&b, "Year levels: %s", joinOrNone(distinct(students, func(s types.Student) string { return s.YearLevel })))
	return b.String()
}

func countGender(students []types.Student, gender string) int {
	n := 0
	for _, s := range students {
		if strings.EqualFold(s.Gender, gender) {
			n++
		}
	}
	return n
}

// distinct returns the non-empty values of field in first-seen order.
func distinct(students []types.Student, field func(types.Student) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range students {
		v := field(s)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none recorded"
	}
	return strings.Join(values, ", ")
}
