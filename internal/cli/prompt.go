package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

// prompter reads line answers for the interactive menu. Invalid answers
// are re-asked at most maxRetries times before the last error is returned.
type prompter struct {
	in         *bufio.Reader
	out        io.Writer
	maxRetries int
}

func newPrompter(in io.Reader, out io.Writer, maxRetries int) *prompter {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &prompter{in: bufio.NewReader(in), out: out, maxRetries: maxRetries}
}

func (p *prompter) println(a ...any) {
	_, _ = fmt.Fprintln(p.out, a...)
}

func (p *prompter) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.out, format, a...)
}

// ask prints question and returns the answer without its line ending.
// io.EOF is returned only when the input ends before any answer is read.
func (p *prompter) ask(question string) (string, error) {
	p.printf("%s", question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			p.println()
			return "", io.EOF
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question. Anything other than yes or y is no.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y", nil
}

// askValid asks question until parse accepts the answer or the retries run
// out. Each rejection is reported with its error message.
func askValid[T any](p *prompter, question string, parse func(string) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		answer, err := p.ask(question)
		if err != nil {
			return zero, err
		}
		v, err := parse(answer)
		if err == nil {
			return v, nil
		}
		lastErr = err
		p.println(retryMessage(err))
	}
	return zero, lastErr
}

func retryMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidSelection):
		return "Invalid task number. Please try again."
	case errors.Is(err, core.ErrInvalidInput):
		return "Please enter a valid number."
	default:
		return err.Error()
	}
}

// chooseTask asks for a 1-based task number among count tasks and returns
// the 0-based index.
func (p *prompter) chooseTask(question string, count int) (int, error) {
	return askValid(p, question, func(s string) (int, error) {
		return core.ParseSelection(s, count)
	})
}

// askName asks for a task name. Blank answers are accepted only when
// allowBlank is set, meaning "keep the current name".
func (p *prompter) askName(question string, allowBlank bool) (string, error) {
	return askValid(p, question, func(s string) (string, error) {
		s = strings.TrimSpace(s)
		if s == "" && !allowBlank {
			return "", fmt.Errorf("task name must not be empty")
		}
		if strings.Contains(s, "|") {
			return "", fmt.Errorf("task name must not contain '|'")
		}
		return s, nil
	})
}

// askStatus asks for an urgency. A blank answer yields fallback; Done is
// accepted only when allowDone is set.
func (p *prompter) askStatus(question string, fallback models.Status, allowDone bool) (models.Status, error) {
	return askValid(p, question, func(s string) (models.Status, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return fallback, nil
		}
		status := models.Status(s)
		switch status.Kind() {
		case models.KindUrgent, models.KindSemiUrgent, models.KindNonUrgent:
			return status, nil
		case models.KindDone:
			if allowDone {
				return models.StatusDone, nil
			}
		}
		return "", fmt.Errorf("unknown status %q", s)
	})
}

// askDueDate asks for a DD-MM-YYYY date. A blank answer yields fallback.
func (p *prompter) askDueDate(question, fallback string) (string, error) {
	return askValid(p, question, func(s string) (string, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			return fallback, nil
		}
		if _, err := time.Parse(models.DateInputLayout, s); err != nil {
			return "", fmt.Errorf("invalid date %q, use DD-MM-YYYY", s)
		}
		return s, nil
	})
}
