package shell

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"expenses/internal/core"
)

// readLine returns the next input line trimmed of surrounding
// whitespace. ok is false once input is exhausted.
func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// promptLine prints the label and reads one line. Empty input is a
// valid answer.
func (s *Shell) promptLine(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	return s.readLine()
}

// promptRequired re-prompts until the answer is non-empty.
func (s *Shell) promptRequired(label string) (string, bool) {
	for {
		value, ok := s.promptLine(label)
		if !ok {
			return "", false
		}
		if value != "" {
			return value, true
		}
		fmt.Fprintln(s.out, "This field cannot be empty.")
	}
}

// promptInt re-prompts until the answer parses as an integer.
func (s *Shell) promptInt(label string) (int, bool) {
	for {
		value, ok := s.promptLine(label)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			fmt.Fprintln(s.out, "Please enter a valid number.")
			continue
		}
		return n, true
	}
}

// promptAmount re-prompts until the answer parses as a positive
// decimal amount.
func (s *Shell) promptAmount(label string) (core.Money, bool) {
	for {
		value, ok := s.promptLine(label)
		if !ok {
			return core.Money{}, false
		}
		amount, err := core.ParseAmount(value)
		if err != nil {
			fmt.Fprintln(s.out, "Please enter a valid positive amount.")
			continue
		}
		return amount, true
	}
}

// promptOptionalAmount treats empty input as "no filter".
func (s *Shell) promptOptionalAmount(label string) (*core.Money, bool) {
	for {
		value, ok := s.promptLine(label)
		if !ok {
			return nil, false
		}
		if value == "" {
			return nil, true
		}
		amount, err := core.ParseAmount(value)
		if err != nil {
			fmt.Fprintln(s.out, "Please enter a valid positive amount.")
			continue
		}
		return &amount, true
	}
}

// promptDate re-prompts until the answer is a valid YYYY-MM-DD date.
// Empty input selects fallback when one is given.
func (s *Shell) promptDate(label string, fallback *core.Date) (core.Date, bool) {
	for {
		value, ok := s.promptLine(label)
		if !ok {
			return core.Date{}, false
		}
		if value == "" && fallback != nil {
			return *fallback, true
		}
		date, err := core.ParseDate(value)
		if err != nil {
			fmt.Fprintln(s.out, "Please enter a valid date (YYYY-MM-DD).")
			continue
		}
		return date, true
	}
}

// promptOptionalDate treats empty input as "no filter".
func (s *Shell) promptOptionalDate(label string) (*core.Date, bool) {
	for {
		value, ok := s.promptLine(label)
		if !ok {
			return nil, false
		}
		if value == "" {
			return nil, true
		}
		date, err := core.ParseDate(value)
		if err != nil {
			fmt.Fprintln(s.out, "Please enter a valid date (YYYY-MM-DD).")
			continue
		}
		return &date, true
	}
}

// titleCase upper-cases the first letter only, for menu headings.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
