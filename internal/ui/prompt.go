package ui

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrCancelled is returned when the user aborts a prompt with Ctrl+C or Ctrl+D.
var ErrCancelled = errors.New("cancelled")

// Prompt reads one line of input with line editing.
func Prompt(label string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              label,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return "", err
	}
	defer rl.Close()

	line, err := rl.Readline()
	if isCancel(err) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isCancel(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt)
}
