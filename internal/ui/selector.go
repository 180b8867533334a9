package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Selector is an arrow-key menu over a short list of choices. When stdin is
// not a terminal it falls back to reading a number or label from a line.
type Selector struct {
	question string
	options  []string
	selected int
	colored  bool

	in  io.Reader
	out io.Writer

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

func NewSelector(question string, options []string, colored bool) *Selector {
	return &Selector{
		question: question,
		options:  options,
		colored:  colored,
		in:       os.Stdin,
		out:      os.Stdout,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// SetIO replaces stdin and stdout. Raw terminal mode is only used with os.Stdin.
func (s *Selector) SetIO(in io.Reader, out io.Writer) {
	s.in = in
	s.out = out
}

// Run returns the index of the chosen option.
func (s *Selector) Run() (int, error) {
	f, ok := s.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return s.runSimple()
	}

	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return s.runSimple()
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Fprint(s.out, "\033[?25h") // Show cursor
	}()

	fmt.Fprint(s.out, "\033[?25l")
	lines := len(s.options) + 2
	s.printMenu()

	reader := bufio.NewReader(f)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return 0, err
		}

		switch b {
		case 13, 10, ' ': // Enter
			s.clearMenu(lines)
			return s.selected, nil
		case 3, 'q': // Ctrl+C
			s.clearMenu(lines)
			return 0, ErrCancelled
		case 'j':
			s.move(1)
		case 'k':
			s.move(-1)
		case 27: // Escape sequence
			if b2, _ := reader.ReadByte(); b2 == '[' {
				switch b3, _ := reader.ReadByte(); b3 {
				case 'A':
					s.move(-1)
				case 'B':
					s.move(1)
				}
			}
		default:
			if idx := int(b - '1'); b >= '1' && b <= '9' && idx < len(s.options) {
				s.clearMenu(lines)
				return idx, nil
			}
		}

		s.clearMenu(lines)
		s.printMenu()
	}
}

func (s *Selector) move(delta int) {
	s.selected = (s.selected + delta + len(s.options)) % len(s.options)
}

func (s *Selector) printMenu() {
	var sb strings.Builder

	render := func(style lipgloss.Style, text string) string {
		if s.colored {
			return style.Render(text)
		}
		return text
	}

	sb.WriteString(render(s.questionStyle, s.question) + "\r\n")
	sb.WriteString(render(s.hintStyle, "[j/k or arrows] move  [enter] select") + "\r\n")

	for i, opt := range s.options {
		if i == s.selected {
			sb.WriteString(render(s.cursorStyle, "> ") + render(s.selectedStyle, opt))
		} else {
			sb.WriteString("  " + render(s.optionStyle, opt))
		}
		sb.WriteString("\r\n")
	}

	fmt.Fprint(s.out, sb.String())
}

func (s *Selector) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Fprint(s.out, "\033[A\033[2K\r")
	}
}

func (s *Selector) runSimple() (int, error) {
	fmt.Fprintln(s.out, s.question)
	for i, opt := range s.options {
		fmt.Fprintf(s.out, "  [%d] %s\n", i+1, opt)
	}
	fmt.Fprint(s.out, "Enter number: ")

	input, err := bufio.NewReader(s.in).ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" && err != nil {
		return 0, ErrCancelled
	}

	for i, opt := range s.options {
		if strings.EqualFold(input, opt) || input == fmt.Sprint(i+1) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid choice %q", input)
}

// Confirm asks a yes/no question; No is preselected.
func Confirm(question string, colored bool, in io.Reader, out io.Writer) (bool, error) {
	s := NewSelector(question, []string{"No", "Yes"}, colored)
	s.SetIO(in, out)
	idx, err := s.Run()
	if err != nil {
		return false, err
	}
	return idx == 1, nil
}
