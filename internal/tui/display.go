package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuimath/internal/arith"
	"github.com/verte-zerg/tuimath/internal/scoring"
	"github.com/verte-zerg/tuimath/internal/session"
)

const (
	markCorrect   = "✓"
	markIncorrect = "✗"
)

// NoticeText formats a round notice as a mark and a message.
func NoticeText(n session.Notice) (mark, message string) {
	switch n.Verdict {
	case scoring.VerdictCorrect:
		message = fmt.Sprintf("  Correct! %+8d×%02d = %+10d!", n.Multiplier.Points, n.Combo, n.Delta)
		if n.Multiplier.TimedOut {
			message += " (timeout)"
		}
		return markCorrect, message
	case scoring.VerdictIncorrect:
		message = fmt.Sprintf("Incorrect! %+8d^W %d. ×%02d", n.Delta, n.Expected, n.Combo)
		if n.NotANumber {
			message = fmt.Sprintf("Not a number: %q. %s", n.Answer, message)
		}
		return markIncorrect, message
	default:
		return "", ""
	}
}

type palette struct {
	correct   lipgloss.Style
	incorrect lipgloss.Style
	score     lipgloss.Style
	problem   lipgloss.Style
	muted     lipgloss.Style
}

func newPalette(r *lipgloss.Renderer) palette {
	return palette{
		correct:   r.NewStyle().Foreground(lipgloss.Color("#52C41A")),
		incorrect: r.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
		score:     r.NewStyle().Bold(true),
		problem:   r.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
		muted:     r.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
	}
}

func (p palette) mark(mark string) string {
	if mark == markCorrect {
		return p.correct.Render(mark)
	}
	return p.incorrect.Render(mark)
}

// Display writes problems and notices line by line. Styling is dropped when
// the writer is not a color terminal.
type Display struct {
	w      io.Writer
	styles palette
}

// NewDisplay builds a display bound to w.
func NewDisplay(w io.Writer) *Display {
	return &Display{w: w, styles: newPalette(lipgloss.NewRenderer(w))}
}

// Prompt implements session.Display.
func (d *Display) Prompt(attempt int, p arith.Problem) error {
	_, err := fmt.Fprintf(d.w, "%s %s = ", d.styles.muted.Render(fmt.Sprintf("%2d.", attempt)), d.styles.problem.Render(p.String()))
	return err
}

// Notice implements session.Display.
func (d *Display) Notice(n session.Notice) error {
	mark, message := NoticeText(n)
	if mark == "" {
		return nil
	}
	_, err := fmt.Fprintf(d.w, "%s %-40s %s\n", d.styles.mark(mark), message, d.styles.score.Render(fmt.Sprintf("%8d", n.Score)))
	return err
}

// Info writes a muted informational line.
func (d *Display) Info(format string, args ...any) error {
	_, err := fmt.Fprintln(d.w, d.styles.muted.Render(fmt.Sprintf(format, args...)))
	return err
}
