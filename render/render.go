// Package render draws book results on a terminal. It holds no business
// logic: every view consumes structured results and writes styled lines to
// an io.Writer, so machine frontends can skip it entirely.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zcong1993/taskbook/book"
	"github.com/zcong1993/taskbook/item"
	"github.com/zcong1993/taskbook/query"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	starStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	highStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Underline(true)
	mediumStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Underline(true)
)

const (
	glyphPending  = "☐"
	glyphDone     = "✔"
	glyphProgress = "…"
	glyphNote     = "●"
	glyphStar     = "★"
	glyphFailure  = "✖"
)

// Options mirror the display_* config switches.
type Options struct {
	DisplayCompleteTasks    bool
	DisplayProgressOverview bool
}

// Renderer writes the board, timeline and stats views.
type Renderer struct {
	out  io.Writer
	opts Options
}

func New(out io.Writer, opts Options) *Renderer {
	return &Renderer{out: out, opts: opts}
}

// Groups renders one heading per group followed by its items. The board and
// timeline views share this shape; only the labels differ. Hidden complete
// tasks still count toward the [done/total] heading.
func (r *Renderer) Groups(g query.Grouping) {
	if len(g) == 0 {
		return
	}
	width := idWidth(g)
	for _, grp := range g {
		done, total := taskCounts(grp.Items)
		fmt.Fprintf(r.out, "\n  %s %s\n",
			titleStyle.Render(grp.Label),
			mutedStyle.Render(fmt.Sprintf("[%d/%d]", done, total)))
		for _, it := range grp.Items {
			if t, ok := it.(*item.Task); ok && t.Complete && !r.opts.DisplayCompleteTasks {
				continue
			}
			id := mutedStyle.Render(fmt.Sprintf("%*d.", width, it.Common().ID))
			fmt.Fprintf(r.out, "    %s %s\n", id, itemLine(it))
		}
	}
	fmt.Fprintln(r.out)
}

// Overview appends the short stats footer shown under a board view. It
// renders nothing when the progress overview is switched off.
func (r *Renderer) Overview(st book.Stats) {
	if !r.opts.DisplayProgressOverview {
		return
	}
	r.percentLine(st)
	r.countsLine(st)
}

// Stats renders the standalone stats view with a progress bar.
func (r *Renderer) Stats(st book.Stats) {
	r.percentLine(st)
	fmt.Fprintf(r.out, "  %s\n", mutedStyle.Render(progressBar(st.Complete, st.Total(), 28)))
	r.countsLine(st)
}

func (r *Renderer) percentLine(st book.Stats) {
	fmt.Fprintf(r.out, "\n  %s %s\n",
		titleStyle.Render(fmt.Sprintf("%d%%", st.Percent)),
		mutedStyle.Render("of all tasks complete."))
}

func (r *Renderer) countsLine(st book.Stats) {
	parts := []string{
		successStyle.Render(strconv.Itoa(st.Complete)) + mutedStyle.Render(" done"),
		accentStyle.Render(strconv.Itoa(st.InProgress)) + mutedStyle.Render(" in-progress"),
		pendingStyle.Render(strconv.Itoa(st.Pending)) + mutedStyle.Render(" pending"),
		accentStyle.Render(strconv.Itoa(st.Notes)) + mutedStyle.Render(noteLabel(st.Notes)),
	}
	fmt.Fprintf(r.out, "  %s\n\n", strings.Join(parts, mutedStyle.Render(" · ")))
}

// Success prints a confirmation line for a completed command.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render(glyphDone+" "+fmt.Sprintf(format, args...)))
}

// Fail prints an error line, normally on stderr.
func Fail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, errorStyle.Render(glyphFailure+" "+fmt.Sprintf(format, args...)))
}

// IDList formats ids for confirmation messages: "1, 2, 5".
func IDList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

func itemLine(it item.Item) string {
	var b strings.Builder
	switch v := it.(type) {
	case *item.Task:
		switch {
		case v.Complete:
			b.WriteString(successStyle.Render(glyphDone))
			b.WriteString(" ")
			b.WriteString(doneStyle.Render(v.Description))
		case v.InProgress:
			b.WriteString(accentStyle.Render(glyphProgress))
			b.WriteString(" ")
			b.WriteString(v.Description)
		default:
			b.WriteString(pendingStyle.Render(glyphPending))
			b.WriteString(" ")
			b.WriteString(pendingDescription(v))
		}
	default:
		b.WriteString(accentStyle.Render(glyphNote))
		b.WriteString(" ")
		b.WriteString(it.Common().Description)
	}
	if it.Common().Starred {
		b.WriteString(" ")
		b.WriteString(starStyle.Render(glyphStar))
	}
	return b.String()
}

// pendingDescription marks urgency: "(!)" for medium, "(!!)" for high,
// underlined and colored.
func pendingDescription(t *item.Task) string {
	switch t.Priority {
	case item.PriorityHigh:
		return highStyle.Render(t.Description + " (!!)")
	case item.PriorityMedium:
		return mediumStyle.Render(t.Description + " (!)")
	}
	return t.Description
}

func taskCounts(items []item.Item) (done, total int) {
	for _, it := range items {
		if t, ok := it.(*item.Task); ok {
			total++
			if t.Complete {
				done++
			}
		}
	}
	return done, total
}

func idWidth(g query.Grouping) int {
	width := 1
	for _, grp := range g {
		for _, it := range grp.Items {
			if n := len(strconv.Itoa(it.Common().ID)); n > width {
				width = n
			}
		}
	}
	return width
}

func progressBar(done, total, width int) string {
	if width <= 0 {
		width = 28
	}
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}

func noteLabel(n int) string {
	if n == 1 {
		return " note"
	}
	return " notes"
}
