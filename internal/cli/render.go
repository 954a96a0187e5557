package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/BuzzLyutic/taskflow/internal/board"
	"github.com/BuzzLyutic/taskflow/internal/dispatch"
	"github.com/BuzzLyutic/taskflow/internal/model"
	"github.com/BuzzLyutic/taskflow/internal/notify"
)

// await waits for fut, then prints whatever the board queued for the user.
// An auth failure always wins over the call's own error.
func await[T any](ctx context.Context, a *app, fut *dispatch.Future[T]) (T, error) {
	v, err := fut.Await(ctx)
	shown := a.flush()
	if a.expired.Load() {
		return v, ErrSessionExpired
	}
	if err != nil && shown {
		return v, &reportedError{err: err}
	}
	return v, err
}

// flush prints and clears pending notifications. It reports whether an
// error notification was among them.
func (a *app) flush() bool {
	var hadError bool
	for _, n := range a.toasts.Drain() {
		switch n.Level {
		case notify.LevelError:
			hadError = true
			fmt.Fprintln(a.errOut, text.FgHiRed.Sprintf("❌ %s", n.Message))
		default:
			fmt.Fprintln(a.out, text.FgHiGreen.Sprintf("✅ %s", n.Message))
		}
	}
	return hadError
}

func priorityColored(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return text.FgHiRed.Sprintf("%s", p)
	case model.PriorityMedium:
		return text.FgHiYellow.Sprintf("%s", p)
	case model.PriorityLow:
		return text.FgHiGreen.Sprintf("%s", p)
	}
	return string(p)
}

func statusColored(st model.Status) string {
	switch st {
	case model.StatusToDo:
		return text.FgHiRed.Sprintf("%s", st)
	case model.StatusInProgress:
		return text.FgHiYellow.Sprintf("%s", st)
	case model.StatusDone:
		return text.FgHiGreen.Sprintf("%s", st)
	}
	return string(st)
}

// renderBoard draws the three columns side by side, one task per row. The
// number in front of each task is its index for `taskflow move`.
func renderBoard(w io.Writer, p board.Projection) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleDouble)
	t.Style().Options.SeparateRows = true
	t.Style().Format.Header = text.FormatDefault

	counts := p.Counts()
	header := table.Row{}
	rows := 0
	for _, c := range board.Columns {
		header = append(header, text.FgGreen.Sprintf("%s (%d)", c.Title, counts[c.ID]))
		if n := len(p.Tasks(c.ID)); n > rows {
			rows = n
		}
	}
	t.AppendHeader(header)

	for i := 0; i < rows; i++ {
		row := table.Row{}
		for _, c := range board.Columns {
			tasks := p.Tasks(c.ID)
			if i >= len(tasks) {
				row = append(row, "")
				continue
			}
			tk := tasks[i]
			row = append(row, fmt.Sprintf("%d. %s\n%s · due %s\n%s", i, tk.Title, priorityColored(tk.Priority), tk.DueLabel(), text.Faint.Sprint(tk.ID)))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderTask(w io.Writer, tk model.Task) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{text.FgGreen.Sprint("ID"), tk.ID},
		{text.FgGreen.Sprint("Title"), text.Bold.Sprint(tk.Title)},
		{text.FgGreen.Sprint("Description"), tk.Description},
		{text.FgGreen.Sprint("Status"), statusColored(tk.Status)},
		{text.FgGreen.Sprint("Priority"), priorityColored(tk.Priority)},
		{text.FgGreen.Sprint("Due"), tk.DueLabel()},
	})
	t.Render()
}
