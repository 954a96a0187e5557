package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/taskflow/internal/board"
	"github.com/BuzzLyutic/taskflow/internal/gateway"
	"github.com/BuzzLyutic/taskflow/internal/model"
)

// outside is the destination argument of `move` that drops a task off the
// board.
const outside = "-"

// load fetches the task list into the board before a command works on it.
func (a *app) load(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	_, err := await(ctx, a, a.board.Load(ctx))
	if errors.Is(err, ErrSessionExpired) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to load tasks: %s", gateway.Message(err))
	}
	return nil
}

// latest returns the stored copy of t, or t itself when the board no longer
// holds it.
func (a *app) latest(t model.Task) model.Task {
	if stored, ok := a.board.Task(t.ID); ok {
		return stored
	}
	return t
}

func newBoardCmd(a *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "board",
		Aliases: []string{"ls", "list"},
		Short:   "Show the board",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			p := a.board.Board(search)
			if p.Len() == 0 && search != "" {
				fmt.Fprintf(a.out, "No tasks match %q.\n", search)
			}
			renderBoard(a.out, p)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only show tasks whose title or description contains this text")
	return cmd
}

// taskFlags are the editable fields shared by add and edit.
type taskFlags struct {
	title       string
	description string
	status      string
	priority    string
	due         string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&f.status, "status", "", `status: "To Do", "In Progress" or "Done"`)
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "priority: Low, Medium or High")
	cmd.Flags().StringVar(&f.due, "due", "", `due date as YYYY-MM-DD, "none" to clear`)
}

// apply copies every flag the user actually set onto t.
func (f *taskFlags) apply(cmd *cobra.Command, t *model.Task) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		t.Title = f.title
	}
	if changed("description") {
		t.Description = f.description
	}
	if changed("status") {
		st, err := model.ParseStatus(f.status)
		if err != nil {
			return fmt.Errorf("invalid status %q: %w", f.status, err)
		}
		t.Status = st
	}
	if changed("priority") {
		p, err := model.ParsePriority(f.priority)
		if err != nil {
			return fmt.Errorf("invalid priority %q: %w", f.priority, err)
		}
		t.Priority = p
	}
	if changed("due") {
		if f.due == "" || strings.EqualFold(f.due, "none") {
			t.DueDate = nil
		} else {
			d, err := model.ParseDate(f.due)
			if err != nil {
				return fmt.Errorf("invalid due date %q: %w", f.due, err)
			}
			t.DueDate = &d
		}
	}
	return nil
}

func newAddCmd(a *app) *cobra.Command {
	f := &taskFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task (defaults to a new To Do task due today)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			t := model.DefaultDraft(time.Now()).Task("")
			if err := f.apply(cmd, &t); err != nil {
				return err
			}
			fut, err := a.board.AddTask(cmd.Context(), t.Draft())
			if err != nil {
				return err
			}
			created, err := await(cmd.Context(), a, fut)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", created.ID, created.Title)
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			t, ok := a.board.Task(args[0])
			if !ok {
				return fmt.Errorf("task %s not found", args[0])
			}
			renderTask(a.out, t)
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	f := &taskFlags{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			t, ok := a.board.Task(args[0])
			if !ok {
				return fmt.Errorf("task %s not found", args[0])
			}
			if err := f.apply(cmd, &t); err != nil {
				return err
			}

			fut, err := a.board.EditTask(cmd.Context(), t)
			if err != nil {
				return err
			}
			if _, err := await(cmd.Context(), a, fut); err != nil {
				return err
			}
			renderTask(a.out, a.latest(t))
			return nil
		},
	}

	f.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			id := args[0]

			if !yes {
				fmt.Fprintf(a.out, "Delete task %s? [y/N]: ", id)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(a.out, "Aborted.")
					return nil
				}
			}

			_, err := await(cmd.Context(), a, a.board.DeleteTask(cmd.Context(), id))
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "move <column> <index> <dest-column>",
		Short: "Move a task to another column",
		Long: `Move picks up the task at <index> of <column> (as numbered by "taskflow board",
with the same --search applied) and drops it on <dest-column>.

Columns are todo, inProgress and done. A destination of "-" drops the task
outside the board, which changes nothing.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := board.ParseColumn(args[0])
			if err != nil {
				return fmt.Errorf("%q: %w", args[0], err)
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
			var dest *board.Location
			if args[2] != outside {
				col, err := board.ParseColumn(args[2])
				if err != nil {
					return fmt.Errorf("%q: %w", args[2], err)
				}
				dest = &board.Location{Column: col.ID}
			}

			if err := a.load(cmd.Context()); err != nil {
				return err
			}

			drag := a.board.Drag()
			drag.SetSearch(search)
			from := board.Location{Column: src.ID, Index: index}
			drag.OnDragStart(from)

			fut, err := drag.OnDragEnd(cmd.Context(), from, dest)
			if err != nil {
				return err
			}
			if fut == nil {
				fmt.Fprintln(a.out, "Dropped outside the board, nothing changed.")
				return nil
			}
			moved, err := await(cmd.Context(), a, fut)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "✅ Moved %q to %s\n", moved.Title, moved.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "resolve <index> against the filtered board")
	return cmd
}
