package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"actionTracker/internal/models/actionitem"
	"actionTracker/internal/query"
	"actionTracker/internal/session"
	"actionTracker/internal/workflow"

	"github.com/urfave/cli/v3"
)

// exitToasted ends the command after the failure was already shown as a toast.
var exitToasted = cli.Exit("", 1)

type commands struct {
	flags   *flags
	session *session.Session
}

func (cmd *commands) all() []*cli.Command {
	return []*cli.Command{
		cmd.listCmd(),
		cmd.statsCmd(),
		cmd.createCmd(),
		cmd.editCmd(),
		cmd.statusCmd(),
		cmd.followUpCmd(),
		cmd.deleteCmd(),
	}
}

func (cmd *commands) load(ctx context.Context) error {
	if err := cmd.session.Load(ctx); err != nil {
		return exitToasted
	}
	return nil
}

func (cmd *commands) listCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List action items",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Aliases: []string{"q"}, Usage: "search title, description, people and category"},
			&cli.StringFlag{Name: "status", Usage: "All, Open, In Process, On Hold or Closed", Value: query.All},
			&cli.StringFlag{Name: "priority", Usage: "All, Low, Normal, High or Urgent", Value: query.All},
			&cli.StringFlag{Name: "assignee", Usage: "All, Joey, Lloyd or Jake", Value: query.All},
			&cli.BoolFlag{Name: "show-closed", Usage: "include closed items"},
			&cli.StringFlag{Name: "sort", Usage: "updated_desc, created_desc, due_asc or due_desc", Value: string(query.SortUpdatedDesc)},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			sort, ok := query.ParseSortKey(c.String("sort"))
			if !ok {
				return fmt.Errorf("invalid sort %q", c.String("sort"))
			}
			if err := cmd.load(ctx); err != nil {
				return err
			}

			cmd.session.SetCriteria(query.Criteria{
				Text:       c.String("text"),
				Status:     c.String("status"),
				Priority:   c.String("priority"),
				Assignee:   c.String("assignee"),
				ShowClosed: c.Bool("show-closed"),
				Sort:       sort,
			})
			items, err := cmd.session.View(ctx)
			if err != nil {
				return err
			}

			out := c.Root().Writer
			if len(items) == 0 {
				_, _ = fmt.Fprintln(out, mutedStyle.Render("No action items."))
				return nil
			}
			for _, it := range items {
				_, _ = fmt.Fprintln(out, renderRow(it))
			}
			return nil
		},
	}
}

func (cmd *commands) statsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Count action items by status",
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cmd.load(ctx); err != nil {
				return err
			}
			st, err := cmd.session.Stats(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(c.Root().Writer, renderStats(st))
			return nil
		},
	}
}

func draftFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "title"},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "description"},
		&cli.StringFlag{Name: "category", Usage: "Client Acquisition, Marketing, Setup, IT or Misc."},
		&cli.StringFlag{Name: "priority", Usage: "Low, Normal, High or Urgent"},
		&cli.StringFlag{Name: "status", Usage: "Open, In Process, On Hold or Closed"},
		&cli.StringFlag{Name: "requested-by", Usage: "Joey, Lloyd or Jake"},
		&cli.StringSliceFlag{Name: "assignee", Aliases: []string{"a"}, Usage: "assignee, repeat for several"},
		&cli.StringFlag{Name: "requested-due", Usage: "requested due date YYYY-MM-DD"},
		&cli.StringFlag{Name: "expected-due", Usage: "expected due date YYYY-MM-DD"},
		&cli.BoolFlag{Name: "today", Usage: "set both due dates to today"},
		&cli.BoolFlag{Name: "week", Usage: "set both due dates to a week from today"},
	}
}

// draftInput holds the form fields given on the command line.
type draftInput struct {
	set    map[string]string
	people []string
	today  bool
	week   bool
}

func readDraftInput(c *cli.Command) draftInput {
	in := draftInput{set: map[string]string{}}
	for _, name := range []string{"title", "description", "category", "priority", "status", "requested-by", "requested-due", "expected-due"} {
		if c.IsSet(name) {
			in.set[name] = c.String(name)
		}
	}
	if c.IsSet("assignee") {
		in.people = c.StringSlice("assignee")
	}
	in.today = c.Bool("today")
	in.week = c.Bool("week")
	return in
}

// apply overrides only the fields that were given.
func (in draftInput) apply(d actionitem.Draft, now time.Time) actionitem.Draft {
	if v, ok := in.set["title"]; ok {
		d.Title = v
	}
	if v, ok := in.set["description"]; ok {
		d.Description = v
	}
	if v, ok := in.set["category"]; ok {
		d.Category = actionitem.Category(v)
	}
	if v, ok := in.set["priority"]; ok {
		d.Priority = actionitem.Priority(v)
	}
	if v, ok := in.set["status"]; ok {
		d.Status = actionitem.Status(v)
	}
	if v, ok := in.set["requested-by"]; ok {
		d.RequestedBy = actionitem.Person(v)
	}
	if in.people != nil {
		d.AssignedTo = d.AssignedTo[:0:0]
		for _, p := range in.people {
			d.AssignedTo = append(d.AssignedTo, actionitem.Person(p))
		}
	}
	switch {
	case in.today:
		d = d.Today(now)
	case in.week:
		d = d.InAWeek(now)
	}
	if v, ok := in.set["requested-due"]; ok {
		d.RequestedDueDate = v
	}
	if v, ok := in.set["expected-due"]; ok {
		d.ExpectedDueDate = v
	}
	return d
}

func (cmd *commands) createCmd() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create an action item",
		Flags: draftFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			d := readDraftInput(c).apply(cmd.session.NewDraft(), time.Now())
			it, err := cmd.session.Create(ctx, d)
			if err != nil {
				return exitToasted
			}
			_, _ = fmt.Fprintln(c.Root().Writer, renderRow(it))
			return nil
		},
	}
}

func (cmd *commands) editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit an action item",
		UsageText: "actions edit <id> [flags]",
		Flags:     draftFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := argID(c)
			if err != nil {
				return err
			}
			if err := cmd.load(ctx); err != nil {
				return err
			}

			d, err := cmd.session.EditDraft(ctx, id)
			if err != nil {
				return err
			}
			d = readDraftInput(c).apply(d, time.Now())

			confirm, err := cmd.session.SubmitEdit(ctx, id, d)
			return cmd.settle(ctx, c, id, confirm, err)
		},
	}
}

func (cmd *commands) statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Change the status of an action item",
		UsageText: "actions status <id> <Open|In Process|On Hold|Closed>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() < 2 {
				return fmt.Errorf("usage: actions status <id> <status>")
			}
			id := c.Args().Get(0)
			status := actionitem.Status(c.Args().Get(1))
			if err := cmd.load(ctx); err != nil {
				return err
			}

			confirm, err := cmd.session.RequestStatus(ctx, id, status)
			return cmd.settle(ctx, c, id, confirm, err)
		},
	}
}

func (cmd *commands) followUpCmd() *cli.Command {
	return &cli.Command{
		Name:      "follow-up",
		Usage:     "Send a follow up for an action item",
		UsageText: "actions follow-up <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := argID(c)
			if err != nil {
				return err
			}
			if err := cmd.load(ctx); err != nil {
				return err
			}

			confirm, err := cmd.session.RequestFollowUp(ctx, id)
			return cmd.settle(ctx, c, id, confirm, err)
		},
	}
}

func (cmd *commands) deleteCmd() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete an action item",
		UsageText: "actions delete <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := argID(c)
			if err != nil {
				return err
			}
			if err := cmd.load(ctx); err != nil {
				return err
			}

			confirm, err := cmd.session.RequestDelete(ctx, id)
			return cmd.settle(ctx, c, id, confirm, err)
		},
	}
}

// settle asks for a pending confirmation and prints the resulting record.
func (cmd *commands) settle(ctx context.Context, c *cli.Command, id string, confirm *workflow.Confirmation, err error) error {
	if err != nil {
		return exitToasted
	}
	if confirm != nil {
		ok, err := cmd.confirm(*confirm)
		if err != nil {
			return err
		}
		if !ok {
			cmd.session.Cancel()
			return nil
		}
		if err := cmd.session.Confirm(ctx); err != nil {
			return exitToasted
		}
	}

	it, err := cmd.session.Get(ctx, id)
	if err != nil {
		// запись пропала, пока шёл запрос
		return nil
	}
	_, _ = fmt.Fprintln(c.Root().Writer, renderRow(it))
	return nil
}

func (cmd *commands) confirm(c workflow.Confirmation) (bool, error) {
	if cmd.flags.Yes {
		return true, nil
	}
	ok, err := ask(c)
	if errors.Is(err, errAborted) {
		return false, nil
	}
	return ok, err
}

func argID(c *cli.Command) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("usage: %s <id>", c.FullName())
	}
	return c.Args().Get(0), nil
}
