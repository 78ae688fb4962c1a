package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"syncalendar/internal/auth"
	"syncalendar/internal/calendar"
	"syncalendar/internal/client"
	"syncalendar/internal/config"
	"syncalendar/internal/usecases"
)

func newClient(cmd *cli.Command, log *logrus.Entry) *client.Client {
	root := cmd.Root()

	path := root.String("token-file")
	if path == "" {
		path = client.DefaultTokenPath()
	}
	return client.New(root.String("api"), nil, client.NewFileStore(path), log)
}

func registerCommand(log *logrus.Entry) *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account and log in",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("SYNCALENDAR_PASSWORD")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			user, err := newClient(cmd, log).Register(ctx, auth.Registration{
				Name:     cmd.String("name"),
				Email:    cmd.String("email"),
				Password: cmd.String("password"),
			})
			if err != nil {
				return err
			}
			fmt.Printf("registered %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
}

func loginCommand(log *logrus.Entry) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in with email and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("SYNCALENDAR_PASSWORD")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			user, err := newClient(cmd, log).Login(ctx, cmd.String("email"), cmd.String("password"))
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s\n", user.Name)
			return nil
		},
	}
}

func logoutCommand(log *logrus.Entry) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the saved session",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := newClient(cmd, log).Logout(ctx); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

// parseMonth reads "YYYY-MM". An empty value is the current month.
func parseMonth(value string, now time.Time) (calendar.Month, error) {
	if value == "" {
		m, _ := calendar.Today(func() time.Time { return now })
		return m, nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return calendar.Month{}, fmt.Errorf("month must look like 2024-06: %w", err)
	}
	return calendar.Month{Year: t.Year(), Index: int(t.Month()) - 1}, nil
}

func monthCommand(cfg *config.Config, log *logrus.Entry) *cli.Command {
	return &cli.Command{
		Name:      "month",
		Usage:     "show a month grid",
		ArgsUsage: "[YYYY-MM]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "remote", Usage: "use the grid computed by the server"},
			&cli.StringFlag{Name: "step", Usage: "prev or next"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			loc := cfg.Location(log)
			now := time.Now().In(loc)

			m, err := parseMonth(cmd.Args().First(), now)
			if err != nil {
				return err
			}
			if step := cmd.String("step"); step != "" {
				dir, ok := calendar.ParseDirection(step)
				if !ok {
					return fmt.Errorf("unknown step %q", step)
				}
				m = calendar.Step(m, dir)
			}

			c := newClient(cmd, log)
			if cmd.Bool("remote") {
				view, err := c.Month(ctx, m)
				if err != nil {
					return err
				}
				fmt.Print(renderMonth(view))
				return nil
			}

			raw, err := c.RawEvents(ctx, &m)
			if err != nil {
				return err
			}
			occs, errs := usecases.NormalizeOccurrences(raw, loc)
			for _, e := range errs {
				log.WithError(e).Warn("skipping event")
			}
			fmt.Print(renderMonth(calendar.BuildMonthView(m, occs, loc, now, 0)))
			return nil
		},
	}
}

func eventsCommand(cfg *config.Config, log *logrus.Entry) *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "manage events",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list visible events",
				ArgsUsage: "[YYYY-MM]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					var m *calendar.Month
					if arg := cmd.Args().First(); arg != "" {
						parsed, err := parseMonth(arg, time.Now())
						if err != nil {
							return err
						}
						m = &parsed
					}

					events, err := newClient(cmd, log).Events(ctx, m)
					if err != nil {
						return err
					}

					loc := cfg.Location(log)
					tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tSTART\tTITLE\tLOCATION")
					for _, e := range events {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Start.In(loc).Format("2006-01-02 15:04"), e.Title, e.Location)
					}
					return tw.Flush()
				},
			},
			{
				Name:  "add",
				Usage: "create an event",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "start", Required: true, Usage: "RFC3339, 2006-01-02T15:04 or 2006-01-02"},
					&cli.StringFlag{Name: "end"},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "location"},
					&cli.StringFlag{Name: "color"},
					&cli.StringFlag{Name: "recurrence", Usage: "RRULE, e.g. FREQ=WEEKLY;COUNT=4"},
					&cli.StringSliceFlag{Name: "participant", Usage: "participant user id, repeatable"},
					&cli.BoolFlag{Name: "all-day"},
					&cli.BoolFlag{Name: "private"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					public := !cmd.Bool("private")
					event, err := newClient(cmd, log).CreateEvent(ctx, usecases.EventPayload{
						Title:         cmd.String("title"),
						Description:   cmd.String("description"),
						StartDatetime: cmd.String("start"),
						EndDatetime:   cmd.String("end"),
						Location:      cmd.String("location"),
						Color:         cmd.String("color"),
						IsAllDay:      cmd.Bool("all-day"),
						IsPublic:      &public,
						Participants:  cmd.StringSlice("participant"),
						Recurrence:    cmd.String("recurrence"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("created %s\n", event.ID)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete an event you created",
				ArgsUsage: "ID",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return errors.New("event id is required")
					}
					if err := newClient(cmd, log).DeleteEvent(ctx, id); err != nil {
						return err
					}
					fmt.Println("deleted", id)
					return nil
				},
			},
		},
	}
}

func usersCommand(log *logrus.Entry) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "find other users",
		Commands: []*cli.Command{
			{
				Name:      "search",
				ArgsUsage: "EMAIL",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					users, err := newClient(cmd, log).SearchUsers(ctx, cmd.Args().First())
					if err != nil {
						return err
					}
					for _, u := range users {
						fmt.Printf("%s\t%s\t%s\n", u.ID, u.Email, u.Name)
					}
					return nil
				},
			},
		},
	}
}

func notificationsCommand(log *logrus.Entry) *cli.Command {
	return &cli.Command{
		Name:  "notifications",
		Usage: "show notifications and today's feed",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "read-all", Usage: "mark everything as read afterwards"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c := newClient(cmd, log)

			feed, err := c.Feed(ctx)
			if err != nil {
				return err
			}
			for _, item := range feed {
				fmt.Printf("[%s] %s: %s\n", item.Time, item.Title, item.Message)
			}

			list, err := c.Notifications(ctx)
			if err != nil {
				return err
			}
			if len(list) > 0 {
				fmt.Println()
			}
			for _, n := range list {
				mark := " "
				if !n.IsRead {
					mark = "*"
				}
				fmt.Printf("%s %s  %s\n", mark, n.ScheduledTime.Local().Format("2006-01-02 15:04"), strings.TrimSpace(n.Title+" - "+n.Body))
			}

			if cmd.Bool("read-all") {
				return c.MarkAllRead(ctx)
			}
			return nil
		},
	}
}
