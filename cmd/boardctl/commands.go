package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yurufuwa/board/internal/app"
	"github.com/yurufuwa/board/internal/board"
	"github.com/yurufuwa/board/internal/models"
)

func (c *cli) postCmd() *cobra.Command {
	var nickname, category string
	var lifetime int

	cmd := &cobra.Command{
		Use:   "post [content]",
		Short: "Create a post in the room",
		Example: `  boardctl post --room food --nickname Aki --category food --lifetime 30 "ice cream"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			return c.page(cmd.Context(), func(s *app.Session) error {
				if nickname == "" {
					nickname, _ = s.Board.Preferences().Nickname(cmd.Context())
				}
				p, err := s.Board.Create(cmd.Context(), nickname, content, category, lifetime)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "posted #%d in %s, expires in %s\n", p.ID, board.DisplayName(p.Room), p.Lifetime())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&nickname, "nickname", "n", "", "nickname (default: last used, then board_default_nickname)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category (default: board_default_category)")
	cmd.Flags().IntVarP(&lifetime, "lifetime", "l", 0, "lifetime in seconds (default: board_default_lifetime)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var filter string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the posts a viewer of the room sees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.page(cmd.Context(), func(s *app.Session) error {
				posts := s.Board.View(filter)
				if all {
					posts = s.Board.Posts()
				}
				writePosts(c.out, s, posts)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "category filter")
	cmd.Flags().BoolVar(&all, "all", false, "include posts hidden by the display cap")
	return cmd
}

func (c *cli) reactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "react [id] [like|cheer|join]",
		Short: "Toggle your reaction on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			kind, err := models.ParseReactionKind(args[1])
			if err != nil {
				return err
			}
			return c.page(cmd.Context(), func(s *app.Session) error {
				r, err := s.Board.ToggleReaction(cmd.Context(), id, kind)
				if err != nil {
					return err
				}
				verb := "removed"
				if r.Added {
					verb = "added"
				}
				fmt.Fprintf(c.out, "%s %s on #%d (%d total, %s)\n", verb, kind, id, r.Total, r.Tier)
				return nil
			})
		},
	}
}

func (c *cli) pinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin [id]",
		Short: "Pin or unpin a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.page(cmd.Context(), func(s *app.Session) error {
				p, err := s.Board.TogglePin(cmd.Context(), id)
				if err != nil {
					return err
				}
				if p.IsPinned {
					fmt.Fprintf(c.out, "pinned #%d\n", id)
				} else {
					fmt.Fprintf(c.out, "unpinned #%d\n", id)
				}
				return nil
			})
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove an unpinned post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.page(cmd.Context(), func(s *app.Session) error {
				if s.Board.Remove(cmd.Context(), id) {
					fmt.Fprintf(c.out, "removed #%d\n", id)
				} else {
					fmt.Fprintf(c.out, "nothing removed: #%d is absent or pinned\n", id)
				}
				return nil
			})
		},
	}
}

func (c *cli) notificationsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show reactions received, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.page(cmd.Context(), func(s *app.Session) error {
				entries, err := s.Board.Notifications(cmd.Context(), limit)
				if err != nil {
					return err
				}
				now := s.Board.Now()
				w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "POST\tREACTION\tBY\tCONTENT\tWHEN")
				for _, n := range entries {
					fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\n", n.PostID, n.ReactionType, n.Nickname, n.Content, board.FormatAge(n.CreatedAt, now))
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "entries to show (0 for all)")
	return cmd
}

func (c *cli) roomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List the known rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms := board.Rooms()
			sort.Strings(rooms)
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROOM\tNAME")
			for _, room := range rooms {
				fmt.Fprintf(w, "%s\t%s\n", room, board.DisplayName(room))
			}
			return w.Flush()
		},
	}
}

func (c *cli) watchCmd() *cobra.Command {
	var every, duration time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the room open, printing it as posts expire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if every <= 0 {
				every = 5 * time.Second
			}
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			return c.page(ctx, func(s *app.Session) error {
				s.StartDrift(c.cfg.Board.DriftInterval)
				ticker := time.NewTicker(every)
				defer ticker.Stop()

				writePosts(c.out, s, s.Board.View("all"))
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						fmt.Fprintln(c.out)
						writePosts(c.out, s, s.Board.View("all"))
					}
				}
			})
		},
	}
	cmd.Flags().DurationVar(&every, "every", 5*time.Second, "refresh interval")
	cmd.Flags().DurationVar(&duration, "for", 0, "stop after this long (default: until interrupted)")
	return cmd
}

func writePosts(out io.Writer, s *app.Session, posts []models.Post) {
	now := s.Board.Now()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s (%s)\n", s.Board.RoomName(), s.Board.Room())
	fmt.Fprintln(w, "ID\tBY\tCATEGORY\tCONTENT\tREACTIONS\tLEFT\tAGE")
	for _, p := range posts {
		left := p.Remaining(now).Round(time.Second).String()
		if p.IsPinned {
			left = "pinned"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			p.ID, p.Nickname, p.Category, p.Content, p.TotalReactions(), left, board.FormatAge(p.CreatedAt, now))
	}
	_ = w.Flush()
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", s)
	}
	return id, nil
}
