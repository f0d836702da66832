package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/shiftboard/internal/tui"
	"github.com/arnavshah/shiftboard/pkg/calendar"
	"github.com/arnavshah/shiftboard/pkg/client"
	"github.com/arnavshah/shiftboard/pkg/controller"
	"github.com/arnavshah/shiftboard/pkg/engine"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var weekFlag string

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive schedule board",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer func() { _ = s.logger.Sync() }()

		sink := tui.NewStatusSink()
		ctrl := controller.New(s.client, s.viewer,
			controller.WithLogger(s.logger.Named("controller")),
			controller.WithStatus(sink.Push))
		if weekFlag != "" {
			w, err := parseWeekFlag(weekFlag)
			if err != nil {
				return err
			}
			ctrl.SelectWeek(w.Start)
		}

		p := tea.NewProgram(tui.New(ctrl, sink), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		_, err = p.Run()
		return err
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Print the week grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		w, err := parseWeekFlag(weekFlag)
		if err != nil {
			return err
		}
		ctrl := s.controller(cmd.ErrOrStderr())
		if err := loadWeek(cmd.Context(), ctrl, w.Start); err != nil {
			return err
		}
		printBoard(cmd.OutOrStdout(), ctrl.Board())
		return nil
	},
}

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "List active staff (managers only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		roster, err := s.client.FetchStaffRoster(cmd.Context())
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.Unauthorized() {
				return fmt.Errorf("listing staff needs a manager account: %s", apiErr.Message)
			}
			return errors.New(client.Message(err, client.MsgLoadStaff))
		}
		t := table.New().Border(lipgloss.NormalBorder()).Headers("ID", "Name", "Role")
		for _, m := range roster.Staff {
			t.Row(strconv.FormatInt(m.ID, 10), m.FullName, m.Role)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var claimCmd = &cobra.Command{
	Use:     "claim DATE SLOT",
	Short:   "Claim an open slot for yourself",
	Example: `  shiftboard claim 2024-06-05 14:00`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutate(cmd, args[0], func(ctrl *controller.Controller) error {
			return ctrl.Claim(cmd.Context(), args[0], args[1])
		})
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign DATE SLOT STAFF_ID|me",
	Short: "Assign a staff member to a slot (managers only)",
	Example: `  shiftboard assign 2024-06-05 14:00 9
  shiftboard assign 2024-06-05 15:00 me`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, slot, who := args[0], args[1], args[2]
		return mutate(cmd, date, func(ctrl *controller.Controller) error {
			if strings.EqualFold(who, "me") {
				return ctrl.AssignMe(cmd.Context(), date, slot)
			}
			ctrl.SetInput(date, slot, who)
			return ctrl.AssignFromInput(cmd.Context(), date, slot)
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove an assignment from the selected week",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid assignment id %q", args[0])
		}
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		w, err := parseWeekFlag(weekFlag)
		if err != nil {
			return err
		}
		ctrl := s.controller(cmd.OutOrStdout())
		if err := loadWeek(cmd.Context(), ctrl, w.Start); err != nil {
			return err
		}
		a, ok := ctrl.Board().Lookup.Find(id)
		if !ok {
			return fmt.Errorf("assignment %d is not on the week of %s", id, w.ISO())
		}
		if err := ctrl.Remove(cmd.Context(), a); err != nil {
			return reportedError{err}
		}
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show hours per staff member for a week",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		w, err := parseWeekFlag(weekFlag)
		if err != nil {
			return err
		}
		ctrl := s.controller(cmd.ErrOrStderr())
		ctrl.SelectWeek(w.Start)
		sum, err := ctrl.Summary(cmd.Context())
		if err != nil {
			return errors.New(client.Message(err, client.MsgLoadSummary))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Week of %s: %d shifts, %d people, fairness %.1f\n",
			sum.StartDate, sum.TotalShifts, sum.TotalPeople, sum.FairnessScore)
		t := table.New().Border(lipgloss.NormalBorder()).Headers("#", "Name", "Hours", "Status")
		for _, row := range sum.Staff {
			t.Row(strconv.Itoa(row.Rank), row.FullName, strconv.FormatFloat(row.TotalHours, 'f', -1, 64), row.Status)
		}
		fmt.Fprintln(out, t.Render())
		return nil
	},
}

// mutate loads the week containing date, then runs fn. Outcomes are printed
// by the controller's status channel.
func mutate(cmd *cobra.Command, date string, fn func(*controller.Controller) error) error {
	day, err := calendar.ParseISODate(date, time.Local)
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	ctrl := s.controller(cmd.OutOrStdout())
	if err := loadWeek(cmd.Context(), ctrl, day); err != nil {
		return err
	}
	if err := fn(ctrl); err != nil {
		if errors.Is(err, engine.ErrPending) {
			return err
		}
		return reportedError{err}
	}
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// printBoard writes the displayed window as one table row per slot.
func printBoard(w io.Writer, b controller.Board) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Shift schedule %s to %s", b.RangeStart(), b.RangeEnd())))

	headers := []string{"Slot"}
	for _, d := range b.Days {
		headers = append(headers, d.Date.Format("Mon 01/02"))
	}
	t := table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
	for _, slot := range b.Slots {
		row := []string{slot.Label}
		for _, d := range b.Days {
			cell := b.Cell(d.ISO, slot.Key)
			text := cellLines(cell)
			if cell.State == engine.CellViewerAssigned {
				text = mineStyle.Render(text)
			}
			row = append(row, text)
		}
		t.Row(row...)
	}
	fmt.Fprintln(w, t.Render())

	if len(b.Unknown) > 0 {
		fmt.Fprintln(w, headerStyle.Render("Other"))
		for _, a := range b.Unknown {
			fmt.Fprintf(w, "  #%d %s %s %s\n", a.ID, a.ShiftDate, a.ShiftName, a.DisplayName())
		}
	}
}

func cellLines(cell engine.CellView) string {
	if len(cell.Entries) == 0 {
		return "-"
	}
	lines := make([]string, len(cell.Entries))
	for i, e := range cell.Entries {
		lines[i] = "#" + strconv.FormatInt(e.Assignment.ID, 10) + " " + e.Assignment.DisplayName()
	}
	return strings.Join(lines, "\n")
}

func init() {
	for _, c := range []*cobra.Command{boardCmd, weekCmd, removeCmd, summaryCmd} {
		c.Flags().StringVar(&weekFlag, "week", "", "any date (YYYY-MM-DD) in the week to show; defaults to this week")
	}
}
