package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/restoctl/iiko"
)

var (
	eventsFrom    string
	eventsTo      string
	eventTypes    []string
	eventOrderNum []string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Read the server event journal",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events by time window, revision or type",
	RunE:  runEventsList,
}

var eventsMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "List event groups and types",
	RunE:  runEventsMetadata,
}

var eventsSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List cash register shifts",
	RunE:  runEventsSessions,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsListCmd, eventsMetadataCmd, eventsSessionsCmd)

	for _, c := range []*cobra.Command{eventsListCmd, eventsSessionsCmd} {
		c.Flags().StringVar(&eventsFrom, "from", "", "start of the window (YYYY-MM-DD or RFC3339)")
		c.Flags().StringVar(&eventsTo, "to", "", "end of the window (YYYY-MM-DD or RFC3339)")
	}
	eventsListCmd.Flags().Int64Var(&revisionFrom, "revision", -1, "only events after this revision")
	eventsListCmd.Flags().StringSliceVar(&eventTypes, "type", nil, "event types to fetch (switches to the filter endpoint)")
	eventsListCmd.Flags().StringSliceVar(&eventOrderNum, "order", nil, "order numbers, used with --type")
	eventsMetadataCmd.Flags().StringSliceVar(&eventTypes, "type", nil, "only these event types")
}

// parseTimeFlag accepts a date, an RFC3339 timestamp or the events API layout
func parseTimeFlag(value string) (*time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, iiko.EventTimeLayout} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised time %q", value)
}

func timeWindow() (from, to *time.Time, err error) {
	if eventsFrom != "" {
		if from, err = parseTimeFlag(eventsFrom); err != nil {
			return nil, nil, fmt.Errorf("invalid --from: %w", err)
		}
	}
	if eventsTo != "" {
		if to, err = parseTimeFlag(eventsTo); err != nil {
			return nil, nil, fmt.Errorf("invalid --to: %w", err)
		}
	}
	return from, to, nil
}

func runEventsList(cmd *cobra.Command, args []string) error {
	var (
		list *iiko.EventsList
		err  error
	)

	if len(eventTypes) > 0 {
		list, err = client.GetEventsByFilter(cmd.Context(), eventTypes, eventOrderNum)
	} else {
		from, to, werr := timeWindow()
		if werr != nil {
			return werr
		}
		list, err = client.GetEvents(cmd.Context(), iiko.EventsQuery{From: from, To: to, FromRevision: revisionFlag(cmd)})
	}
	if err != nil {
		return fmt.Errorf("failed to get events: %w", err)
	}

	if list.Revision != nil {
		logger.Debug().Int64("revision", *list.Revision).Msg("Events revision")
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, list, func() table {
		t := table{header: []string{"date", "type", "attributes"}}
		for _, e := range list.Events {
			attrs := make([]string, 0, len(e.Attributes))
			for _, a := range e.Attributes {
				attrs = append(attrs, a.Name+"="+a.Value)
			}
			t.rows = append(t.rows, []string{orDash(e.Date), e.Type, strings.Join(attrs, " ")})
		}
		return t
	})
}

func runEventsMetadata(cmd *cobra.Command, args []string) error {
	var (
		groups []iiko.EventGroup
		err    error
	)
	if len(eventTypes) > 0 {
		groups, err = client.GetEventMetadataByFilter(cmd.Context(), eventTypes)
	} else {
		groups, err = client.GetEventMetadata(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("failed to get event metadata: %w", err)
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, groups, func() table {
		t := table{header: []string{"group", "type", "severity"}}
		for _, g := range groups {
			for _, et := range g.Types {
				t.rows = append(t.rows, []string{g.Name, et.Name, orDash(et.Severity)})
			}
		}
		return t
	})
}

func runEventsSessions(cmd *cobra.Command, args []string) error {
	from, to, err := timeWindow()
	if err != nil {
		return err
	}

	sessions, err := client.GetCashSessions(cmd.Context(), from, to)
	if err != nil {
		return fmt.Errorf("failed to get cash sessions: %w", err)
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, sessions, func() table {
		t := table{header: []string{"number", "register", "opened", "closed", "manager"}}
		for _, s := range sessions {
			t.rows = append(t.rows, []string{
				orDash(s.SessionNumber), orDash(s.CashRegisterNumber), orDash(s.OpenTime), orDash(s.CloseTime), orDash(s.Manager),
			})
		}
		return t
	})
}
