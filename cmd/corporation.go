package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/restoctl/iiko"
)

var (
	revisionFrom int64
	searchCode   string
)

var corporationCmd = &cobra.Command{
	Use:   "corporation",
	Short: "Inspect the corporation structure",
}

var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "List departments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCorporateItems(cmd, "departments")
	},
}

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCorporateItems(cmd, "stores")
	},
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List department groups",
	RunE:  runGroups,
}

var terminalsCmd = &cobra.Command{
	Use:   "terminals",
	Short: "List front-office terminals",
	RunE:  runTerminals,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch departments, stores, groups and terminals together",
	RunE:  runSnapshot,
}

func init() {
	rootCmd.AddCommand(corporationCmd)
	corporationCmd.AddCommand(departmentsCmd, storesCmd, groupsCmd, terminalsCmd, snapshotCmd)

	for _, c := range []*cobra.Command{departmentsCmd, storesCmd, groupsCmd, terminalsCmd} {
		c.Flags().Int64Var(&revisionFrom, "revision", -1, "only entities changed since this revision")
		addFilterFlags(c)
	}
	departmentsCmd.Flags().StringVar(&searchCode, "code", "", "look up a single department by code")
	storesCmd.Flags().StringVar(&searchCode, "code", "", "look up a single store by code")
}

// revisionFlag returns nil unless --revision was given
func revisionFlag(cmd *cobra.Command) *int64 {
	if !cmd.Flags().Changed("revision") {
		return nil
	}
	return iiko.Int(revisionFrom)
}

func runCorporateItems(cmd *cobra.Command, kind string) error {
	ctx := cmd.Context()

	var (
		items []iiko.CorporateItem
		err   error
	)
	switch {
	case searchCode != "":
		var item *iiko.CorporateItem
		if kind == "stores" {
			item, err = client.SearchStore(ctx, searchCode)
		} else {
			item, err = client.SearchDepartment(ctx, searchCode)
		}
		if item != nil {
			items = []iiko.CorporateItem{*item}
		}
	case kind == "stores":
		items, err = client.GetStores(ctx, revisionFlag(cmd))
	default:
		items, err = client.GetDepartments(ctx, revisionFlag(cmd))
	}
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", kind, err)
	}

	items, err = applyFilter(items)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, items, func() table {
		return corporateItemsTable(items)
	})
}

func corporateItemsTable(items []iiko.CorporateItem) table {
	t := table{header: []string{"id", "code", "name", "type", "parent"}}
	for _, item := range items {
		parent := "-"
		if item.ParentID != nil {
			parent = item.ParentID.String()
		}
		t.rows = append(t.rows, []string{item.ID.String(), orDash(item.Code), item.Name, string(item.Type), parent})
	}
	return t
}

func runGroups(cmd *cobra.Command, args []string) error {
	groups, err := client.GetGroups(cmd.Context(), revisionFlag(cmd))
	if err != nil {
		return fmt.Errorf("failed to get groups: %w", err)
	}

	groups, err = applyFilter(groups)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, groups, func() table {
		return groupsTable(groups)
	})
}

func groupsTable(groups []iiko.Group) table {
	t := table{header: []string{"id", "name", "service mode", "points of sale"}}
	for _, g := range groups {
		t.rows = append(t.rows, []string{g.ID.String(), g.Name, orDash(g.ServiceMode), strconv.Itoa(len(g.PointsOfSale))})
	}
	return t
}

func runTerminals(cmd *cobra.Command, args []string) error {
	terminals, err := client.GetTerminals(cmd.Context(), revisionFlag(cmd))
	if err != nil {
		return fmt.Errorf("failed to get terminals: %w", err)
	}

	terminals, err = applyFilter(terminals)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, terminals, func() table {
		t := table{header: []string{"id", "name", "computer", "anonymous"}}
		for _, term := range terminals {
			t.rows = append(t.rows, []string{term.ID.String(), term.Name, orDash(term.ComputerName), yesNo(term.Anonymous)})
		}
		return t
	})
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	snapshot, err := client.FetchCorporation(cmd.Context())
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, snapshot, func() table {
		return table{
			header: []string{"entity", "count"},
			rows: [][]string{
				{"departments", strconv.Itoa(len(snapshot.Departments))},
				{"stores", strconv.Itoa(len(snapshot.Stores))},
				{"groups", strconv.Itoa(len(snapshot.Groups))},
				{"terminals", strconv.Itoa(len(snapshot.Terminals))},
			},
		}
	})
}
