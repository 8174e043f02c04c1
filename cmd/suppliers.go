package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/restoctl/iiko"
)

var (
	supplierSearch iiko.SupplierSearch
	priceListDate  string
)

var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "Work with suppliers",
}

var suppliersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all suppliers",
	RunE: func(cmd *cobra.Command, args []string) error {
		suppliers, err := client.ListSuppliers(cmd.Context(), revisionFlag(cmd))
		if err != nil {
			return fmt.Errorf("failed to list suppliers: %w", err)
		}
		return printSuppliers(cmd, suppliers)
	},
}

var suppliersSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search suppliers by name, code, phone, email or taxpayer number",
	RunE: func(cmd *cobra.Command, args []string) error {
		if supplierSearch == (iiko.SupplierSearch{}) {
			return fmt.Errorf("at least one search flag is required")
		}
		suppliers, err := client.SearchSuppliers(cmd.Context(), supplierSearch)
		if err != nil {
			return fmt.Errorf("failed to search suppliers: %w", err)
		}
		return printSuppliers(cmd, suppliers)
	},
}

var priceListCmd = &cobra.Command{
	Use:   "pricelist CODE",
	Short: "Show a supplier's price list",
	Args:  cobra.ExactArgs(1),
	RunE:  runPriceList,
}

func init() {
	rootCmd.AddCommand(suppliersCmd)
	suppliersCmd.AddCommand(suppliersListCmd, suppliersSearchCmd, priceListCmd)

	suppliersListCmd.Flags().Int64Var(&revisionFrom, "revision", -1, "only suppliers changed since this revision")
	addFilterFlags(suppliersListCmd)
	addFilterFlags(suppliersSearchCmd)

	flags := suppliersSearchCmd.Flags()
	flags.StringVar(&supplierSearch.Name, "name", "", "supplier name")
	flags.StringVar(&supplierSearch.Code, "code", "", "supplier code")
	flags.StringVar(&supplierSearch.Phone, "phone", "", "phone number")
	flags.StringVar(&supplierSearch.CellPhone, "cell-phone", "", "cell phone number")
	flags.StringVar(&supplierSearch.Email, "email", "", "email address")
	flags.StringVar(&supplierSearch.CardNumber, "card", "", "card number")
	flags.StringVar(&supplierSearch.TaxpayerIDNumber, "inn", "", "taxpayer id number")

	priceListCmd.Flags().StringVar(&priceListDate, "date", "", "price list valid from this date (YYYY-MM-DD), latest when empty")
}

func printSuppliers(cmd *cobra.Command, suppliers []iiko.Supplier) error {
	suppliers, err := applyFilter(suppliers)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, suppliers, func() table {
		t := table{header: []string{"code", "name", "inn", "phone", "email", "deleted"}}
		for _, s := range suppliers {
			t.rows = append(t.rows, []string{
				orDash(s.Code), s.Name, orDash(s.TaxpayerIDNumber), orDash(s.Phone), orDash(s.Email), yesNo(s.Deleted),
			})
		}
		return t
	})
}

func runPriceList(cmd *cobra.Command, args []string) error {
	var date *time.Time
	if priceListDate != "" {
		d, err := parseTimeFlag(priceListDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		date = d
	}

	items, err := client.GetSupplierPriceList(cmd.Context(), args[0], date)
	if err != nil {
		return fmt.Errorf("failed to get price list: %w", err)
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, items, func() table {
		t := table{header: []string{"product", "supplier product", "cost price"}}
		for _, item := range items {
			t.rows = append(t.rows, []string{
				orDash(item.NativeProductName),
				orDash(item.SupplierProductName),
				strconv.FormatFloat(item.CostPrice, 'f', 2, 64),
			})
		}
		return t
	})
}
