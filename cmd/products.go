package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/restoctl/iiko"
)

var (
	includeDeleted bool
	productTypes   []string
	productNums    []string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Work with the nomenclature",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE:  runProductsList,
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd)

	productsListCmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "include deleted products")
	productsListCmd.Flags().StringSliceVar(&productTypes, "type", nil, "product types (GOODS, DISH, PREPARED, SERVICE, MODIFIER, OUTER, RATE)")
	productsListCmd.Flags().StringSliceVar(&productNums, "num", nil, "product article numbers")
	addFilterFlags(productsListCmd)
}

func runProductsList(cmd *cobra.Command, args []string) error {
	query := iiko.ProductQuery{
		IncludeDeleted: iiko.Bool(includeDeleted),
		Nums:           productNums,
	}
	for _, t := range productTypes {
		query.Types = append(query.Types, iiko.ProductType(strings.ToUpper(t)))
	}

	products, err := client.ListProducts(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	products, err = applyFilter(products)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, products, func() table {
		t := table{header: []string{"num", "name", "type", "price", "deleted"}}
		for _, p := range products {
			price := "-"
			if p.DefaultSalePrice != nil {
				price = strconv.FormatFloat(*p.DefaultSalePrice, 'f', 2, 64)
			}
			t.rows = append(t.rows, []string{orDash(p.Num), p.Name, string(p.Type), price, yesNo(p.Deleted)})
		}
		return t
	})
}
