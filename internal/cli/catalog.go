package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProductsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products [id]",
		Short: "Browse the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("bad product id %q", args[0])
				}
				p, err := app.gw.Product(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Printf("%d  %s  %.2f\n%s\n", p.ID, p.Name, p.Price, p.Description)
				return nil
			}

			products, err := app.gw.Products(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range products {
				fmt.Printf("%6d  %-30s %8.2f\n", p.ID, p.Name, p.Price)
			}
			return nil
		},
	}
}
