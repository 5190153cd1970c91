package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List and manage orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := app.orders.Orders(cmd.Context())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Println("no orders")
				return nil
			}
			for _, o := range orders {
				fmt.Printf("%6d  %-10s %8.2f  %s\n", o.ID, o.Status, o.TotalAmount, o.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	cmd.AddCommand(newOrdersPlaceCmd(), newOrdersShowCmd(), newOrdersCancelCmd())
	return cmd
}

func newOrdersPlaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place",
		Short: "Place an order from the current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := app.orders.PlaceOrder(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("order %d placed, total %.2f\n", o.ID, o.TotalAmount)
			return nil
		},
	}
}

func newOrdersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad order id %q", args[0])
			}
			o, err := app.orders.Order(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("order %d (%s), total %.2f\n", o.ID, o.Status, o.TotalAmount)
			for _, it := range o.Items {
				fmt.Printf("  %-30s x%-3d %8.2f\n", it.Name, it.Quantity, it.UnitPrice*float64(it.Quantity))
			}
			return nil
		},
	}
}

func newOrdersCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad order id %q", args[0])
			}
			if err := app.orders.Cancel(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("order %d cancelled\n", id)
			return nil
		},
	}
}
