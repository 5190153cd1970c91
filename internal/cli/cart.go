package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/qoo-shop/shopclient/internal/cart"
)

func newCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}
	cmd.AddCommand(
		newCartListCmd(),
		newCartAddCmd(),
		newCartSetCmd(),
		newCartRemoveCmd(),
		newCartClearCmd(),
	)
	return cmd
}

// reportFallback turns a fallback result into a warning: the cart is already
// repaired locally, the caller only needs to know the server missed it.
func reportFallback(err error) error {
	var fb *cart.FallbackError
	if errors.As(err, &fb) {
		fmt.Printf("warning: shop unreachable, change saved locally (%v)\n", fb.Err)
		return nil
	}
	return err
}

func printCart() {
	lines := app.cart.Lines()
	if len(lines) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, l := range lines {
		fmt.Printf("%8d  %-30s x%-3d %8.2f\n", l.LineID, l.Name, l.Quantity, l.UnitPrice*float64(l.Quantity))
	}
	fmt.Printf("total: %d items, %.2f\n", app.cart.TotalItems(), app.cart.TotalAmount())
}

func newCartListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Fetch and print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.cart.Fetch(cmd.Context()); err != nil {
				return err
			}
			printCart()
			return nil
		},
	}
}

func newCartAddCmd() *cobra.Command {
	var qty int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bad product id %q", args[0])
			}
			product, err := app.gw.Product(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := reportFallback(app.cart.AddItem(cmd.Context(), *product, qty)); err != nil {
				return err
			}
			printCart()
			return nil
		},
	}

	cmd.Flags().IntVar(&qty, "qty", 1, "quantity to add")
	return cmd
}

func newCartSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <line-id> <quantity>",
		Short: "Set a line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lineID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad line id %q", args[0])
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("bad quantity %q", args[1])
			}
			if err := reportFallback(app.cart.SetQuantity(cmd.Context(), lineID, qty)); err != nil {
				return err
			}
			printCart()
			return nil
		},
	}
}

func newCartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <line-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lineID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("bad line id %q", args[0])
			}
			if err := reportFallback(app.cart.RemoveItem(cmd.Context(), lineID)); err != nil {
				return err
			}
			printCart()
			return nil
		},
	}
}

func newCartClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := reportFallback(app.cart.Clear(cmd.Context())); err != nil {
				return err
			}
			fmt.Println("cart cleared")
			return nil
		},
	}
}
