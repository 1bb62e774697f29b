package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/camera_shop/internal/models"
)

func cartCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the cart and checkout details",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := app.Store()
				if err != nil {
					return err
				}
				if app.JSON() {
					return printJSON(cmd.OutOrStdout(), st.Cart.Items())
				}
				return printCart(cmd.OutOrStdout(), st.Cart)
			},
		},
		cartAddCmd(app),
		&cobra.Command{
			Use:   "remove [product-id]",
			Short: "Remove a product from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseUUID(args[0])
				if err != nil {
					return err
				}
				st, err := app.Store()
				if err != nil {
					return err
				}
				if err := st.Cart.Remove(id); err != nil {
					return err
				}
				return printCart(cmd.OutOrStdout(), st.Cart)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := app.Store()
				if err != nil {
					return err
				}
				return st.Cart.Clear()
			},
		},
		cartShippingCmd(app),
		&cobra.Command{
			Use:   "payment [method]",
			Short: "Set the payment method, e.g. PayPal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := app.Store()
				if err != nil {
					return err
				}
				return st.Cart.SavePaymentMethod(args[0])
			},
		},
	)
	return cmd
}

func cartAddCmd(app *cliApp) *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "add [product-id]",
		Short: "Add a product, replacing its quantity if already in the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			st, err := app.Store()
			if err != nil {
				return err
			}
			item, err := st.AddToCart(cmd.Context(), id, qty)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d x %s in cart\n", item.Qty, item.Name)
			return err
		},
	}
	cmd.Flags().IntVarP(&qty, "qty", "q", 1, "quantity")
	return cmd
}

func cartShippingCmd(app *cliApp) *cobra.Command {
	var addr models.ShippingAddress
	cmd := &cobra.Command{
		Use:   "shipping",
		Short: "Set the shipping address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			return st.Cart.SaveShippingAddress(addr)
		},
	}
	cmd.Flags().StringVar(&addr.Address, "address", "", "street address")
	cmd.Flags().StringVar(&addr.City, "city", "", "city")
	cmd.Flags().StringVar(&addr.PostalCode, "postal-code", "", "postal code")
	cmd.Flags().StringVar(&addr.Country, "country", "", "country")
	for _, f := range []string{"address", "city", "postal-code", "country"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
