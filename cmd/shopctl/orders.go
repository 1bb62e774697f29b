package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/camera_shop/internal/transport"
)

func checkoutCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart; safe to re-run after a failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			o, err := st.PlaceOrder(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON() {
				return printJSON(cmd.OutOrStdout(), o)
			}
			return printOrder(cmd.OutOrStdout(), o)
		},
	}
}

func ordersCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Your orders",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "mine",
			Short: "List your orders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := app.Store()
				if err != nil {
					return err
				}
				orders, err := st.LoadMyOrders(cmd.Context())
				if err != nil {
					return err
				}
				if app.JSON() {
					return printJSON(cmd.OutOrStdout(), orders)
				}
				return printOrders(cmd.OutOrStdout(), orders)
			},
		},
		&cobra.Command{
			Use:   "get [order-id]",
			Short: "Show one order",
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
				o, err := st.LoadOrder(cmd.Context(), id)
				if err != nil {
					return err
				}
				if app.JSON() {
					return printJSON(cmd.OutOrStdout(), o)
				}
				return printOrder(cmd.OutOrStdout(), o)
			},
		},
		ordersPayCmd(app),
	)
	return cmd
}

func ordersPayCmd(app *cliApp) *cobra.Command {
	var result transport.PayOrderRequest
	cmd := &cobra.Command{
		Use:   "pay [order-id]",
		Short: "Record a payment result for an order",
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
			if result.ID == "" {
				result.ID = uuid.NewString()
			}
			if result.UpdateTime == "" {
				result.UpdateTime = time.Now().UTC().Format(time.RFC3339)
			}
			if result.EmailAddress == "" {
				if info := st.UserInfo(); info != nil {
					result.EmailAddress = info.Email
				}
			}
			o, err := st.PayOrder(cmd.Context(), id, result)
			if err != nil {
				return err
			}
			if o.PaidAt == nil {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Order %s paid\n", o.ID)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Order %s paid at %s\n", o.ID, o.PaidAt.Format(time.RFC1123))
			return err
		},
	}
	cmd.Flags().StringVar(&result.ID, "payment-id", "", "provider payment id")
	cmd.Flags().StringVar(&result.Status, "status", "COMPLETED", "provider status")
	cmd.Flags().StringVar(&result.EmailAddress, "email", "", "payer email")
	return cmd
}
