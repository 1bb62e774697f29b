package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func productsCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"p"},
		Short:   "Browse the catalog",
	}
	cmd.AddCommand(productsListCmd(app), productsGetCmd(app), productsTopCmd(app), productsSearchCmd(app), productsReviewCmd(app))
	return cmd
}

func productsListCmd(app *cliApp) *cobra.Command {
	var (
		keyword string
		page    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, 12 per page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			res, err := st.LoadProducts(cmd.Context(), keyword, page)
			if err != nil {
				return err
			}
			if app.JSON() {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return printPage(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "filter by name")
	cmd.Flags().IntVarP(&page, "page", "n", 1, "page number")
	return cmd
}

func productsSearchCmd(app *cliApp) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Full-text search over name, description, brand and features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			res, err := st.SearchProducts(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}
			if app.JSON() {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return printPage(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "n", 1, "page number")
	return cmd
}

func productsGetCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "get [product-id]",
		Short: "Show one product with its reviews",
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
			p, err := st.LoadProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			if app.JSON() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return printProduct(cmd.OutOrStdout(), p)
		},
	}
}

func productsTopCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "top",
		Short: "Show the best rated products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			items, err := st.LoadTopProducts(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON() {
				return printJSON(cmd.OutOrStdout(), items)
			}
			return printProducts(cmd.OutOrStdout(), items)
		},
	}
}

func productsReviewCmd(app *cliApp) *cobra.Command {
	var (
		rating  int
		comment string
	)
	cmd := &cobra.Command{
		Use:   "review [product-id]",
		Short: "Review a product (once per user)",
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
			if err := st.Review(cmd.Context(), id, rating, comment); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Review added")
			return err
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 5, "rating from 1 to 5")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "review text")
	_ = cmd.MarkFlagRequired("comment")
	return cmd
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
