package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/transport"
)

func adminCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Back-office commands (admin accounts only)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "orders",
			Short: "List every order",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := app.Store()
				if err != nil {
					return err
				}
				orders, err := st.AllOrders(cmd.Context())
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
			Use:   "deliver [order-id]",
			Short: "Mark an order delivered",
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
				o, err := st.DeliverOrder(cmd.Context(), id)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Order %s delivered\n", o.ID)
				return err
			},
		},
		adminUsersCmd(app),
		adminProductsCmd(app),
	)
	return cmd
}

func adminUsersCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List every user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := app.Store()
				if err != nil {
					return err
				}
				users, err := st.LoadUsers(cmd.Context())
				if err != nil {
					return err
				}
				if app.JSON() {
					return printJSON(cmd.OutOrStdout(), users)
				}
				return printUsers(cmd.OutOrStdout(), users)
			},
		},
		adminUsersUpdateCmd(app),
		&cobra.Command{
			Use:   "delete [user-id]",
			Short: "Delete a user account",
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
				if err := st.DeleteUser(cmd.Context(), id); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "User %s removed\n", id)
				return err
			},
		},
	)
	return cmd
}

func adminUsersUpdateCmd(app *cliApp) *cobra.Command {
	var name, email, role string
	cmd := &cobra.Command{
		Use:   "update [user-id]",
		Short: "Change a user's name, email or role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			var req transport.AdminUpdateUserRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("email") {
				req.Email = &email
			}
			if flags.Changed("role") {
				req.Role = &role
			}
			if req.Name == nil && req.Email == nil && req.Role == nil {
				return fmt.Errorf("nothing to update: pass --name, --email or --role")
			}
			st, err := app.Store()
			if err != nil {
				return err
			}
			u, err := st.UpdateUser(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			if app.JSON() {
				return printJSON(cmd.OutOrStdout(), u)
			}
			return printUser(cmd.OutOrStdout(), u)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", "", "user or admin")
	return cmd
}

func adminProductsCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the catalog",
	}
	cmd.AddCommand(
		adminProductsCreateCmd(app),
		adminProductsUpdateCmd(app),
		&cobra.Command{
			Use:   "delete [product-id]",
			Short: "Remove a product and its reviews",
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
				if err := st.DeleteProduct(cmd.Context(), id); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Product %s removed\n", id)
				return err
			},
		},
	)
	return cmd
}

func adminProductsCreateCmd(app *cliApp) *cobra.Command {
	var (
		req    transport.CreateProductRequest
		price  float64
		images []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Price = &price
			for _, url := range images {
				req.Images = append(req.Images, models.Image{URL: url, Alt: req.Name})
			}
			st, err := app.Store()
			if err != nil {
				return err
			}
			p, err := st.CreateProduct(cmd.Context(), req)
			if err != nil {
				return err
			}
			if app.JSON() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return printProduct(cmd.OutOrStdout(), p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "product name")
	f.Float64Var(&price, "price", 0, "unit price")
	f.StringVar(&req.Description, "description", "", "description")
	f.StringVar(&req.Category, "category", "", "dslr, mirrorless, compact, action or drone")
	f.StringVar(&req.Brand, "brand", "", "sony, canon, nikon, fujifilm, panasonic, olympus, leica or other")
	f.IntVar(&req.Stock, "stock", 0, "units in stock")
	f.StringSliceVar(&req.Features, "feature", nil, "feature line, repeatable")
	f.StringSliceVar(&images, "image", nil, "image URL, repeatable")
	f.BoolVar(&req.IsFeatured, "featured", false, "feature on the home page")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func adminProductsUpdateCmd(app *cliApp) *cobra.Command {
	var (
		name, description, category, brand string
		price                              float64
		stock                              int
		featured                           bool
	)
	cmd := &cobra.Command{
		Use:   "update [product-id]",
		Short: "Change selected fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			var req transport.PatchProductRequest
			f := cmd.Flags()
			if f.Changed("name") {
				req.Name = &name
			}
			if f.Changed("price") {
				req.Price = &price
			}
			if f.Changed("description") {
				req.Description = &description
			}
			if f.Changed("category") {
				req.Category = &category
			}
			if f.Changed("brand") {
				req.Brand = &brand
			}
			if f.Changed("stock") {
				req.Stock = &stock
			}
			if f.Changed("featured") {
				req.IsFeatured = &featured
			}
			if req == (transport.PatchProductRequest{}) {
				return fmt.Errorf("nothing to update")
			}
			st, err := app.Store()
			if err != nil {
				return err
			}
			p, err := st.UpdateProduct(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			if app.JSON() {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return printProduct(cmd.OutOrStdout(), p)
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "product name")
	f.Float64Var(&price, "price", 0, "unit price")
	f.StringVar(&description, "description", "", "description")
	f.StringVar(&category, "category", "", "category")
	f.StringVar(&brand, "brand", "", "brand")
	f.IntVar(&stock, "stock", 0, "units in stock")
	f.BoolVar(&featured, "featured", false, "feature on the home page")
	return cmd
}
