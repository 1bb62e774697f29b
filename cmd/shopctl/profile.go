package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/camera_shop/internal/transport"
)

func profileCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Your account",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show your account details",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := app.Store()
				if err != nil {
					return err
				}
				u, err := st.LoadProfile(cmd.Context())
				if err != nil {
					return err
				}
				if app.JSON() {
					return printJSON(cmd.OutOrStdout(), u)
				}
				return printUser(cmd.OutOrStdout(), u)
			},
		},
		profileUpdateCmd(app),
	)
	return cmd
}

func profileUpdateCmd(app *cliApp) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your name, email or password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req transport.UpdateProfileRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("email") {
				req.Email = &email
			}
			if cmd.Flags().Changed("password") {
				if password == "" {
					pw, err := prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), "New password: ")
					if err != nil {
						return err
					}
					password = pw
				}
				req.Password = &password
			}
			if req.Name == nil && req.Email == nil && req.Password == nil {
				return fmt.Errorf("nothing to update: pass --name, --email or --password")
			}
			st, err := app.Store()
			if err != nil {
				return err
			}
			res, err := st.UpdateProfile(cmd.Context(), req)
			if err != nil {
				return err
			}
			if app.JSON() {
				return printJSON(cmd.OutOrStdout(), res)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s <%s>\n", res.Name, res.Email)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password (pass an empty value to be prompted)")
	return cmd
}
