package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
)

func newUserCmd(state *cli) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}
	user.AddCommand(newUserCreateCmd(state), newUserSetRoleCmd(state))
	return user
}

func newUserCreateCmd(state *cli) *cobra.Command {
	var req dto.CreateUserRequest
	var role, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account that can sign in with email and password",
		Example: `  arsipctl user create --email admin@desa.id --password rahasia --role administrator`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Role = models.UserRole(role)
			if firstName != "" {
				req.FirstName = &firstName
			}
			if lastName != "" {
				req.LastName = &lastName
			}

			c, err := state.container(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			created, err := c.Users.Create(cmd.Context(), req, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) uid=%s\n", created.Email, created.Role, created.UID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(models.RoleRegularUser), "administrator, pengelola_arsip or pengguna")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserSetRoleCmd(state *cli) *cobra.Command {
	var uid, role string

	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Change the role of an existing account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := models.UserRole(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}

			c, err := state.container(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			updated, err := c.Users.SetRole(cmd.Context(), uid, r, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.Email, updated.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&uid, "uid", "", "account uid")
	cmd.Flags().StringVar(&role, "role", "", "administrator, pengelola_arsip or pengguna")
	_ = cmd.MarkFlagRequired("uid")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
