package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rideshare/internal/auth"
	"github.com/example/rideshare/internal/models"
)

var loginEmail, loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		sess, err := a.auth.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", sess.DisplayName, sess.Role)
		return nil
	},
}

var registerInput auth.RegisterInput
var registerRole string

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a rider or driver account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		registerInput.Role = models.Role(registerRole)
		if registerInput.Role != models.RoleRider && registerInput.Role != models.RoleDriver {
			return fmt.Errorf("--role must be rider or driver")
		}
		sess, err := a.auth.Register(cmd.Context(), registerInput)
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s! Registered as %s.\n", sess.DisplayName, sess.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Destroy the session and clear the persisted token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.auth.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVar(&registerInput.Email, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerInput.Password, "password", "", "account password")
	registerCmd.Flags().StringVar(&registerInput.ConfirmPassword, "confirm-password", "", "repeat the password")
	registerCmd.Flags().StringVar(&registerInput.FirstName, "first-name", "", "first name")
	registerCmd.Flags().StringVar(&registerInput.LastName, "last-name", "", "last name")
	registerCmd.Flags().StringVar(&registerInput.Phone, "phone", "", "phone number (optional)")
	registerCmd.Flags().StringVar(&registerRole, "role", "rider", "account type: rider or driver")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("confirm-password")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
}
