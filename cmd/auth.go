package cmd

import (
	"github.com/spf13/cobra"

	"github.com/manav03panchal/tidytodo/internal/errors"
	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/output"
	"github.com/manav03panchal/tidytodo/internal/validate"
)

// Auth command flags.
var (
	authFlagPassword  string
	authFlagEmail     string
	authFlagFirstName string
	authFlagLastName  string
)

// loginCmd represents the login command.
var loginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Log in with a demo or local account",
	Long: `Log in against the remote demo service. When the service rejects the
credentials or cannot be reached, accounts registered on this machine are
tried instead.

The password is read from --password or prompted for.

Examples:
  tidytodo login emilys
  tidytodo login emilys --password emilyspass`,
	Args:        cobra.ExactArgs(1),
	Annotations: sessionAnnotations(),
	RunE:        runLogin,
}

// registerCmd represents the register command.
var registerCmd = &cobra.Command{
	Use:   "register USERNAME",
	Short: "Create a local account and log in",
	Long: `Create an account stored on this machine. Todos of local accounts are
kept in the local store; the remote service never sees them.

Examples:
  tidytodo register sam
  tidytodo register sam --email sam@example.com --first-name Sam`,
	Args:        cobra.ExactArgs(1),
	Annotations: sessionAnnotations(),
	RunE:        runRegister,
}

// logoutCmd represents the logout command.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE:  runLogout,
}

// whoamiCmd represents the whoami command.
var whoamiCmd = &cobra.Command{
	Use:         "whoami",
	Aliases:     []string{"status"},
	Short:       "Show the logged-in user",
	Annotations: map[string]string{annotationSession: "true"},
	RunE:        runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&authFlagPassword, "password", "p", "", "Password (prompted when omitted)")

	registerCmd.Flags().StringVarP(&authFlagPassword, "password", "p", "", "Password (prompted when omitted)")
	registerCmd.Flags().StringVar(&authFlagEmail, "email", "", "Email address")
	registerCmd.Flags().StringVar(&authFlagFirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&authFlagLastName, "last-name", "", "Last name")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func password(cmd *cobra.Command) (string, error) {
	if authFlagPassword != "" {
		return authFlagPassword, nil
	}
	return readPassword(cmd.ErrOrStderr(), "Password: ")
}

func runLogin(cmd *cobra.Command, args []string) error {
	username := args[0]
	if err := validate.Username(username); err != nil {
		return err
	}
	pw, err := password(cmd)
	if err != nil {
		return err
	}

	ok, err := ctx.Auth.Login(ctx.RequestContext(cmd.Context()), username, pw)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrAuthFailed
	}
	return printSession()
}

func runRegister(cmd *cobra.Command, args []string) error {
	data := model.RegisterData{
		Username:  args[0],
		Email:     authFlagEmail,
		FirstName: authFlagFirstName,
		LastName:  authFlagLastName,
	}
	if err := validate.Username(data.Username); err != nil {
		return err
	}
	if err := validate.Email(data.Email); err != nil {
		return err
	}
	pw, err := password(cmd)
	if err != nil {
		return err
	}
	data.Password = pw

	ok, err := ctx.Auth.Register(ctx.RequestContext(cmd.Context()), data)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewUserError("Could not create the account", "")
	}
	return printSession()
}

func runLogout(cmd *cobra.Command, args []string) error {
	user := ctx.Session.Current()
	if err := ctx.Auth.Logout(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewSessionResponse(ctx.SessionInfo()))
	}
	if user == nil {
		ctx.CLIFormatter().Muted("Not logged in.")
		return nil
	}
	ctx.CLIFormatter().Success("Logged out " + user.Username)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	if _, err := ctx.RequireSession(); err != nil && !errors.Is(err, errors.ErrNotLoggedIn) {
		return err
	}
	return printSession()
}

func printSession() error {
	info := ctx.SessionInfo()
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewSessionResponse(info))
	}
	ctx.CLIFormatter().PrintSession(info)
	return nil
}
