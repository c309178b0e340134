package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Gerri254/chainctl/internal/forms"
	"github.com/Gerri254/chainctl/internal/ui"
)

var (
	loginEmail    string
	loginPassword string

	registerRole    string
	registerCompany string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in, sign out, and inspect the current session",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE:  runAuthLogin,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	Long: `Create an account on the platform.

The --role flag picks the SkillChain persona (learner, employer,
educator). ProcureChain roles are assigned by administrators and cannot
be self-registered.`,
	RunE: runAuthRegister,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the persisted session",
	RunE:  runAuthLogout,
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runAuthWhoami,
}

var (
	updateName       string
	updateDepartment string
)

var authUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update your profile",
	RunE:  runAuthUpdate,
}

func init() {
	authLoginCmd.Flags().StringVar(&loginEmail, "email", "", "account email (prompted when omitted)")
	authLoginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	authRegisterCmd.Flags().StringVar(&loginEmail, "email", "", "account email (prompted when omitted)")
	authRegisterCmd.Flags().StringVar(&registerRole, "role", "learner", "account role: learner, employer, or educator")
	authRegisterCmd.Flags().StringVar(&registerCompany, "company", "", "company name (employers)")

	authUpdateCmd.Flags().StringVar(&updateName, "name", "", "full name")
	authUpdateCmd.Flags().StringVar(&updateDepartment, "department", "", "department (government accounts)")

	authCmd.AddCommand(authLoginCmd, authRegisterCmd, authLogoutCmd, authWhoamiCmd, authUpdateCmd)
	rootCmd.AddCommand(authCmd)
}

func promptLine(label string) (string, error) {
	fmt.Printf("%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Printf("%s: ", label)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func printFieldErrors(errs forms.FieldErrors) {
	for field, msg := range errs {
		fmt.Printf("  %s: %s\n", field, msg)
	}
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	email := loginEmail
	if email == "" {
		if email, err = promptLine("Email"); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		if password, err = promptPassword("Password"); err != nil {
			return err
		}
	}

	form := forms.Login{Email: email, Password: password}
	res, fieldErrs, err := form.Submit(ctx, a.client.Auth)
	if !fieldErrs.Valid() {
		printFieldErrors(fieldErrs)
		if err != nil {
			return fmt.Errorf("login failed")
		}
		return fmt.Errorf("login form is incomplete")
	}
	if err != nil {
		a.feed.Failure(err, "Login failed")
		a.printFeed()
		return err
	}

	if err := a.sess.Establish(ctx, res.User, res.AccessToken, res.RefreshToken); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	fmt.Printf("Signed in as %s (%s)\n", res.User.FullName, res.User.EffectiveRole())
	return nil
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	email := loginEmail
	if email == "" {
		if email, err = promptLine("Email"); err != nil {
			return err
		}
	}
	fullName, err := promptLine("Full name")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password")
	if err != nil {
		return err
	}

	form := forms.Registration{
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
		FullName:        fullName,
		Role:            registerRole,
		CompanyName:     registerCompany,
	}
	res, fieldErrs, err := form.Submit(ctx, a.client.Auth)
	if !fieldErrs.Valid() {
		printFieldErrors(fieldErrs)
		if err != nil {
			return fmt.Errorf("registration failed")
		}
		return fmt.Errorf("registration form is incomplete")
	}
	if err != nil {
		a.feed.Failure(err, "Registration failed")
		a.printFeed()
		return err
	}

	if err := a.sess.Establish(ctx, res.User, res.AccessToken, res.RefreshToken); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	fmt.Printf("Account created. Signed in as %s (%s)\n", res.User.FullName, res.User.EffectiveRole())
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.sess.Current().Authenticated() {
		fmt.Println("Not signed in.")
		return nil
	}

	// Best effort: the server records the logout, but local state is
	// cleared regardless.
	if err := a.client.Auth.Logout(ctx); err != nil {
		a.feed.Warning("Server logout failed; clearing local session anyway")
	}
	if err := a.sess.Clear(ctx); err != nil {
		return err
	}
	a.printFeed()
	fmt.Println("Signed out.")
	return nil
}

func runAuthUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.sess.Current()
	if !sess.Authenticated() {
		return fmt.Errorf("not signed in; run \"chainctl auth login\" first")
	}

	name := updateName
	if name == "" {
		name = sess.User.FullName
	}
	form := forms.Profile{FullName: name, Department: updateDepartment}
	user, fieldErrs, err := form.Submit(ctx, a.client.Auth)
	if !fieldErrs.Valid() {
		printFieldErrors(fieldErrs)
		if err != nil {
			return fmt.Errorf("update rejected")
		}
		return fmt.Errorf("profile form is incomplete")
	}
	if err != nil {
		a.feed.Failure(err, "Failed to update profile")
		a.printFeed()
		return err
	}

	// Keep the cached user record in step with the server.
	if err := a.sess.Establish(ctx, *user, sess.AccessToken, sess.RefreshToken); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	fmt.Printf("Profile updated: %s\n", user.FullName)
	return nil
}

func runAuthWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.sess.Current()
	if !sess.Authenticated() {
		fmt.Println("Not signed in.")
		return nil
	}

	// Refresh the cached user record when the server is reachable.
	user := sess.User
	if fresh, err := a.client.Auth.Me(ctx); err == nil {
		user = *fresh
	}

	tbl := ui.NewTable("Session", "FIELD", "VALUE")
	tbl.AddRow("Name", user.FullName)
	tbl.AddRow("Email", user.Email)
	tbl.AddRow("Role", string(user.EffectiveRole()))
	tbl.AddRow("Status", string(user.Status))
	if !sess.ExpiresAt.IsZero() {
		tbl.AddRow("Token expires", sess.ExpiresAt.Local().Format(time.RFC1123))
	}
	fmt.Println(tbl.View())
	return nil
}
