package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/plumehq/plume/internal/app"
	"github.com/plumehq/plume/internal/config"
	"github.com/plumehq/plume/internal/log"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	Long: `Sign in against the configured backend without opening the full
interface. The session is persisted, so a later plume run starts signed in.

The password is read from the terminal and never echoed.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runLogin(cmd.Context())
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := log.New(log.Config{Level: cfg.SlogLevel(), JSON: cfg.LogJSON})

	runtime, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize runtime: %w", err)
	}
	defer func() {
		_ = runtime.Shutdown(context.WithoutCancel(ctx))
	}()

	email := strings.TrimSpace(loginEmail)
	if email == "" {
		fmt.Print("Email: ")
		line, readErr := bufio.NewReader(os.Stdin).ReadString('\n')
		if readErr != nil {
			return fmt.Errorf("reading email: %w", readErr)
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	user, err := runtime.Sessions.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s (%s)\n", user.Email, user.Role)
	return nil
}
