package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/folioapp/folio/internal/config"
	"github.com/folioapp/folio/internal/service"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the admin account",
		Long:  "Create the single admin account and inspect its state without going through the HTTP API.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminStatusCmd())

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the admin account",
		Long: `Create the admin account. Only one admin can ever exist; once it does this
command fails just like POST /api/auth/setup.`,
		Example: `  folio admin create --username owner --password secret
  folio admin create --username owner  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := promptPassword(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				password = pw
			}
			return runAdminCreate(cmd.Context(), cmd.OutOrStdout(), username, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Admin username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.MarkFlagRequired("username")

	return cmd
}

func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(out)

	fmt.Fprint(out, "Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	fmt.Fprintln(out)

	if string(pwBytes) != string(confirmBytes) {
		return "", errors.New("passwords do not match")
	}
	return string(pwBytes), nil
}

func runAdminCreate(ctx context.Context, out io.Writer, username, password string) error {
	store, err := openStore(loadSettings())
	if err != nil {
		return err
	}
	defer store.Close()

	return createAdmin(ctx, out, store, username, password)
}

// createAdmin goes through the same setup service as the HTTP endpoint so
// validation and the single-admin rule cannot diverge.
func createAdmin(ctx context.Context, out io.Writer, store *config.Store, username, password string) error {
	setup := service.NewSetupService(store, service.NewBcryptHasher(service.DefaultBcryptCost))

	admin, err := setup.CreateInitialAdmin(ctx, username, password)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.Is(err, service.ErrAdminExists):
			return errors.New("an admin account already exists; use the password reset flow to regain access")
		case errors.As(err, &verr):
			return errors.New(verr.Message)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(out, "Created admin %q (id %s)\n", admin.Username, admin.ID)
	return nil
}

// ---------- admin status ----------

func newAdminStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether setup has run and whether a reset is pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(loadSettings())
			if err != nil {
				return err
			}
			defer store.Close()
			return adminStatus(cmd.Context(), cmd.OutOrStdout(), store, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

type adminStatusInfo struct {
	SetupComplete bool       `json:"setup_complete"`
	Username      string     `json:"username,omitempty"`
	ResetPending  bool       `json:"reset_pending"`
	ResetExpires  *time.Time `json:"reset_expires,omitempty"`
}

// adminStatus reports the admin state. The reset code itself is never shown.
func adminStatus(ctx context.Context, out io.Writer, store *config.Store, jsonOutput bool) error {

	var info adminStatusInfo
	admin, err := store.GetAdmin(ctx)
	switch {
	case errors.Is(err, config.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load admin: %w", err)
	default:
		info.SetupComplete = true
		info.Username = admin.Username
		if admin.HasPendingReset() {
			info.ResetPending = true
			info.ResetExpires = admin.ResetOTPExpires
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	if !info.SetupComplete {
		fmt.Fprintln(out, "Setup:  pending (run 'folio admin create' or POST /api/auth/setup)")
		return nil
	}
	fmt.Fprintf(out, "Setup:  complete (admin %q)\n", info.Username)
	if !info.ResetPending {
		fmt.Fprintln(out, "Reset:  none pending")
		return nil
	}
	state := "pending"
	if time.Now().After(*info.ResetExpires) {
		state = "expired"
	}
	fmt.Fprintf(out, "Reset:  %s (expires %s)\n", state, info.ResetExpires.Format(time.RFC3339))
	return nil
}
