package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbourn/pedidos-backend/internal/auth"
	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/repo"
	"github.com/tbourn/pedidos-backend/internal/services"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDB(rootOpts.Config)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repo.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			rootOpts.Logger.Info().Str("driver", rootOpts.Config.DB.Driver).Msg("schema up to date")
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

// NewSweepCommand creates the sweep command. It runs the cleanup the
// server schedules, once.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired refresh tokens and idempotency keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			db, closeDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			authSvc := services.NewAuthService(db, auth.NewIssuer(cfg.Auth.SecretKey, cfg.Auth.AccessTTL), cfg.Auth.RefreshTTL, cfg.Auth.RotateRefresh)
			tokens, err := authSvc.SweepExpired(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep tokens: %w", err)
			}
			keys, err := repo.DeleteExpiredIdempotency(cmd.Context(), db, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("sweep idempotency keys: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d refresh tokens, %d idempotency keys\n", tokens, keys)
			return nil
		},
	}
}

// CreateUserOptions holds flags for the create-user command.
type CreateUserOptions struct {
	*RootOptions
	Email    string
	Password string
	FullName string
	Role     string
}

// NewCreateUserCommand creates the create-user command, used to bootstrap
// the first admin account.
func NewCreateUserCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateUserOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a dashboard account",
		Long: `Create an active dashboard account.

Example:
  pedidos create-user --email ana@example.com --password s3cret --role admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return createUser(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "login email (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "initial password (required)")
	cmd.Flags().StringVar(&opts.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&opts.Role, "role", string(domain.RoleAdmin), "admin|staff|user")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func createUser(cmd *cobra.Command, opts *CreateUserOptions) error {
	role := domain.Role(strings.ToLower(strings.TrimSpace(opts.Role)))
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", opts.Role)
	}
	email := strings.ToLower(strings.TrimSpace(opts.Email))
	if !strings.Contains(email, "@") || opts.Password == "" {
		return errors.New("a valid email and a non-empty password are required")
	}
	hash, err := auth.HashPassword(opts.Password)
	if err != nil {
		return err
	}

	db, closeDB, err := openDB(opts.Config)
	if err != nil {
		return err
	}
	defer closeDB()
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	u := &domain.User{Email: email, HashedPassword: hash, Role: role, IsActive: true}
	if name := strings.TrimSpace(opts.FullName); name != "" {
		u.FullName = &name
	}
	if err := repo.CreateUser(cmd.Context(), db, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return fmt.Errorf("email %s already registered", email)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user #%d %s (%s)\n", u.ID, u.Email, u.Role)
	return nil
}
