// Command sealkey manages the age-sealed service-account bundle supplied as
// GOOGLE_SERVICE_ACCOUNT_AGE.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hugh/member-sync/internal/google"
	"github.com/hugh/member-sync/pkg/crypto"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sealkey",
		Short:        "Seal service-account credentials for member-sync",
		SilenceUsage: true,
	}
	root.AddCommand(newGenerateCmd(), newSealCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Print a new ENCRYPTION_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity, recipient, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ENCRYPTION_KEY=%s\n# recipient: %s\n", identity, recipient)
			return nil
		},
	}
}

func newSealCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "seal [service-account.json]",
		Short: "Seal a service-account JSON bundle (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = os.Getenv("ENCRYPTION_KEY")
			}
			enc, err := crypto.NewEncryptor(key)
			if err != nil {
				return err
			}

			var raw []byte
			if len(args) == 1 {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("reading bundle: %w", err)
			}

			// Refuse to seal something the server could not use.
			if _, err := google.ParseServiceAccount(raw); err != nil {
				return err
			}

			sealed, err := enc.EncryptString(string(raw))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "GOOGLE_SERVICE_ACCOUNT_AGE=%s\n", sealed)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "age identity (defaults to ENCRYPTION_KEY)")
	return cmd
}
