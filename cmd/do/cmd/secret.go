package cmd

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
)

func SecretCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Print a random URL-safe secret for JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := generateSecret(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "bytes", "b", 32, "number of random bytes")
	return cmd
}

func generateSecret(size int) (string, error) {
	if size < 16 {
		return "", fmt.Errorf("secret must be at least 16 bytes, got %d", size)
	}
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
