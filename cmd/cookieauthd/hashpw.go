package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/cookieauth"
	"github.com/MrEthical07/cookieauth/password"
)

func hashPasswordCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print its Argon2id digest",
		Long: `Read one line from stdin and print the PHC-encoded Argon2id digest
using the password settings of the loaded configuration. Useful for seeding
a user directory by hand.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cookieauth.DefaultConfig().Password
			if configPath != "" {
				loaded, err := cookieauth.LoadConfig(configPath, cookieauth.LoadOptions{})
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded.Password
			}

			hasher, err := password.NewArgon2(cfg)
			if err != nil {
				return err
			}

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password on stdin")
			}
			digest, err := hasher.Hash(strings.TrimRight(line, "\r\n"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), digest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	return cmd
}
