package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/haggle/internal/adapters/profile"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create and inspect utility profile files",
	}

	cmd.AddCommand(newProfileInitCmd(), newProfileShowCmd())
	return cmd
}

func newProfileInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a sample bakery profile (.toml, .yaml or .yml)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check profile file: %w", err)
				}
			}

			if err := profile.Save(path, profile.Sample()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Print the goods and unit costs of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			utility, err := profile.Load(args[0])
			if err != nil {
				return err
			}

			var b strings.Builder
			if utility.Name != "" {
				fmt.Fprintf(&b, "name: %s\n", utility.Name)
			}
			fmt.Fprintf(&b, "currency: %s\n", utility.CurrencyUnit)
			for _, good := range profile.Goods(utility) {
				fmt.Fprintf(&b, "  %-10s %s\n", good, utility.UnitCosts[good].StringFixed(2))
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
			return err
		},
	}
}
