package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ownerscope/internal/adapters/registry"
	"ownerscope/internal/domain"
	"ownerscope/internal/services/names"
	"ownerscope/internal/services/ownership"
)

type classification struct {
	Name         string            `json:"name"`
	Kind         domain.EntityKind `json:"kind"`
	Normalized   string            `json:"normalized"`
	Display      string            `json:"display"`
	CacheKey     string            `json:"cacheKey"`
	PersonName   string            `json:"personName,omitempty"`
	PrivacyAgent bool              `json:"privacyAgent"`
}

func newClassifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "classify NAME...",
		Short: "Classify owner names as organizations or individuals",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cls := names.Default()
			out := make([]classification, 0, len(args))
			for _, name := range args {
				c := classification{
					Name:         name,
					Kind:         cls.Classify("", name),
					Normalized:   names.NormalizeAcronym(name),
					Display:      cls.DisplayName(name),
					CacheKey:     cls.NormalizeForCache(name),
					PrivacyAgent: cls.IsPrivacyAgent(name),
				}
				if c.Kind == domain.KindEntity {
					c.PersonName, _ = cls.ExtractPersonName(name)
				}
				out = append(out, c)
			}
			return printJSON(cmd, out)
		},
	}
}

func newResolveCommand(opts *rootOptions) *cobra.Command {
	var jurisdiction string
	var display bool
	cmd := &cobra.Command{
		Use:   "resolve NAME",
		Short: "Resolve the ownership chain behind an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()
			chain := a.Resolver.Resolve(cmd.Context(), args[0], jurisdiction)
			if display {
				return printJSON(cmd, ownership.FormatForDisplay(chain))
			}
			return printJSON(cmd, chain)
		},
	}
	cmd.Flags().StringVarP(&jurisdiction, "jurisdiction", "j", "", "registry jurisdiction code, e.g. us_fl")
	cmd.Flags().BoolVar(&display, "display", false, "group the chain by depth")
	return cmd
}

func newProvidersCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Inspect and reset data source health",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List provider health records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()
			recs, err := a.Monitor.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, recs)
		},
	}, &cobra.Command{
		Use:   "reset KEY",
		Short: "Reset a provider to healthy with zero counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Monitor.Reset(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("reset %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reset to healthy\n", args[0])
			return nil
		},
	})
	return cmd
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := a.DB.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", n)
			return nil
		},
	}
}

func newRegistryCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage stored company registry records",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Import registry records from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := registry.ImportFile(cmd.Context(), a.Registry, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
			return nil
		},
	})
	return cmd
}
