package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"identityresolver/internal/registry"
	"identityresolver/internal/store"
)

func newRegistryCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and update the name-reference dictionary",
	}
	cmd.AddCommand(newRegistrySeedCmd(logger), newRegistryLearnCmd(logger), newRegistryLoadSeedCmd(logger))
	return cmd
}

// newRegistrySeedCmd prints the current per-category token counts: the
// built-in seed, plus anything persisted from prior learn/load-seed calls.
func newRegistrySeedCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Print the seed dictionary's per-category token counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			return runRegistryCounts(logger, path)
		},
	}
}

func newRegistryLoadSeedCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "load-seed <seed-file.yaml>",
		Short: "Load the FIRST_NAME/LAST_NAME/MIDDLE_NAME entries of an external YAML seed dictionary and persist them to the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			return runRegistryLoadSeed(logger, path, args[0])
		},
	}
}

func runRegistryLoadSeed(logger *slog.Logger, cfgPath, seedPath string) error {
	ctx, cancel := signalContext()
	defer cancel()

	comps, err := openComponents(ctx, cfgPath, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	data, err := os.ReadFile(seedPath)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var sf map[registry.Category][]string
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	count := 0
	for category, tokens := range sf {
		for _, token := range tokens {
			if !comps.reg.LearnToken(token, category) {
				continue
			}
			row := store.NameReferenceRow{Token: token, Category: category, Source: store.SourceSeed, Confidence: 1.0, Frequency: 1}
			if err := comps.store.SaveNameReference(ctx, row); err != nil {
				return fmt.Errorf("persist seed entry %q/%s: %w", token, category, err)
			}
			count++
		}
	}

	fmt.Printf("seeded %d entries\n", count)
	return nil
}

func newRegistryLearnCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "learn <token> <category>",
		Short: "Manually add one token to the learned dictionary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			return runRegistryLearn(logger, path, args[0], registry.Category(args[1]))
		},
	}
}

func runRegistryLearn(logger *slog.Logger, cfgPath, token string, category registry.Category) error {
	ctx, cancel := signalContext()
	defer cancel()

	comps, err := openComponents(ctx, cfgPath, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	if !comps.reg.LearnToken(token, category) {
		return fmt.Errorf("token %q rejected for category %s: too short or not a learnable category", token, category)
	}

	row := store.NameReferenceRow{Token: token, Category: category, Source: store.SourceLearned, Confidence: 1.0, Frequency: 1}
	if err := comps.store.SaveNameReference(ctx, row); err != nil {
		return fmt.Errorf("persist learned token: %w", err)
	}

	fmt.Printf("learned %q as %s\n", token, category)
	return nil
}

func runRegistryCounts(logger *slog.Logger, cfgPath string) error {
	ctx, cancel := signalContext()
	defer cancel()

	comps, err := openComponents(ctx, cfgPath, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	return printJSON(comps.reg.GetCounts())
}
