package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"identityresolver/internal/resolver"
	"identityresolver/internal/respool"
)

func newResolveCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <phone-number>",
		Short: "Resolve the canonical identity for a single phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			total, _ := cmd.Flags().GetInt("total-numbers")
			return runResolve(logger, path, args[0], total)
		},
	}
	cmd.Flags().Int("total-numbers", 0, "total numbers in the corpus, for rarity scoring")

	cmd.AddCommand(newResolveBatchCmd(logger))
	return cmd
}

func runResolve(logger *slog.Logger, cfgPath, phone string, totalNumbers int) error {
	ctx, cancel := signalContext()
	defer cancel()

	comps, err := openComponents(ctx, cfgPath, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	entries, err := comps.store.EntriesForNumber(ctx, phone)
	if err != nil {
		return fmt.Errorf("load entries for %q: %w", phone, err)
	}

	profile := resolver.Resolve(entries, totalNumbers, comps.cache.Snapshot(), comps.reg, func() int64 { return time.Now().UnixMilli() })
	return printJSON(profile)
}

// newResolveBatchCmd resolves many numbers concurrently, bounded by
// --concurrency, through one respool.Pool.
func newResolveBatchCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve-batch <phones-file>",
		Short: "Resolve every phone number listed one-per-line in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			return runResolveBatch(logger, path, args[0], concurrency)
		},
	}
	cmd.Flags().Int("concurrency", 8, "maximum concurrent resolutions")
	return cmd
}

func runResolveBatch(logger *slog.Logger, cfgPath, phonesFile string, concurrency int) error {
	ctx, cancel := signalContext()
	defer cancel()

	comps, err := openComponents(ctx, cfgPath, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	phones, err := readLines(phonesFile)
	if err != nil {
		return fmt.Errorf("read phones file: %w", err)
	}

	requests := make([]respool.Request, len(phones))
	for i, phone := range phones {
		entries, err := comps.store.EntriesForNumber(ctx, phone)
		if err != nil {
			return fmt.Errorf("load entries for %q: %w", phone, err)
		}
		requests[i] = respool.Request{PhoneNumber: phone, Entries: entries, TotalNumbers: len(phones)}
	}

	pool := respool.New(concurrency)
	results, err := pool.ResolveAll(ctx, requests, comps.cache.Snapshot(), comps.reg, func() int64 { return time.Now().UnixMilli() })
	if err != nil {
		return fmt.Errorf("resolve batch: %w", err)
	}

	return printJSON(results)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
