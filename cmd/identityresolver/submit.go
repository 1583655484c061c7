package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"identityresolver/internal/model"
)

func newSubmitCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <phone-number> <saved-name>",
		Short: "Record a single crowdsourced saved-name entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			userID, _ := cmd.Flags().GetString("user-id")
			country, _ := cmd.Flags().GetString("country")
			trust, _ := cmd.Flags().GetFloat64("trust-score")
			return runSubmit(logger, path, args[0], args[1], userID, country, trust)
		},
	}
	cmd.Flags().String("user-id", "", "submitting user's ID (random UUID if omitted)")
	cmd.Flags().String("country", "", "ISO country code of the submission")
	cmd.Flags().Float64("trust-score", 0.5, "trust weight in [0,1] for this submission")
	return cmd
}

func runSubmit(logger *slog.Logger, cfgPath, phone, savedName, userID, country string, trustScore float64) error {
	ctx, cancel := signalContext()
	defer cancel()

	comps, err := openComponents(ctx, cfgPath, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	if userID == "" {
		userID = uuid.NewString()
	}

	entry := model.CrowdEntry{
		SavedName:  savedName,
		UserID:     userID,
		Timestamp:  time.Now().UnixMilli(),
		Country:    country,
		TrustScore: trustScore,
	}
	if err := comps.store.SaveEntry(ctx, phone, entry); err != nil {
		return fmt.Errorf("save entry: %w", err)
	}

	fmt.Printf("recorded submission for %s from user %s\n", phone, userID)
	return nil
}
