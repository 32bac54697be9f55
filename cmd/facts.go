package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hh-twin/internal/facts"
	"github.com/spigell/hh-twin/internal/profile"
)

var factsCmd = &cobra.Command{
	Use:   "facts [query]",
	Short: "Resolve a fact query against a candidate profile",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		lookupFacts(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(factsCmd)

	factsCmd.Flags().StringP("candidate-id", "c", "", "candidate id to fetch from the backend")
	factsCmd.Flags().StringP("profile-file", "p", "", "read the profile from a JSON file instead of the backend")
}

func lookupFacts(cmd *cobra.Command, query string) {
	ctx := context.Background()

	logger, config := setup()
	defer logger.Sync() //nolint:errcheck

	candidate, err := loadCandidate(ctx, cmd, config, logger)
	if err != nil {
		logger.Fatal("loading the candidate", zap.Error(err))
	}

	rule := facts.Classify(query, candidate)
	answer := facts.Resolve(query, candidate)
	logger.Debug("resolved query", zap.String("rule", rule), zap.Bool("found", answer.Found))

	pretty, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		logger.Fatal("encoding the answer", zap.Error(err))
	}
	fmt.Println(string(pretty))
}

// loadCandidate returns nil without error when neither source is given, so
// the no-candidate answer can be inspected too.
func loadCandidate(ctx context.Context, cmd *cobra.Command, config *Config, logger *zap.Logger) (*profile.Candidate, error) {
	if file, _ := cmd.Flags().GetString("profile-file"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read profile file: %w", err)
		}
		return profile.DecodeJSON(data)
	}

	id, _ := cmd.Flags().GetString("candidate-id")
	if strings.TrimSpace(id) == "" {
		logger.Warn("no candidate given, resolving against an empty session")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.BackendTimeout)
	defer cancel()

	return newBackend(config, logger).FetchProfile(ctx, strings.TrimSpace(id))
}
