package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hh-twin/internal/ai"
	"github.com/spigell/hh-twin/internal/ai/gemini"
	"github.com/spigell/hh-twin/internal/facts"
	"github.com/spigell/hh-twin/internal/secrets"
	"github.com/spigell/hh-twin/internal/session"
)

const (
	recruiterLabel = "Recruiter"
	exitWord       = "exit"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Hold a text interview with the candidate twin",
	Run: func(cmd *cobra.Command, _ []string) {
		interview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringP("metadata", "m", "", "session metadata as JSON (candidate_id, recruiter_name, company, job_title, ...)")
	interviewCmd.Flags().StringP("candidate-id", "c", "", "candidate id, overrides candidate_id from metadata")
	interviewCmd.Flags().String("session-id", "", "session id, generated when empty")
}

func interview(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, config := setup()
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting the hh-twin interview", zap.String("version", resolvedVersion()))

	meta := sessionMetadata(cmd, logger)

	bootstrapper := newBootstrapper(config, logger)
	sessionID, _ := cmd.Flags().GetString("session-id")
	sess := bootstrapper.Start(ctx, sessionID, meta)
	defer bootstrapper.Finish(sess.ID)

	if !sess.Grounded() {
		logger.Warn("interviewing without candidate data, every fact lookup will come back empty")
	}

	interviewer, err := newInterviewer(ctx, config.AI.Gemini, sess, bootstrapper, logger)
	if err != nil {
		logger.Fatal("building the interviewer", zap.Error(err))
	}

	speaker := candidateLabel(sess)
	fmt.Printf("%s: %s\n", speaker, session.Greeting)

	prompt := promptui.Prompt{Label: recruiterLabel}
	for {
		line, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				break
			}
			logger.Fatal("reading recruiter input", zap.Error(err))
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, exitWord) {
			break
		}

		reply, err := interviewer.Reply(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("candidate could not answer", zap.Error(err))
			continue
		}

		fmt.Printf("%s: %s\n", speaker, reply)
	}

	usage := interviewer.Usage()
	logger.Info("interview finished",
		zap.String("session_id", sess.ID),
		zap.Int("requests", usage.Requests),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("candidates_tokens", usage.CandidatesTokens),
		zap.Int("total_tokens", usage.TotalTokens),
	)
}

// sessionMetadata merges the metadata flag with the candidate id flag.
// Unparsable metadata is logged and ignored.
func sessionMetadata(cmd *cobra.Command, logger *zap.Logger) session.Metadata {
	raw, _ := cmd.Flags().GetString("metadata")

	meta, err := session.ParseMetadata(raw)
	if err != nil {
		logger.Warn("failed to parse session metadata", zap.Error(err))
	}

	if id, _ := cmd.Flags().GetString("candidate-id"); strings.TrimSpace(id) != "" {
		meta.CandidateID = strings.TrimSpace(id)
	}

	return meta
}

func newInterviewer(ctx context.Context, cfg *GeminiConfig, sess *session.Session, bootstrapper *session.Bootstrapper, logger *zap.Logger) (ai.Interviewer, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w, or point ai.gemini.api-key-file / GEMINI_API_KEY_FILE at it", err)
	}

	genLogger := logger.Named("gemini").With(
		zap.String("model", cfg.Model),
		zap.Int("ai_retry_attempts", cfg.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, cfg.Temperature, genLogger)
	if err != nil {
		return nil, err
	}

	tool := facts.NewTool(bootstrapper.Store(), sess.ID, logger.Named("facts"), cfg.MaxLogLength)

	interviewer, err := generator.NewInterviewer(ctx, sess.Prompt, tool, logger.Named("interviewer"), cfg.MaxLogLength)
	if err != nil {
		return nil, err
	}
	return interviewer, nil
}

func candidateLabel(sess *session.Session) string {
	if sess.Grounded() && strings.TrimSpace(sess.Candidate.FullName) != "" {
		return sess.Candidate.FullName
	}
	return "Candidate"
}
