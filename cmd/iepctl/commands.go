package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/iep-planner-api/internal/models"
	"github.com/noah-isme/iep-planner-api/internal/planner"
	"github.com/noah-isme/iep-planner-api/internal/repository"
	"github.com/noah-isme/iep-planner-api/internal/service"
	"github.com/noah-isme/iep-planner-api/pkg/config"
	"github.com/noah-isme/iep-planner-api/pkg/llm"
)

type cliOptions struct {
	profilePath string
	verbose     bool
	now         func() time.Time
	completer   llm.Completer // overrides the configured provider
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&cliOptions{now: time.Now})
}

func newRootCmdWith(opts *cliOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "iepctl",
		Short:         "Build prompts and learning plans from student profile files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.profilePath, "profile", "p", "", "student profile file (YAML or JSON)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	_ = root.MarkPersistentFlagRequired("profile")

	root.AddCommand(
		newPromptCmd(opts),
		newGenerateCmd(opts),
		newParseCmd(opts),
		newFallbackCmd(opts),
	)
	return root
}

func newPromptCmd(opts *cliOptions) *cobra.Command {
	var adaptPath string
	var withSystem bool
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the completion prompt for a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(opts.profilePath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if withSystem {
				fmt.Fprintf(out, "%s\n\n", planner.SystemPrompt)
			}
			if adaptPath == "" {
				fmt.Fprintln(out, planner.BuildPlanPrompt(profile))
				return nil
			}
			var progress models.ProgressData
			if err := decodeFile(adaptPath, &progress); err != nil {
				return err
			}
			fmt.Fprintln(out, planner.BuildAdaptedPlanPrompt(profile, &progress))
			return nil
		},
	}
	cmd.Flags().StringVar(&adaptPath, "adapt", "", "progress file; prints the adaptation prompt instead")
	cmd.Flags().BoolVar(&withSystem, "system", false, "include the system prompt")
	return cmd
}

func newGenerateCmd(opts *cliOptions) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a plan through the configured completion provider",
		Long:  "Runs completion, parsing and template completion the same way the API does. Failures degrade to the template plan.",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(opts.profilePath)
			if err != nil {
				return err
			}
			logger := opts.logger()
			defer logger.Sync() //nolint:errcheck

			completer := opts.completer
			if completer == nil && !offline {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if cfg.LLMConfigured() {
					if completer, err = llm.New(cfg.LLM, logger); err != nil {
						return err
					}
				} else {
					logger.Warn("no completion provider configured, generating template plan")
				}
			}
			if offline {
				completer = nil
			}

			plans := service.NewPlanService(
				repository.NewMemoryProfileRepository(),
				completer,
				planner.NewParserWithClock(opts.now),
				planner.NewFallbackGeneratorWithClock(opts.now),
				service.NewResourceService(nil, nil, nil, 0, 0, logger),
				nil,
				service.PlanOptions{MockMode: offline},
				nil,
				logger,
			)
			plan, err := plans.Generate(cmd.Context(), profile)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the completion call and print the template plan")
	return cmd
}

func newParseCmd(opts *cliOptions) *cobra.Command {
	var rawPath string
	var complete bool
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a saved model response into a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(opts.profilePath)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(rawPath)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			plan, err := planner.NewParserWithClock(opts.now).Parse(string(raw), profile)
			if err != nil {
				return err
			}
			if len(plan.DailyPlans) == 0 {
				return fmt.Errorf("no days found in %s", rawPath)
			}
			if complete {
				planner.NewFallbackGeneratorWithClock(opts.now).Complete(plan, profile)
			}
			return writeJSON(cmd.OutOrStdout(), plan)
		},
	}
	cmd.Flags().StringVar(&rawPath, "raw", "", "file holding the raw model response")
	cmd.Flags().BoolVar(&complete, "complete", false, "pad missing days and accommodations from the template plan")
	_ = cmd.MarkFlagRequired("raw")
	return cmd
}

func newFallbackCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fallback",
		Short: "Print the deterministic template plan for a profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(opts.profilePath)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), planner.NewFallbackGeneratorWithClock(opts.now).Generate(profile))
		},
	}
}

func (o *cliOptions) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func loadProfile(path string) (models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := decodeFile(path, &profile); err != nil {
		return profile, err
	}
	return profile, nil
}

// decodeFile reads YAML or JSON into dest. Keys follow the JSON field names of the API.
func decodeFile(path string, dest interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := json.Unmarshal(normalized, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
