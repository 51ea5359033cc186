// Command letta-chat sends a message to a Letta agent and streams the
// answer to stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	lettastream "github.com/haowjy/letta-stream-go"
)

var (
	configPath  string
	baseURL     string
	agentID     string
	password    string
	noEvents    bool
	noReasoning bool
	noUsage     bool
	diagnostics bool
	diagPath    string
	blocking    bool
)

var rootCmd = &cobra.Command{
	Use:   "letta-chat [message]",
	Short: "Chat with a Letta agent from the command line",
	Long: `letta-chat sends one user message to a Letta agent's streaming
endpoint and prints the answer as it arrives. Server-side events
(status, reasoning, usage) are annotated on stderr.

Configuration is resolved from defaults, then an optional YAML config
file, then LETTA_* environment variables, then flags.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "Agent server base URL (default http://localhost:8283)")
	rootCmd.Flags().StringVar(&agentID, "agent", "", "Agent identifier")
	rootCmd.Flags().StringVar(&password, "password", "", "Server password (prefer LETTA_PASSWORD)")
	rootCmd.Flags().BoolVar(&noEvents, "no-events", false, "Suppress status/usage/reasoning annotations")
	rootCmd.Flags().BoolVar(&noReasoning, "no-reasoning", false, "Suppress reasoning annotations")
	rootCmd.Flags().BoolVar(&noUsage, "no-usage", false, "Suppress usage annotations")
	rootCmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "Capture every stream event to a JSONL log")
	rootCmd.Flags().StringVar(&diagPath, "diag-path", "", "Diagnostic log path (default letta_responses.jsonl)")
	rootCmd.Flags().BoolVar(&blocking, "blocking", false, "Wait for the complete answer instead of streaming")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers file, environment, and flag values over defaults,
// in that order: a YAML file overrides defaults, environment variables
// override the file, and flags override everything.
func resolveConfig() (*lettastream.Config, error) {
	cfg := lettastream.DefaultConfig()
	if configPath != "" {
		fileCfg, err := lettastream.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	cfg.ApplyEnv()
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if agentID != "" {
		cfg.AgentID = agentID
	}
	if password != "" {
		cfg.Credential = password
	}
	if diagnostics {
		cfg.Diagnostics.Enabled = true
	}
	if diagPath != "" {
		cfg.Diagnostics.Path = diagPath
	}
	return cfg, nil
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	client, err := lettastream.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	messages := []lettastream.Message{
		{Role: lettastream.RoleUser, Content: strings.Join(args, " ")},
	}

	sink := func(ev lettastream.SinkEvent) {
		switch ev.Type {
		case lettastream.SinkTypeStatus:
			fmt.Fprintf(os.Stderr, "[status] %v\n", ev.Data["status"])
		case lettastream.SinkTypeReasoning:
			fmt.Fprintf(os.Stderr, "[reasoning/%v] %v\n", ev.Data["step"], ev.Data["content"])
		case lettastream.SinkTypeUsage:
			fmt.Fprintf(os.Stderr, "[usage] completion_tokens=%v total_tokens=%v\n",
				ev.Data["completion_tokens"], ev.Data["total_tokens"])
		case lettastream.SinkTypeWarning:
			fmt.Fprintf(os.Stderr, "[warning] %v\n", ev.Data["message"])
		case lettastream.SinkTypeError:
			fmt.Fprintf(os.Stderr, "[error] %v\n", ev.Data["error"])
		}
	}

	toggles := lettastream.DisplayToggles{
		ShowEvents:    !noEvents,
		ShowReasoning: !noReasoning,
		ShowUsage:     !noUsage,
	}
	opts := []lettastream.RunOption{
		lettastream.WithSink(sink),
		lettastream.WithUserToggles(toggles),
	}

	if blocking {
		result, err := client.Run(ctx, messages, opts...)
		if err != nil {
			return err
		}
		fmt.Println(result.Answer)
		return nil
	}

	events, err := client.Stream(ctx, messages, opts...)
	if err != nil {
		return err
	}
	for ev := range events {
		if ev.Err != nil {
			fmt.Println()
			return ev.Err
		}
		fmt.Print(ev.Text)
	}
	fmt.Println()
	return nil
}
