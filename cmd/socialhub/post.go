package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benaskins/socialhub/internal/hub"
	"github.com/benaskins/socialhub/internal/platform"
)

var (
	postTo        string
	postViaDaemon bool
	postJSON      bool
)

var postCmd = &cobra.Command{
	Use:   "post [message]",
	Short: "Post a message to every platform, or one with --to",
	Long: `Post a message. With no --to flag the message goes to Bluesky, X and
Threads concurrently and one result line is printed per platform.

If the message argument is omitted it is read from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPost,
}

func init() {
	postCmd.Flags().StringVar(&postTo, "to", "", "post to a single platform: bluesky, x or threads")
	postCmd.Flags().BoolVar(&postViaDaemon, "daemon", false, "send the post through the running daemon's API socket")
	postCmd.Flags().BoolVar(&postJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	message, err := readMessage(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	var target platform.Name
	if postTo != "" {
		if target, err = platform.ParseName(postTo); err != nil || target == platform.All {
			return fmt.Errorf("unknown platform %q (want bluesky, x or threads)", postTo)
		}
	}

	ctx := cmd.Context()
	var results []hub.Result
	if postViaDaemon {
		results, err = postThroughDaemon(ctx, target, message)
	} else {
		results, err = postInProcess(ctx, target, message)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if postJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		renderResults(out, results)
	}

	if hub.AnyFailed(results) {
		return errPostFailed
	}
	return nil
}

func postInProcess(ctx context.Context, target platform.Name, message string) ([]hub.Result, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	setupLogging(cfg, os.Stderr, slog.LevelWarn)

	store, closeStore, err := openCredentials(cfg, "cli")
	if err != nil {
		return nil, err
	}
	defer closeStore()

	h := hub.New(store, hub.WithPosters(buildPosters(cfg)...))
	if target == "" {
		return h.PostToAll(ctx, message), nil
	}
	result, err := h.Post(ctx, target, message)
	if err != nil {
		return nil, err
	}
	return []hub.Result{result}, nil
}

func postThroughDaemon(ctx context.Context, target platform.Name, message string) ([]hub.Result, error) {
	body := map[string]string{"message": message}
	if target == "" {
		var results []hub.Result
		if err := apiDo(ctx, "POST", "/v1/posts", body, &results); err != nil {
			return nil, err
		}
		return results, nil
	}
	var result hub.Result
	if err := apiDo(ctx, "POST", "/v1/posts/"+target.Slug(), body, &result); err != nil {
		return nil, err
	}
	return []hub.Result{result}, nil
}

func readMessage(stdin io.Reader, args []string) (string, error) {
	var message string
	if len(args) == 1 {
		message = args[0]
	} else {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		message = strings.TrimRight(string(b), "\n")
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message is empty")
	}
	return message, nil
}
