package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/benaskins/socialhub/internal/credentials"
)

var credentialsCmd = &cobra.Command{
	Use:     "credentials",
	Aliases: []string{"creds"},
	Short:   "Manage platform credentials in the system keychain",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store credentials for all platforms",
	Long: `Store the eight platform secrets. On a terminal each value is prompted
for with echo disabled. Otherwise a JSON object with the snake_case keys
shown by "credentials show" is read from stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var b credentials.Bundle
		var err error
		if term.IsTerminal(int(os.Stdin.Fd())) {
			b, err = promptBundle(cmd.OutOrStdout())
		} else {
			b, err = decodeBundle(cmd.InOrStdin())
		}
		if err != nil {
			return err
		}

		return withStore(cmd.Context(), func(ctx context.Context, store *credentials.Store) error {
			if err := store.Save(ctx, b); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Credentials stored")
			return nil
		})
	},
}

var revealSecrets bool

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored credentials (masked unless --reveal)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *credentials.Store) error {
			b, err := store.Load(ctx)
			if err != nil {
				return err
			}
			if !revealSecrets {
				b = b.Redacted()
			}
			printBundle(cmd.OutOrStdout(), b)
			return nil
		})
	},
}

var credentialsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether any platform credentials are stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *credentials.Store) error {
			if store.Exists(ctx) {
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("credentials present"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), failStyle.Render("no credentials stored"))
			return fmt.Errorf("run \"socialhub credentials set\" first")
		})
	},
}

var credentialsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored platform credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *credentials.Store) error {
			if err := store.Delete(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Credentials removed")
			return nil
		})
	},
}

func init() {
	credentialsShowCmd.Flags().BoolVar(&revealSecrets, "reveal", false, "print secret values in full")

	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsShowCmd)
	credentialsCmd.AddCommand(credentialsCheckCmd)
	credentialsCmd.AddCommand(credentialsClearCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func withStore(ctx context.Context, fn func(context.Context, *credentials.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeStore, err := openCredentials(cfg, "cli")
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(ctx, store)
}

// credentialPrompts pairs each key with its prompt. Secret values are read
// with echo disabled.
var credentialPrompts = []struct {
	key    string
	label  string
	secret bool
}{
	{credentials.KeyBlueskyIdentifier, "Bluesky handle or email", false},
	{credentials.KeyBlueskyAppPassword, "Bluesky app password", true},
	{credentials.KeyXConsumerKey, "X API key (consumer key)", false},
	{credentials.KeyXConsumerSecret, "X API secret (consumer secret)", true},
	{credentials.KeyXAccessToken, "X access token", false},
	{credentials.KeyXAccessTokenSecret, "X access token secret", true},
	{credentials.KeyThreadsUserID, "Threads user ID", false},
	{credentials.KeyThreadsAccessToken, "Threads access token", true},
}

func promptBundle(w io.Writer) (credentials.Bundle, error) {
	fd := int(os.Stdin.Fd())
	stdin := bufio.NewReader(os.Stdin)
	values := make(map[string]string, len(credentialPrompts))
	for _, p := range credentialPrompts {
		fmt.Fprintf(w, "%s: ", p.label)
		var line string
		if p.secret {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(w)
			if err != nil {
				return credentials.Bundle{}, fmt.Errorf("reading %s: %w", p.key, err)
			}
			line = string(b)
		} else {
			var err error
			line, err = stdin.ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				return credentials.Bundle{}, fmt.Errorf("reading %s: %w", p.key, err)
			}
		}
		values[p.key] = strings.TrimSpace(line)
	}
	return bundleFromMap(values)
}

func decodeBundle(r io.Reader) (credentials.Bundle, error) {
	var b credentials.Bundle
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return credentials.Bundle{}, fmt.Errorf("reading credentials JSON from stdin: %w", err)
	}
	return b, nil
}

func bundleFromMap(values map[string]string) (credentials.Bundle, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return credentials.Bundle{}, err
	}
	var b credentials.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return credentials.Bundle{}, err
	}
	return b, nil
}

func printBundle(w io.Writer, b credentials.Bundle) {
	data, _ := json.Marshal(b)
	var values map[string]string
	json.Unmarshal(data, &values)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE")
	for _, key := range credentials.Keys {
		fmt.Fprintf(tw, "%s\t%s\n", key, values[key])
	}
	tw.Flush()
}
