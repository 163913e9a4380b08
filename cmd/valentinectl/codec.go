package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"valentine/internal/payload"
	"valentine/internal/validation"
)

var (
	encodeTo      string
	encodeFrom    string
	encodeSession string

	linkBase   string
	linkLegacy bool
)

// encodeCmd prints the token for an invitation.
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Print the link token for an invitation",
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := invitationFromFlags()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), payload.Encode(inv))
		return nil
	},
}

// decodeCmd prints the invitation carried by a token or link.
var decodeCmd = &cobra.Command{
	Use:   "decode <token|url>",
	Short: "Print the invitation carried by a token or link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, ok := decodeArg(args[0])
		if !ok {
			return errors.New("no invitation found in input")
		}
		out, err := json.MarshalIndent(inv, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// linkCmd prints a shareable link.
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Print a shareable link for an invitation",
	Long: `Print a shareable link for an invitation.

New links carry a single encoded token. --legacy prints the older
to/from/id form that is still understood when opened.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if valid, msg := validation.ValidateBaseURL(linkBase); !valid {
			return fmt.Errorf("--base: %s", msg)
		}
		inv, err := invitationFromFlags()
		if err != nil {
			return err
		}

		build := payload.Link
		if linkLegacy {
			build = payload.LegacyLink
		}
		link, err := build(linkBase, inv)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{encodeCmd, linkCmd} {
		cmd.Flags().StringVar(&encodeTo, "to", "", "recipient name")
		cmd.Flags().StringVar(&encodeFrom, "from", "", "sender name")
		cmd.Flags().StringVar(&encodeSession, "session", "", "telemetry session id")
	}
	linkCmd.Flags().StringVar(&linkBase, "base", "http://localhost:3000/", "base URL of the app")
	linkCmd.Flags().BoolVar(&linkLegacy, "legacy", false, "use discrete to/from/id parameters")
}

func invitationFromFlags() (payload.Invitation, error) {
	inv := payload.Invitation{
		To:        validation.NormalizeName(encodeTo),
		From:      validation.NormalizeName(encodeFrom),
		SessionID: encodeSession,
	}
	if valid, msg := validation.ValidateName(inv.To, true); !valid {
		return inv, fmt.Errorf("--to: %s", msg)
	}
	if valid, msg := validation.ValidateName(inv.From, false); !valid {
		return inv, fmt.Errorf("--from: %s", msg)
	}
	if inv.SessionID != "" && !validation.ValidateSessionID(inv.SessionID) {
		return inv, errors.New("--session: invalid session id")
	}
	return inv, nil
}

// decodeArg accepts either a bare token or a full link.
func decodeArg(arg string) (payload.Invitation, bool) {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "?") || strings.Contains(arg, "://") {
		return payload.FromLink(arg)
	}
	return payload.Decode(arg)
}
