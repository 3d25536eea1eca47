package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/revisionai/internal/domain"
	"github.com/spf13/cobra"
)

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func writeRendered(cmd *cobra.Command, rendered string, err error) error {
	if err != nil {
		return fmt.Errorf("render sessions: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func parseSessionID(raw string) (domain.SessionID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("session id is required")
	}
	return domain.SessionID(id), nil
}
