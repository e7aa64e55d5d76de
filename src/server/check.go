package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/uqcs/haikubot/src/haiku"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether the text on stdin is a haiku",
	Long: `Check whether the text on stdin is a haiku.

A haiku is printed back as its three lines. Anything else exits with an error.

Examples:
  echo "I am all out of haikus on this fine morning good luck with your tests" | haikubot check`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("error reading stdin: %w", err)
		}
		lines, ok := haiku.FindHaiku(string(text))
		if !ok {
			return errors.New("not a haiku")
		}
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}
