package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uqcs/haikubot/src/haiku"
)

var syllablesCmd = &cobra.Command{
	Use:   "syllables <word>...",
	Short: "Print the estimated syllable count of each word",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, word := range args {
			fmt.Fprintf(out, "%s\t%d\n", word, haiku.EstimateSyllables(word))
		}
	},
}
