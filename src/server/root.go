package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "haikubot",
	Short: "Discord bot which finds haiku hiding in chat",
	Long: `Haiku Bot watches Discord channels for messages which happen to be 5-7-5 haiku.

Depending on the features enabled for a channel it reacts to haiku, replies
with the haiku broken into its three lines, or deletes anything which is not
a haiku at all.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: /etc/haikubot/config.yaml or ./config.yaml)",
	)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syllablesCmd)
	rootCmd.AddCommand(checkCmd)
}
