package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/uqcs/haikubot/src/haikubot"
	"github.com/uqcs/haikubot/src/haikubot/db"
)

// featureKeys maps boolean config keys onto the features they enable for every channel.
var featureKeys = []struct {
	key  string
	flag db.ConfigFlag
}{
	{"reactHaiku", db.ConfigReactToHaiku},
	{"reactNonHaiku", db.ConfigReactToNonHaiku},
	{"deleteNonHaiku", db.ConfigDeleteNonHaiku},
	{"replyHaiku", db.ConfigReplyToHaiku},
	{"serveRandomHaiku", db.ConfigServeRandomHaiku},
	{"yellHaiku", db.ConfigYellHaiku},
	{"detectHaiku", db.ConfigDetectHaiku},
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("reactHaiku", true)
	v.SetDefault("reactNonHaiku", false)
	v.SetDefault("deleteNonHaiku", false)
	v.SetDefault("replyHaiku", false)
	v.SetDefault("serveRandomHaiku", true)
	v.SetDefault("yellHaiku", false)
	v.SetDefault("detectHaiku", false)
	v.SetDefault("positiveReacts", []string{"💯", "🍙", "🍵", "🍶", "🍜"})
	v.SetDefault("negativeReacts", []string{"🚫", "⛔"})
	v.SetDefault("haikuChannels", []string{})
	v.SetDefault("yellingChannels", []string{})
	v.SetDefault("dbPath", "./haikuDB.sqlite3")
	v.SetDefault("metricsAddr", ":2112")
	v.SetDefault("debug", false)

	v.SetEnvPrefix("HAIKU_BOT")
	v.AutomaticEnv()
	return v
}

// loadConfig reads the config file at path, or config.yaml from the usual locations when path is empty. A
// missing config file is not an error; the defaults and environment still apply.
func loadConfig(path string) (*viper.Viper, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/haikubot")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}
	return v, nil
}

func configFromViper(v *viper.Viper) haikubot.Config {
	flags := db.ConfigFlag(0)
	for _, feature := range featureKeys {
		if v.GetBool(feature.key) {
			flags |= feature.flag
		}
	}
	return haikubot.Config{
		Token:           v.GetString("token"),
		ActionFlags:     flags,
		PositiveReacts:  v.GetStringSlice("positiveReacts"),
		NegativeReacts:  v.GetStringSlice("negativeReacts"),
		HaikuChannels:   v.GetStringSlice("haikuChannels"),
		YellingChannels: v.GetStringSlice("yellingChannels"),
		Debug:           v.GetBool("debug"),
		DBPath:          v.GetString("dbPath"),
		MetricsAddr:     v.GetString("metricsAddr"),
	}
}
