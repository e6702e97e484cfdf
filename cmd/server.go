package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/Daskott/instantdoc/dev/config"
	"github.com/Daskott/instantdoc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serverConfigFile string

func init() {
	rootCmd.AddCommand(createServerCmd())
}

func createServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the instantdoc server",
		Long: `The instantdoc server exposes the REST API used by the InstantDoc app i.e.
auth, emergency contacts, the Gemini assistant, nearest hospital lookup & SOS messages`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !isDevEnv && serverConfigFile == "" {
				return formattedError("\"sconfig\" is required when not in dev mode")
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			server.Start(serverConfig(), isDevEnv)
		},
	}

	cmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "config file for the server")

	return cmd
}

func serverConfig() *viper.Viper {
	v := viper.New()

	// Secrets are read from the environment, so they don't need to live in the config file.
	// FYI: The env var overrides whatever is in the config file
	envBindings := map[string]string{
		"instantdoc.privateKeyPem":      "INSTANTDOC_PRIVATE_KEY_PEM",
		"database.dsn":                  "DATABASE_DSN",
		"database.passPhrase":           "DATABASE_PASSPHRASE",
		"gemini.apiKey":                 "GEMINI_API_KEY",
		"google.mapsApiKey":             "GOOGLE_MAPS_API_KEY",
		"google.applicationCredentials": "GOOGLE_APPLICATION_CREDENTIALS",
		"twilio.accountSid":             "TWILIO_ACCOUNT_SID",
		"twilio.authToken":              "TWILIO_AUTH_TOKEN",
		"twilio.messagingServiceSid":    "TWILIO_MESSAGING_SERVICE_SID",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			log.Panic(err)
		}
	}
	v.AutomaticEnv() // read in environment variables that match

	if isDevEnv {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(config.SERVER_YML)); err != nil {
			log.Panic(fmt.Sprintf("error reading dev server config: %v", err))
		}
		return v
	}

	v.SetConfigFile(serverConfigFile)
	if err := v.ReadInConfig(); err != nil {
		log.Panic(fmt.Sprintf("error reading server config file: %v", err))
	}

	return v
}
