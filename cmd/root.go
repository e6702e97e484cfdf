/*
Copyright © 2021 Edmond Cotterell

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/Daskott/instantdoc/colors"
	"github.com/Daskott/instantdoc/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const VERSION = "1.0.0"

var (
	envFile  string
	isDevEnv bool

	warningLabel = colors.Yellow("Warning:")
)

// rootCmd represents the base command when called without any subcommands.
// It is built at package init so subcommand init funcs can attach to it.
var rootCmd = createRootCmd()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(loadEnvFile)

	rootCmd.Version = fmt.Sprintf("v%s", VERSION)
}

func createRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "instantdoc",
		Short: `instantdoc is the backend for the InstantDoc emergency assistant.

It stores users and their emergency contacts, relays medical questions
to Gemini and looks up the nearest hospital to a location.`,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env", ".env", "file with environment variables to load")
	cmd.PersistentFlags().BoolVarP(&isDevEnv, "dev", "", false, "run in development mode")

	return cmd
}

// loadEnvFile reads in env vars from 'envFile' if it exists.
// Vars already set in the environment take precedence.
func loadEnvFile() {
	exists, err := utils.FileExist(envFile)
	if err != nil || !exists {
		return
	}

	if err = godotenv.Load(envFile); err != nil {
		fmt.Fprintln(os.Stderr, warningLabel, err)
		return
	}

	fmt.Fprintln(os.Stderr, "Using env file:", envFile)
}

func formattedError(format string, a ...interface{}) error {
	return fmt.Errorf(colors.Red(format), a...)
}
