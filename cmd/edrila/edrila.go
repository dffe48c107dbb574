// Package edrilacmder
package edrilacmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/nexprism/lms-Admin-panel-edrila-sub002/cmd/edrila/chat"
	configcmder "github.com/nexprism/lms-Admin-panel-edrila-sub002/cmd/edrila/config"
	historycmder "github.com/nexprism/lms-Admin-panel-edrila-sub002/cmd/edrila/history"
	initcmder "github.com/nexprism/lms-Admin-panel-edrila-sub002/cmd/edrila/init"
	servecmder "github.com/nexprism/lms-Admin-panel-edrila-sub002/cmd/edrila/serve"
	versioncmder "github.com/nexprism/lms-Admin-panel-edrila-sub002/cmd/version"
)

const edrilaLongDesc string = `Edrila is a terminal client for the admin panel AI assistant.

It posts your messages to the streaming chat endpoint, assembles the
streamed answer as it arrives, and keeps the transcript of every room.

Get started using:
  edrila serve         Run a local development assistant
  edrila chat          Chat with the assistant
  edrila history       Browse stored rooms and transcripts`

const edrilaShortDesc string = "Edrila - admin panel assistant client"

func NewEdrilaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edrila",
		Short: edrilaShortDesc,
		Long:  edrilaLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .edrila/ directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
