package cmd

import (
	"github.com/caseif/fs2sbc/gateway"
	"github.com/spf13/cobra"
)

var (
	gatewayArgs struct {
		endpoint string
		origins  []string
	}

	gatewayCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve containers of a local file repository over HTTP",
		Args:  cobra.NoArgs,
		Run:   startGateway,
	}
)

func init() {
	gatewayCmd.Flags().StringVar(&gatewayArgs.endpoint, "endpoint", "127.0.0.1:6789", "Address to listen on")
	gatewayCmd.Flags().StringSliceVar(&gatewayArgs.origins, "origins", nil, "CORS origins allowed, all if empty")
	gatewayCmd.Flags().StringVar(&gateway.LocalFileRepo, "repo", ".", "Local file repository")

	rootCmd.AddCommand(gatewayCmd)
}

func startGateway(*cobra.Command, []string) {
	gateway.MustServeLocal(gatewayArgs.endpoint, gatewayArgs.origins)
}
