package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Guilhem-Bonnet/akd/internal/buildinfo"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("AKD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "akd",
		Short:         "Client en ligne de commande du serveur akd",
		Long:          "akd pilote un serveur akd: watchlist, likes et serveurs vidéo d'un épisode.",
		Version:       buildinfo.Current().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("server-url", "http://127.0.0.1:8080", "URL du serveur (env AKD_SERVER_URL)")
	root.PersistentFlags().Duration("timeout", 10*time.Second, "Timeout HTTP")
	root.PersistentFlags().StringP("output", "o", "json", "Format de sortie: json|yaml")
	_ = v.BindPFlag("server_url", root.PersistentFlags().Lookup("server-url"))
	_ = v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))
	_ = v.BindPFlag("output", root.PersistentFlags().Lookup("output"))

	client := func() *apiClient {
		return newAPIClient(v.GetString("server_url"), v.GetDuration("timeout"))
	}
	out := func(cmd *cobra.Command) printer {
		return printer{w: cmd.OutOrStdout(), format: v.GetString("output")}
	}

	root.AddCommand(
		newGetCmd("health", "Etat du serveur", "/api/v1/health", client, out),
		newGetCmd("version", "Version du serveur", "/api/v1/version", client, out),
		newMyListCmd(client, out),
		newLikedCmd(client, out),
		newServersCmd(client, out),
	)
	return root
}

func newGetCmd(use, short, path string, client func() *apiClient, out func(*cobra.Command) printer) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := client().call(cmd.Context(), "GET", path, nil)
			if err != nil {
				return err
			}
			return out(cmd).print(v)
		},
	}
}
