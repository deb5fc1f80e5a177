package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/Guilhem-Bonnet/akd/internal/domain"
)

func newMyListCmd(client func() *apiClient, out func(*cobra.Command) printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mylist",
		Short: "Watchlist (anime sauvegardés)",
	}

	var in domain.SavedAnimeInput
	addFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&in.Title, "title", "", "Titre")
		c.Flags().StringVar(&in.Img, "img", "", "URL de l'affiche")
		c.Flags().StringVar(&in.Alt, "alt", "", "Texte alternatif")
		c.Flags().StringVar(&in.Episode, "episode", "", "Episode courant")
		c.Flags().StringVar(&in.Type, "type", "", "Type (TV, Movie...)")
	}
	send := func(method, path string, body any) func(*cobra.Command, []string) error {
		return func(c *cobra.Command, args []string) error {
			v, err := client().call(c.Context(), method, path, body)
			if err != nil {
				return err
			}
			return out(c).print(v)
		}
	}

	add := &cobra.Command{
		Use:   "add <link>",
		Short: "Ajoute un anime (sans effet s'il est déjà présent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			in.Link = args[0]
			return send("POST", "/api/v1/mylist", in)(c, args)
		},
	}
	addFlags(add)

	toggle := &cobra.Command{
		Use:   "toggle <link>",
		Short: "Ajoute ou retire un anime",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			in.Link = args[0]
			return send("POST", "/api/v1/mylist/toggle", in)(c, args)
		},
	}
	addFlags(toggle)

	cmd.AddCommand(
		&cobra.Command{Use: "list", Short: "Liste la watchlist (plus récent d'abord)", Args: cobra.NoArgs, RunE: send("GET", "/api/v1/mylist", nil)},
		&cobra.Command{Use: "count", Short: "Nombre d'anime sauvegardés", Args: cobra.NoArgs, RunE: send("GET", "/api/v1/mylist/count", nil)},
		add,
		toggle,
		&cobra.Command{
			Use:   "remove <link>",
			Short: "Retire un anime",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				return send("DELETE", "/api/v1/mylist?link="+url.QueryEscape(args[0]), nil)(c, args)
			},
		},
		&cobra.Command{Use: "clear", Short: "Vide la watchlist", Args: cobra.NoArgs, RunE: send("DELETE", "/api/v1/mylist/all", nil)},
	)
	return cmd
}

func newLikedCmd(client func() *apiClient, out func(*cobra.Command) printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liked",
		Short: "Anime likés",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Liste les liens likés",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				v, err := client().call(c.Context(), "GET", "/api/v1/liked", nil)
				if err != nil {
					return err
				}
				return out(c).print(v)
			},
		},
		&cobra.Command{
			Use:   "toggle <link>",
			Short: "Like / unlike",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				v, err := client().call(c.Context(), "POST", "/api/v1/liked/toggle", map[string]string{"link": args[0]})
				if err != nil {
					return err
				}
				return out(c).print(v)
			},
		},
	)
	return cmd
}

func newServersCmd(client func() *apiClient, out func(*cobra.Command) printer) *cobra.Command {
	return &cobra.Command{
		Use:   "servers <episode-path>",
		Short: "Serveurs vidéo d'un épisode, groupés par fournisseur",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			v, err := client().call(c.Context(), "GET", "/api/v1/catalog/episode?path="+url.QueryEscape(args[0]), nil)
			if err != nil {
				return err
			}
			return out(c).print(v)
		},
	}
}
