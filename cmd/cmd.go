// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func userFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "User id that owns the cart and history",
		Sources:  cli.EnvVars("SONGCART_USER"),
		Required: required,
	}
}

func limitFlag(value int) *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of songs to return (0 for all)",
		Value:   value,
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// setupCommand handles database setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "status",
				Usage:  "Show the current migration version and check the database",
				Action: r.SetupStatus,
			},
		},
	}
}

// serveCommand runs the HTTP interface.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog, cart and history pages over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// catalogCommand handles catalog submissions and listings.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Submit a song to a genre catalog",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre (defaults to catalog.default_genre)"},
					&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name", Required: true},
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Song title", Required: true},
					&cli.StringFlag{Name: "album", Usage: "Album name"},
					&cli.StringFlag{Name: "price", Usage: "Price, stored as given"},
					&cli.StringFlag{Name: "author", Usage: "Identity recorded as the submitter"},
					&cli.StringFlag{Name: "email", Usage: "Email recorded as the submitter"},
				}, jsonFlags()...),
				Action: r.CatalogAdd,
			},
			{
				Name:  "list",
				Usage: "List the newest songs of a genre",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Genre (defaults to catalog.default_genre)"},
					&cli.StringFlag{Name: "artist", Usage: "Only songs by this artist"},
					&cli.BoolFlag{Name: "all", Usage: "List every stored song, carts and histories included"},
					limitFlag(50),
				}, jsonFlags()...),
				Action: r.CatalogList,
			},
			{
				Name:   "genres",
				Usage:  "List genres that have songs",
				Flags:  jsonFlags(),
				Action: r.CatalogGenres,
			},
		},
	}
}

// cartCommand handles cart management and checkout.
func cartCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "Cart operations",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Copy catalog songs into the cart by uid",
				ArgsUsage: "<uid>...",
				Flags:     []cli.Flag{userFlag(true)},
				Action:    r.CartAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove songs from the cart by uid",
				ArgsUsage: "<uid>...",
				Flags:     []cli.Flag{userFlag(true)},
				Action:    r.CartRemove,
			},
			{
				Name:   "view",
				Usage:  "List the songs in the cart",
				Flags:  append([]cli.Flag{userFlag(true), limitFlag(100)}, jsonFlags()...),
				Action: r.CartView,
			},
			{
				Name:  "checkout",
				Usage: "Move every song in the cart into purchase history",
				Flags: append([]cli.Flag{
					userFlag(true),
					&cli.BoolFlag{Name: "preview", Usage: "Only list the songs a checkout would move"},
				}, jsonFlags()...),
				Action: r.CartCheckout,
			},
		},
	}
}

// historyCommand handles purchase history.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Purchase history operations",
		Commands: []*cli.Command{
			{
				Name:   "view",
				Usage:  "List purchased songs",
				Flags:  append([]cli.Flag{userFlag(true), limitFlag(100)}, jsonFlags()...),
				Action: r.HistoryView,
			},
			{
				Name:  "export",
				Usage: "Export purchased songs as csv, markdown, text or json",
				Flags: []cli.Flag{
					userFlag(true),
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv, markdown, text or json", Value: "markdown"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path (default: history_<user>.<ext>)"},
					&cli.BoolFlag{Name: "stdout", Usage: "Write to standard output instead of a file"},
				},
				Action: r.HistoryExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive cart management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing the catalog and managing a cart",
		Flags:   []cli.Flag{userFlag(false)},
		Action:  r.TUI,
	}
}
