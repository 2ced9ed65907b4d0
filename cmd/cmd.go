// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2 + PKCE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session token",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session state",
				Action: r.AuthStatus,
			},
		},
	}
}

// playlistsCommand handles playlist CRUD and export operations
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all playlists",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist with its elements and songs",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				},
				Action: r.PlaylistsShow,
			},
			{
				Name:  "create",
				Usage: "Create an empty playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "rename",
				Usage: "Rename a playlist",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
					&cli.StringArg{Name: "name"},
				},
				Action: r.PlaylistsRename,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Action: r.PlaylistsDelete,
			},
			{
				Name:  "add-album",
				Usage: "Add an album as a new element",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
					&cli.StringArg{Name: "query"},
				},
				Action: r.PlaylistsAddAlbum,
			},
			{
				Name:  "remove-element",
				Usage: "Remove an element by position",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
					&cli.IntArg{Name: "index"},
				},
				Action: r.PlaylistsRemoveElement,
			},
			{
				Name:  "remove-song",
				Usage: "Remove a song from an element by position",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
					&cli.IntArg{Name: "element"},
					&cli.IntArg{Name: "song"},
				},
				Action: r.PlaylistsRemoveSong,
			},
			{
				Name:  "export",
				Usage: "Export a playlist to CSV, Markdown, or plain text",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, markdown, or text",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.PlaylistsExport,
			},
		},
	}
}

// searchCommand handles one-shot Spotify search
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search Spotify for songs and albums",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
		},
		Action: r.SearchOnce,
	}
}

// playerCommand handles playback control
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "Control playback",
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "Start playing a playlist",
				Arguments: []cli.Argument{
					&cli.IntArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "element", Usage: "Element index to start from", Value: -1},
					&cli.IntFlag{Name: "song", Usage: "Song index inside the element", Value: -1},
				},
				Action: r.PlayerPlay,
			},
			{Name: "pause", Usage: "Pause playback", Action: r.PlayerPause},
			{Name: "resume", Usage: "Resume playback", Action: r.PlayerResume},
			{Name: "next", Usage: "Skip to the next song", Action: r.PlayerNextSong},
			{Name: "prev", Usage: "Return to the previous song", Action: r.PlayerPrevSong},
			{Name: "next-element", Usage: "Skip to the next element", Action: r.PlayerNextElement},
			{Name: "prev-element", Usage: "Return to the previous element", Action: r.PlayerPrevElement},
			{
				Name:  "status",
				Usage: "Show what is currently playing",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.PlayerStatus,
			},
		},
	}
}

// setupCommand handles setup operations for the local session database and config.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize config file and session database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}
