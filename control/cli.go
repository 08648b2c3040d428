package main

import (
	"github.com/urfave/cli/v3"
)

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlistdl",
		Usage:   "Harvest a Spotify playlist and download every track as audio",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Echo event logs to the console",
			},
		},
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, harvestCommand, downloadCommand, statusCommand, versionCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

func resumeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "resume",
		Usage: "What to do with an interrupted harvest: ask, continue, verbatim or fresh",
		Value: resumeAsk,
	}
}

func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Harvest the playlist, then download every track",
		Flags:  []cli.Flag{resumeFlag()},
		Action: r.Run,
	}
}

func harvestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "harvest",
		Usage:  "Harvest playlist metadata into the metadata file",
		Flags:  []cli.Flag{resumeFlag()},
		Action: r.Harvest,
	}
}

func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "download",
		Usage:  "Download every track in the metadata file",
		Action: r.Download,
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show checkpoint, metadata and recent runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of recent runs to show",
				Value: 10,
			},
		},
		Action: r.Status,
	}
}

func versionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Action: r.Version,
	}
}
