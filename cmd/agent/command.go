package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Name = "persuade-agent"
	s.app.Usage = "Run the persuade me challenge on Farcaster"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   "agent.toml",
			Usage:   "Path to the TOML config file",
			EnvVars: []string{"AGENT_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: "Path to the dotenv file loaded before the config",
		},
	}
	s.app.Before = s.loadConfig
	s.app.Action = cli.ShowAppHelp
	s.app.Commands = []*cli.Command{
		{
			Action: s.startPost,
			Name:   "post",
			Usage:  "Post a new challenge",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "topic", Usage: "Topic of the challenge, random when empty"},
				&cli.BoolFlag{Name: "force", Usage: "Abandon the open challenge first"},
			},
			Category: "Challenge",
		},
		{
			Action:      s.startCheck,
			Name:        "check",
			Usage:       "Evaluate new replies of the current challenge once",
			Category:    "Challenge",
			Description: `Fetches replies, evaluates the new ones and rewards the winner.`,
		},
		{
			Action: s.startReward,
			Name:   "reward",
			Usage:  "Reward a passing reply manually",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "username", Usage: "Winner to reward, the first passing reply when empty"},
			},
			Category: "Challenge",
		},
		{
			Action:   s.startStatus,
			Name:     "status",
			Usage:    "Print the state of the current challenge",
			Category: "Challenge",
		},
		{
			Action:      s.startRun,
			Name:        "run",
			Usage:       "Poll replies periodically",
			Category:    "Worker",
			Description: `Runs the poll job, and the post job when post_interval is set, until interrupted.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Create the winner ledger table",
			Category: "Database",
		},
	}
}
