package main

// Render or run AI generations from the command line:
//   go run ./cmd/aictl kinds
//   go run ./cmd/aictl render --kind salary-estimate --input req.json
//   go run ./cmd/aictl run --kind interview-questions --input req.json --resume cv.pdf

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	requestFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "kind",
			Usage:    "generation kind, e.g. salary-estimate",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "input",
			Usage: "path to the JSON request body, - for stdin",
			Value: "-",
		},
		&cli.StringFlag{
			Name:  "resume",
			Usage: "PDF or DOCX whose text fills resumeText",
		},
	}

	return &cli.Command{
		Name:  "aictl",
		Usage: "inspect prompts and call the configured model",
		Commands: []*cli.Command{
			{
				Name:   "kinds",
				Usage:  "list generation kinds",
				Action: kindsAction,
			},
			{
				Name:   "render",
				Usage:  "print the system and user prompt for a request",
				Flags:  requestFlags,
				Action: renderAction,
			},
			{
				Name:  "run",
				Usage: "call the model and print the validated result",
				Flags: append(requestFlags,
					&cli.StringFlag{
						Name:  "provider",
						Usage: "override LLM_PROVIDER",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "write the result JSON to this path",
					},
				),
				Action: runAction,
			},
		},
	}
}
