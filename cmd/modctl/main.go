// Command modctl inspects and repairs PancyGuard data without the bot
// running, and manages the slash commands registered on Discord.
//
// Usage:
//
//	modctl warnings list --guild <id>
//	modctl warnings check --guild <id> --user <id>
//	modctl warnings clear --guild <id> --user <id>
//	modctl policy export --guild <id>
//	modctl commands list|sync|clean [--guild <id>]
package main

import (
	"fmt"
	"os"

	"github.com/PancyStudios/PancyGuard/internal/storage"
	"github.com/PancyStudios/PancyGuard/pkg/config"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
)

func main() {
	logger.Init(logger.Options{Level: "warn"})

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cfg := config.Get()

	return &cli.App{
		Name:    "modctl",
		Usage:   "herramienta de administración de PancyGuard",
		Version: config.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "almacenamiento: file, mongo o memory",
				Value: cfg.StoreBackend,
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "directorio del almacenamiento en archivos",
				Value: cfg.DataDir,
			},
			&cli.StringFlag{
				Name:  "mongo-url",
				Value: cfg.MongoDBURL,
			},
			&cli.StringFlag{
				Name:  "db",
				Value: cfg.DBName,
			},
		},
		Commands: []*cli.Command{
			warningsCmd(),
			policyCmd(),
			commandsCmd(),
		},
	}
}

// openBackend opens the store selected by the global flags
func openBackend(cctx *cli.Context) (*storage.Backend, error) {
	return storage.Open(cctx.String("backend"), cctx.String("data-dir"), cctx.String("mongo-url"), cctx.String("db"))
}

func guildFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "guild",
		Usage:    "id del servidor",
		Required: true,
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Usage:    "id del usuario",
		Required: true,
	}
}

func printJSON(cctx *cli.Context, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cctx.App.Writer, string(b))
	return err
}
