package main

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/config"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/urfave/cli/v2"
)

func warningsCmd() *cli.Command {
	return &cli.Command{
		Name:  "warnings",
		Usage: "consulta y limpia advertencias",
		Subcommands: []*cli.Command{
			warningsListCmd(),
			warningsCheckCmd(),
			warningsClearCmd(),
		},
	}
}

func openLedger(cctx *cli.Context) (*moderation.Ledger, func(), error) {
	backend, err := openBackend(cctx)
	if err != nil {
		return nil, nil, err
	}
	return moderation.NewLedger(backend.Store, config.Get().WarningLimit), backend.Close, nil
}

func warningsListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "lista los usuarios con advertencias",
		Flags: []cli.Flag{guildFlag()},
		Action: func(cctx *cli.Context) error {
			ledger, closeFn, err := openLedger(cctx)
			if err != nil {
				return err
			}
			defer closeFn()

			entries, err := ledger.List(cctx.Context, cctx.String("guild"))
			if err != nil {
				return err
			}
			return printJSON(cctx, entries)
		},
	}
}

func warningsCheckCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "muestra las advertencias de un usuario",
		Flags: []cli.Flag{guildFlag(), userFlag()},
		Action: func(cctx *cli.Context) error {
			ledger, closeFn, err := openLedger(cctx)
			if err != nil {
				return err
			}
			defer closeFn()

			count, err := ledger.Count(cctx.Context, cctx.String("guild"), cctx.String("user"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cctx.App.Writer, "%s: %d/%d\n", cctx.String("user"), count, ledger.Limit())
			return nil
		},
	}
}

func warningsClearCmd() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "borra las advertencias de un usuario sin notificarle (con el bot detenido)",
		Flags: []cli.Flag{guildFlag(), userFlag()},
		Action: func(cctx *cli.Context) error {
			ledger, closeFn, err := openLedger(cctx)
			if err != nil {
				return err
			}
			defer closeFn()

			removed, err := ledger.Clear(cctx.Context, cctx.String("guild"), cctx.String("user"))
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cctx.App.Writer, "sin advertencias, nada que borrar")
				return nil
			}
			fmt.Fprintln(cctx.App.Writer, "advertencias borradas")
			return nil
		},
	}
}
