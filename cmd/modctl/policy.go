package main

import (
	"github.com/PancyStudios/PancyGuard/pkg/config"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/urfave/cli/v2"
)

func policyCmd() *cli.Command {
	return &cli.Command{
		Name:  "policy",
		Usage: "políticas de moderación",
		Subcommands: []*cli.Command{
			policyExportCmd(),
		},
	}
}

func policyExportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "imprime la política de un servidor en JSON",
		Flags: []cli.Flag{guildFlag()},
		Action: func(cctx *cli.Context) error {
			backend, err := openBackend(cctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			cfg := config.Get()
			policies := moderation.NewPolicies(backend.Store, moderation.PolicyDefaults{
				InviteAllowlist:   cfg.InviteAllowlist,
				BlockedExtensions: cfg.BlockedExtensions,
			})

			rec, err := policies.Record(cctx.Context, cctx.String("guild"))
			if err != nil {
				return err
			}
			return printJSON(cctx, rec)
		},
	}
}
