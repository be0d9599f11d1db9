package main

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/internal/commands"
	"github.com/PancyStudios/PancyGuard/pkg/config"
	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/PancyStudios/PancyGuard/pkg/reactionrole"
	"github.com/PancyStudios/PancyGuard/pkg/store"
	"github.com/urfave/cli/v2"
)

func commandsCmd() *cli.Command {
	return &cli.Command{
		Name:  "commands",
		Usage: "comandos de barra registrados en Discord",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "guild",
				Usage: "servidor destino (vacío para los comandos globales)",
			},
		},
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "lista los comandos registrados",
				Action: listCommands,
			},
			{
				Name:   "sync",
				Usage:  "reemplaza los comandos registrados por los actuales",
				Action: syncCommands,
			},
			{
				Name:   "clean",
				Usage:  "elimina todos los comandos",
				Action: cleanCommands,
			},
		},
	}
}

// restClient builds the command registry over a session that only talks
// REST. It returns the application id alongside.
func restClient() (*discord.ExtendedClient, string, error) {
	cfg := config.Get()
	if cfg.BotToken == "" {
		return nil, "", fmt.Errorf("botToken no está configurado")
	}

	client, err := discord.NewClient(cfg.BotToken)
	if err != nil {
		return nil, "", err
	}

	me, err := client.Session.User("@me")
	if err != nil {
		return nil, "", fmt.Errorf("obteniendo la aplicación: %w", err)
	}

	// Definitions only; nothing here runs a command.
	scratch := store.NewMemory()
	engine := moderation.NewEngine(moderation.Config{WarningLimit: cfg.WarningLimit}, scratch, nil, nil)
	commands.RegisterAll(client, commands.Deps{
		Engine: engine,
		Roles:  reactionrole.NewMapper(scratch, nil),
	})
	return client, me.ID, nil
}

func listCommands(cctx *cli.Context) error {
	client, appID, err := restClient()
	if err != nil {
		return err
	}

	cmds, err := client.CommandHandler.Registered(appID, cctx.String("guild"))
	if err != nil {
		return err
	}
	if len(cmds) == 0 {
		fmt.Fprintln(cctx.App.Writer, "No hay comandos registrados")
		return nil
	}
	for i, cmd := range cmds {
		fmt.Fprintf(cctx.App.Writer, "%d. /%s - %s (ID: %s)\n", i+1, cmd.Name, cmd.Description, cmd.ID)
	}
	return nil
}

func syncCommands(cctx *cli.Context) error {
	client, appID, err := restClient()
	if err != nil {
		return err
	}
	if err := client.CommandHandler.Sync(appID, cctx.String("guild")); err != nil {
		return err
	}
	fmt.Fprintf(cctx.App.Writer, "✅ %d comandos sincronizados\n", len(client.CommandHandler.Global()))
	return nil
}

func cleanCommands(cctx *cli.Context) error {
	client, appID, err := restClient()
	if err != nil {
		return err
	}
	if err := client.CommandHandler.Clear(appID, cctx.String("guild")); err != nil {
		return err
	}
	fmt.Fprintln(cctx.App.Writer, "✅ Todos los comandos han sido eliminados")
	return nil
}
