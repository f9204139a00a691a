// Command esgea-client plays a game of esgea against a running server.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bcspragu/esgea/client"
	"github.com/bcspragu/esgea/esgea"
	termio "github.com/bcspragu/esgea/io"
	"github.com/bcspragu/esgea/web"
	"github.com/namsral/flag"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		scheme = flag.String("scheme", "http", "The scheme of the server to connect to to play the game.")
		addr   = flag.String("addr", "localhost:8080", "The address of the server to connect to to play the game.")
		gameID = flag.String("game", "", "The ID of the game to join, will create one if its blank")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	c, err := client.New(*scheme, *addr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create client")
	}

	gID := esgea.GameID(*gameID)
	if gID == "" {
		if gID, err = c.CreateGame(); err != nil {
			log.Fatal().Err(err).Msg("failed to create game")
		}
		fmt.Printf("Created game %q\n", gID)
	}

	pID, err := c.JoinGame(gID, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to join game")
	}
	fmt.Printf("Joined game %q as player %d\n", gID, pID)

	// Now that we've joined the game, connect via WebSockets.
	go func() {
		err := c.ListenForUpdates(gID, client.WSHooks{
			OnObservation: func(obs *web.Observation) {
				fmt.Printf("\n[%d] %s\n", obs.Seq, obs.Description)
			},
			OnPlayerJoined: func(pj *web.PlayerJoined) {
				fmt.Printf("\nPlayer %d joined, %d players in the game\n", pj.PlayerID, pj.Players)
			},
		})
		log.Error().Err(err).Msg("stopped listening for updates")
	}()

	if err := play(c, gID, pID); err != nil {
		log.Fatal().Err(err).Msg("game ended unexpectedly")
	}
}

func play(c *client.Client, gID esgea.GameID, pID esgea.PlayerID) error {
	p := &termio.Prompt{In: os.Stdin, Out: os.Stdout}
	for {
		if err := p.Wait("Press ENTER to start your turn"); err != nil {
			return nil
		}
		if _, err := c.StartTurn(gID); err != nil {
			fmt.Printf("Couldn't start turn: %v\n", err)
			continue
		}

		if err := turn(c, gID, pID, p); err != nil {
			if errors.Is(err, termio.ErrQuit) {
				return nil
			}
			return err
		}
	}
}

func turn(c *client.Client, gID esgea.GameID, pID esgea.PlayerID, p *termio.Prompt) error {
	for {
		locs, err := c.Locations(gID)
		if err != nil {
			return err
		}
		neighbors := make(map[esgea.LocationID][]esgea.LocationID)
		for _, l := range locs {
			if neighbors[l.ID], err = c.Neighbors(gID, l.ID); err != nil {
				return err
			}
		}
		me, err := c.Me(gID)
		if err != nil {
			return err
		}
		termio.PrintLocations(p.Out, locs, neighbors)
		termio.PrintPlayers(p.Out, []esgea.Player{*me})

		a, err := p.Action(pID)
		switch {
		case errors.Is(err, termio.ErrEndTurn):
			return nil
		case errors.Is(err, termio.ErrQuit):
			return err
		case err != nil:
			fmt.Printf("Couldn't understand that: %v\n", err)
			continue
		}

		// Observations show up over the websocket too, so there's nothing to
		// print here.
		if _, err := c.Act(gID, a); err != nil {
			fmt.Printf("Can't do that: %v\n", err)
		}
	}
}
