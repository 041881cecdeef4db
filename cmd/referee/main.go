// Command referee watches a single table fed one card identifier per line,
// from CARDS_FILE or stdin, and prints a verdict for every round.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"sueca-referee/internal/config"
	"sueca-referee/internal/game"
	"sueca-referee/internal/intake"
	"sueca-referee/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadReferee()
	if err != nil {
		log.Fatal().Err(err).Msg("load referee config failed")
	}
	drain, err := game.ParseDrainPolicy(cfg.DrainPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid drain policy")
	}

	var src io.Reader = os.Stdin
	interactive := cfg.CardsFile == ""
	if !interactive {
		f, err := os.Open(cfg.CardsFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CardsFile).Msg("open cards file failed")
		}
		defer f.Close()
		src = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines := intake.NewLines(src)
	if interactive {
		lines.Prompt = "card> "
		lines.Out = os.Stderr
	}
	if err := run(ctx, lines, os.Stdout, game.Rules{RevealTrump: cfg.RevealTrump}, drain); err != nil {
		log.Fatal().Err(err).Msg("referee stopped")
	}
}

func run(ctx context.Context, in game.CardIntake, out io.Writer, rules game.Rules, drain game.DrainPolicy) error {
	p := &printer{out: out}
	table := game.NewTable(rules, drain, p)
	if err := table.Run(ctx, in, p); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d rounds refereed, %d invalidated\n", table.Rounds(), p.invalidated)
	return nil
}

// printer narrates a table on a terminal.
type printer struct {
	out         io.Writer
	invalidated int
}

func (p *printer) RoundStarted(round int, leader game.Seat) {
	fmt.Fprintf(p.out, "round %d, %s leads\n", round, leader)
}

func (p *printer) TrumpSet(round int, card game.Card) {
	fmt.Fprintf(p.out, "trump %s (%s)\n", card, card.Suit.Name())
}

func (p *printer) CardPlayed(round int, res game.PlayResult) {
	if res.Violation != nil {
		return
	}
	fmt.Fprintf(p.out, "  trick %d: %s plays %s\n", res.Trick, res.Seat, res.Card)
	if res.Voided {
		fmt.Fprintf(p.out, "  %s has no %s left\n", res.Seat, res.VoidSuit)
	}
}

func (p *printer) CardsDrained(round int, n int) {
	fmt.Fprintf(p.out, "discarded %d cards of round %d\n", n, round)
}

func (p *printer) RoundFinished(_ context.Context, rep game.RoundReport) {
	if rep.Status == game.RoundComplete {
		fmt.Fprintf(p.out, "round %d OK\n", rep.Number)
		return
	}
	p.invalidated++
	fmt.Fprintf(p.out, "RENUNCIA round %d: %s\n", rep.Number, rep.Detail)
}
