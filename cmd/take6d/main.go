// Command take6d runs a console match of Take 6 against the AI move
// service: human on stdin, engine and session in-process, optional Redis
// round log and Postgres match records when configured.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/git-sudo-404/6-Nimmit/engine"
	"github.com/git-sudo-404/6-Nimmit/internal/cache"
	"github.com/git-sudo-404/6-Nimmit/internal/config"
	"github.com/git-sudo-404/6-Nimmit/internal/database"
	"github.com/git-sudo-404/6-Nimmit/internal/game"
	"github.com/git-sudo-404/6-Nimmit/internal/gateway"
)

func main() {
	cfg := config.Load()

	logrus.SetLevel(cfg.LogLevel)

	ctx := context.Background()

	if cfg.RedisAddr != "" {
		if err := cache.Connect(ctx, cfg.RedisAddr); err != nil {
			logrus.WithError(err).Warn("redis unavailable, round log disabled")
		} else {
			defer cache.Close()
		}
	}
	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			logrus.WithError(err).Warn("database unavailable, match records disabled")
		} else {
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				logrus.WithError(err).Fatal("migration failed")
			}
		}
	}

	gw := gateway.NewClient(cfg.GatewayURL,
		gateway.WithTimeout(cfg.GatewayTimeout),
		gateway.WithRetries(cfg.GatewayRetries),
		gateway.WithBackoff(cfg.GatewayBackoff),
	)

	seed := uint64(time.Now().UnixNano())
	g := game.NewNimmtGame(seed, engine.DefaultRules(), gw, cfg.Algorithm)
	defer g.Close()

	var awaitingRow atomic.Bool
	done := make(chan struct{})

	g.BroadcastFn = func(ev game.GameEvent) {
		printEvent(ev)
		if ev.Type == game.EventAwaitRowChoice {
			awaitingRow.Store(true)
		}
	}
	g.OnGameEnd = func(_, _ uuid.UUID, _ map[uuid.UUID]int) {
		close(done)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("\nabandoning match")
		g.Close()
		os.Exit(0)
	}()

	if err := g.Start(); err != nil {
		logrus.WithError(err).Fatal("failed to start game")
	}

	in := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-done:
			fmt.Println("match over")
			return
		default:
		}

		printBoard(g)
		if awaitingRow.Load() {
			fmt.Print("no row fits your card; pick a row to take (1-4): ")
			if !in.Scan() {
				return
			}
			n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
			if err != nil || n < 1 || n > int(engine.NumRows) {
				fmt.Println("enter a row number between 1 and 4")
				continue
			}
			if err := g.ProvideHumanRowChoice(engine.RowIndex(n - 1)); err != nil {
				fmt.Println("rejected:", err)
				continue
			}
			awaitingRow.Store(false)
			continue
		}

		fmt.Printf("your hand: %v\n", cardNumbers(g.HumanHand()))
		fmt.Print("play a card: ")
		if !in.Scan() {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err != nil {
			fmt.Println("enter a card number from your hand")
			continue
		}
		if err := g.SubmitHumanMove(engine.Card(n), engine.NoRow); err != nil {
			if !awaitingRow.Load() {
				fmt.Println("rejected:", err)
			}
			continue
		}

		// The AI's play arrives asynchronously; give the resolver a moment
		// before redrawing so the round's events print first.
		waitForRound(g, done)
	}
}

// waitForRound blocks until the current submission window has closed,
// i.e. the round resolved, a row prompt appeared, or the match ended.
func waitForRound(g *game.NimmtGame, done <-chan struct{}) {
	for i := 0; i < 100; i++ {
		select {
		case <-done:
			return
		case <-time.After(100 * time.Millisecond):
		}
		snap := g.StateSnapshot()
		if snap.Phase == engine.PhaseAwaitingSubmissions && !snap.Subs[engine.Human].Present {
			return
		}
		if snap.Phase == engine.PhaseResolving && snap.Pending.Active {
			return
		}
	}
}

func printBoard(g *game.NimmtGame) {
	snap := g.StateSnapshot()
	fmt.Printf("\nround %d  deal %d  score you=%d ai=%d\n",
		snap.RoundNumber+1, snap.DealNumber, snap.Scores[engine.Human], snap.Scores[engine.AI])
	for r := 0; r < int(engine.NumRows); r++ {
		fmt.Printf("  row %d:", r+1)
		for i := uint8(0); i < snap.RowLens[r]; i++ {
			fmt.Printf(" %3d", snap.Rows[r][i])
		}
		fmt.Println()
	}
}

func printEvent(ev game.GameEvent) {
	switch ev.Type {
	case game.EventDealt:
		fmt.Printf("-- deal %d: hands are out\n", ev.Deal)
	case game.EventPlaced:
		fmt.Printf("-- %s plays %d onto row %d\n", ev.Actor, ev.Card, *ev.Row+1)
	case game.EventRowTaken:
		verb := "takes"
		if ev.Forced {
			verb = "is forced to take"
		}
		fmt.Printf("-- %s plays %d and %s row %d (%d bull heads: %v)\n",
			ev.Actor, ev.Card, verb, *ev.Row+1, ev.BullHeads, ev.Taken)
	case game.EventRoundComplete:
		fmt.Printf("-- round %d complete, score you=%d ai=%d\n", ev.Round, ev.Scores.Human, ev.Scores.AI)
	case game.EventGameOver:
		if ev.Draw {
			fmt.Println("-- game over: draw")
		} else {
			fmt.Printf("-- game over: %s wins (you=%d ai=%d)\n", ev.Winner, ev.Scores.Human, ev.Scores.AI)
		}
	}
}

func cardNumbers(hand []engine.Card) []int {
	out := make([]int, len(hand))
	for i, c := range hand {
		out[i] = int(c)
	}
	return out
}
