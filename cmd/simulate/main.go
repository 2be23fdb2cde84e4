// Package main provides the simulate binary, which creates a character and
// plays a scripted action plan through the engine until the decade is over.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/decade/internal/config"
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/game/dice"
	"github.com/cory-johannsen/decade/internal/gameplay"
	"github.com/cory-johannsen/decade/internal/observability"
	"github.com/cory-johannsen/decade/internal/storage"
	"github.com/cory-johannsen/decade/internal/storage/memory"
	"github.com/cory-johannsen/decade/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	name := flag.String("name", "Wanderer", "character name")
	className := flag.String("class", "warrior", "character class: warrior, mage, or rogue")
	planFlag := flag.String("plan", "train,study,explore,battle,rest,explore", "comma-separated actions repeated until the game completes")
	maxAttempts := flag.Int("max-attempts", gameplay.DefaultMaxAttempts, "give up after this many actions")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	class, err := character.ParseClass(*className)
	if err != nil {
		logger.Fatal("parsing class", zap.Error(err))
	}
	plan, err := gameplay.ParsePlan(strings.Split(*planFlag, ","))
	if err != nil {
		logger.Fatal("parsing plan", zap.Error(err))
	}
	exploreGold, err := dice.Parse(cfg.Game.ExploreGoldDice)
	if err != nil {
		logger.Fatal("parsing explore gold dice", zap.Error(err))
	}

	var src dice.Source
	if cfg.Game.Seed != 0 {
		src = dice.NewSeededSource(cfg.Game.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	roller := dice.NewLoggedRoller(src, logger)

	catalog, err := content.LoadCatalog(cfg.Game.ContentDir, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}

	var store storage.Store
	switch cfg.Storage.Driver {
	case "postgres":
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = postgres.NewStore(pool.DB(), catalog)
	default:
		store = memory.New(catalog)
	}

	svc := gameplay.NewService(store, roller, exploreGold, logger)
	sess, c, err := svc.CreateGame(ctx, *name, class)
	if err != nil {
		logger.Fatal("creating game", zap.Error(err))
	}
	logger.Info("simulation starting",
		zap.String("session_id", sess.ID.String()),
		zap.String("storage", cfg.Storage.Driver),
		zap.Int64("seed", cfg.Game.Seed),
		zap.Int("plan_length", len(plan)),
	)

	sum, err := svc.Play(ctx, sess.ID, plan, *maxAttempts)
	if err != nil {
		logger.Error("simulation stopped", zap.Error(err))
	}

	final, err := svc.Character(ctx, c.ID)
	if err != nil {
		logger.Fatal("loading final character", zap.Error(err))
	}
	fmt.Fprintf(os.Stdout, "%s the %s: level %d, power %d, gold %d, reputation %d\n",
		final.Name, final.Class, final.Level, final.TotalPower(), final.Gold, final.Reputation)
	fmt.Fprintf(os.Stdout, "turns=%d attempts=%d events=%d battles=%d completed=%v\n",
		sum.Turns, sum.Attempts, sum.Events, sum.Battles, sum.Completed)
	if sum.Completed {
		fmt.Fprintf(os.Stdout, "ending=%s score=%d\n%s\n", sum.Ending, sum.FinalScore, sum.Ending.Narrative())
	}
	logger.Info("simulation finished", zap.Duration("elapsed", time.Since(start)))
}
