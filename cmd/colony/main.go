package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"colony/config"
	"colony/game"
	"colony/logging"
	"colony/network"
	"colony/room"
)

var (
	species1 string
	species2 string
	seed     int64
	seconds  float64
	autobuy  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "colony",
		Short: "Two-player colony growth match server",
		Long: `Runs colony matches: worker units forage for food, stockpiles buy
upgrades, and a fixed-rate driver publishes snapshots to clients.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&species1, "p1", "FIRE", "Species for player 1")
	rootCmd.PersistentFlags().StringVar(&species2, "p2", "LEAF", "Species for player 2")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve matches over HTTP and websockets",
		RunE:  runServe,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one headless match and print the colonies",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().Int64VarP(&seed, "seed", "s", 1, "Random seed")
	simulateCmd.Flags().Float64VarP(&seconds, "seconds", "t", 60, "Simulated match length in seconds")
	simulateCmd.Flags().BoolVarP(&autobuy, "autobuy", "a", false, "Buy the cheapest affordable upgrade whenever possible")

	rootCmd.AddCommand(serveCmd, simulateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadTables(cfg config.DataConfig) (game.BalanceTable, *game.Catalog, error) {
	balance := game.DefaultBalance()
	catalog := game.DefaultCatalog()
	var err error
	if cfg.BalancePath != "" {
		if balance, err = game.LoadBalance(cfg.BalancePath); err != nil {
			return nil, nil, err
		}
	}
	if cfg.CatalogPath != "" {
		if catalog, err = game.LoadCatalog(cfg.CatalogPath); err != nil {
			return nil, nil, err
		}
	}
	return balance, catalog, nil
}

func selections() []game.Selection {
	return []game.Selection{
		{Player: game.Player1, SpeciesID: species1},
		{Player: game.Player2, SpeciesID: species2},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Init(cfg.Logging)
	logger := slog.Default()

	balance, catalog, err := loadTables(cfg.Data)
	if err != nil {
		return err
	}

	factory := func() (*game.Match, error) {
		s := cfg.Sim.Seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		return game.NewMatch(game.MatchSettings{Selections: selections(), Seed: s}, balance, catalog)
	}
	// Fail at startup, not on the first room, if the selections are bad.
	if _, err := factory(); err != nil {
		return err
	}

	manager := room.NewManager(factory, room.Options{
		TickHz:      cfg.Sim.TickHz,
		BroadcastHz: cfg.Sim.BroadcastHz,
		Logger:      logger,
	})
	defer manager.CloseAll()

	srv := network.NewServer(manager, network.Options{
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		PurchasesPerSecond: cfg.RateLimit.PurchasesPerSecond,
		PurchaseBurst:      cfg.RateLimit.Burst,
		Catalog:            catalog,
		Logger:             logger,
	})
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	titleColor := color.New(color.FgCyan, color.Bold)
	infoColor := color.New(color.FgYellow)

	match, err := game.NewMatch(game.MatchSettings{Selections: selections(), Seed: seed},
		game.DefaultBalance(), game.DefaultCatalog())
	if err != nil {
		return err
	}

	titleColor.Println("\nColony match")
	infoColor.Printf("%s vs %s, seed %d, %.0fs at %d Hz\n\n", species1, species2, seed, seconds, game.DefaultTickHz)

	dt := 1 / float64(game.DefaultTickHz)
	ticks := int(seconds * float64(game.DefaultTickHz))
	bought := 0
	for i := 0; i < ticks; i++ {
		match.Tick(dt)
		if autobuy {
			for _, p := range game.Players {
				if buyCheapest(match, p) {
					bought++
				}
			}
		}
	}
	snap := match.Snapshot()

	printColonies(snap)
	printUpgrades(match.Catalog(), snap)
	if autobuy {
		infoColor.Printf("\n%d upgrades bought\n", bought)
	}
	color.New(color.FgGreen, color.Bold).Printf("\nFinished at tick %d (%.2fs)\n", snap.Tick, snap.Time)
	return nil
}

// buyCheapest buys the cheapest next level player can afford.
func buyCheapest(m *game.Match, player int) bool {
	econ, err := m.Economy(player)
	if err != nil {
		return false
	}
	defs := m.Catalog().All()
	sort.SliceStable(defs, func(i, j int) bool {
		return nextCost(defs[i], econ) < nextCost(defs[j], econ)
	})
	for _, d := range defs {
		if c := nextCost(d, econ); c <= econ.Food {
			return m.Purchase(player, d.ID) == nil
		}
	}
	return false
}

func nextCost(d game.UpgradeDef, econ game.EconomySnapshot) int {
	lvl := econ.Levels[d.ID]
	if lvl >= d.MaxLevel {
		return int(^uint(0) >> 1)
	}
	return d.Costs[lvl]
}

func printColonies(snap game.Snapshot) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Player", "Food", "Units", "Spawn (s)", "Gather (s)", "Mortality", "Capabilities"}),
	)
	for _, e := range snap.Economies {
		caps := "-"
		if len(e.Capabilities) > 0 {
			caps = fmt.Sprint(e.Capabilities)
		}
		table.Append([]string{
			fmt.Sprintf("%d", e.Player),
			fmt.Sprintf("%d", e.Food),
			fmt.Sprintf("%d", e.Units),
			fmt.Sprintf("%.3f", e.Dashboard.SpawnInterval),
			fmt.Sprintf("%.3f", e.Dashboard.GatherDuration),
			fmt.Sprintf("%.0f%%", e.Dashboard.Mortality*100),
			caps,
		})
	}
	table.Render()
}

func printUpgrades(catalog *game.Catalog, snap game.Snapshot) {
	fmt.Println()
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Upgrade", "Effect", "Max", "P1", "P2"}),
	)
	for _, d := range catalog.All() {
		table.Append([]string{
			d.Title,
			d.Effect.Kind.String(),
			fmt.Sprintf("%d", d.MaxLevel),
			fmt.Sprintf("%d", snap.Economy(game.Player1).Levels[d.ID]),
			fmt.Sprintf("%d", snap.Economy(game.Player2).Levels[d.ID]),
		})
	}
	table.Render()
}
