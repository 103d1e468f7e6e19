package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gameverse-sync-go/internal/common"
	"gameverse-sync-go/internal/config"
	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/session"
	"gameverse-sync-go/internal/sync"
	"gameverse-sync-go/internal/wallet"

	"go.uber.org/zap"
)

func printSnapshot(sess *session.Session, snap *models.Snapshot) {
	common.PrintHeader("GAMEVERSE DASHBOARD", common.DefaultWidth)
	fmt.Printf("Wallet:        %s\n", sess.Address())
	fmt.Printf("Native:        %s ETH\n", sess.NativeBalance().StringFixed(4))
	fmt.Printf("Token balance: %s GV\n", snap.Balance.StringFixed(2))
	fmt.Printf("Owned games:   %d of %d in catalog\n", len(snap.OwnedGames), len(snap.CatalogGames))

	unlocked, claimed := 0, 0
	for _, a := range snap.Achievements {
		if a.Unlocked {
			unlocked++
		}
		if a.Claimed {
			claimed++
		}
	}
	fmt.Printf("Achievements:  %d unlocked, %d claimed of %d\n", unlocked, claimed, len(snap.Achievements))
	fmt.Printf("Transactions:  %d recent\n", len(snap.Transactions))

	for i, game := range snap.OwnedGames {
		if i == 0 {
			common.PrintBoxSeparator(78)
		}
		fmt.Printf("%s %-28s %3d%% [%s]\n",
			common.BoxPrefix(i == len(snap.OwnedGames)-1),
			game.Title, game.Progress, game.Status)
	}

	common.PrintFooter(fmt.Sprintf("Loaded at %s", snap.LoadedAt.Format(time.RFC3339)), common.DefaultWidth)
}

func main() {
	connectFlag := flag.Bool("connect", false, "Prompt the wallet for account access instead of resuming")
	flag.Parse()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zap.L().Info("Starting GameVerse dashboard")

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	sess := session.New(services.WalletProvider, services.DbService)
	synchronizer := sync.New(services.DbService, sess, cfg.Sync)

	var user *models.User
	if *connectFlag {
		user, err = sess.Connect(ctx)
	} else {
		user, err = sess.Resume(ctx)
	}
	if err != nil {
		if errors.Is(err, wallet.ErrUserRejected) {
			zap.L().Fatal("Wallet connection rejected by user")
		}
		zap.L().Fatal("Failed to establish session", zap.Error(err))
	}
	if user == nil {
		zap.L().Fatal("No authorized wallet account; re-run with --connect")
	}

	snap, err := synchronizer.Load(ctx)
	if err != nil {
		zap.L().Fatal("Initial load failed", zap.Error(err))
	}
	printSnapshot(sess, snap)

	// React to wallet account switches: re-resolve identity, then rebuild
	// or clear the snapshot to match.
	go services.WalletProvider.WatchAccounts(ctx, func(accounts []string) {
		changedUser, err := sess.HandleAccountsChanged(ctx, accounts)
		if err != nil {
			zap.L().Error("Failed to handle account change", zap.Error(err))
			return
		}
		if changedUser == nil {
			synchronizer.ClearSnapshot()
			zap.L().Info("Wallet disconnected, snapshot cleared")
			return
		}
		if snap, err := synchronizer.Load(ctx); err == nil {
			printSnapshot(sess, snap)
		}
	})

	refresher := sync.NewRefresher(synchronizer, sess, cfg.Sync.RefreshInterval)
	refresher.OnRefresh = func() {
		if snap := synchronizer.Snapshot(); snap != nil {
			printSnapshot(sess, snap)
		}
	}
	refresher.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	zap.L().Info("Dashboard running", zap.Duration("refresh_interval", cfg.Sync.RefreshInterval))
	zap.L().Info("Press Ctrl+C to stop")

	<-sigChan
	zap.L().Info("Shutdown signal received, stopping dashboard")
	refresher.Stop()
	cancel()
}
