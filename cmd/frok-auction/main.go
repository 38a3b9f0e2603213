// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/johnnyonline/frok-vickrey-auction/api"
	"github.com/johnnyonline/frok-vickrey-auction/auction"
	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/logdb"
	"github.com/johnnyonline/frok-vickrey-auction/lvldb"
	"github.com/johnnyonline/frok-vickrey-auction/nft"
	"github.com/johnnyonline/frok-vickrey-auction/preset"
	"github.com/johnnyonline/frok-vickrey-auction/pricing"
	"github.com/johnnyonline/frok-vickrey-auction/state"
	"github.com/johnnyonline/frok-vickrey-auction/token"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".frok-auction")
}

func initLogger(verbosity int) {
	var level slog.Level
	switch {
	case verbosity <= 0:
		level = slog.LevelError
	case verbosity == 1:
		level = slog.LevelWarn
	case verbosity <= 3:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}
	w := os.Stderr
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "frok-auction",
		Usage:     "Vickrey auction house for the Frok collection",
		Copyright: "2023 The Frok developers",
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			memDBFlag,
		},
		Action: defaultAction,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	initLogger(ctx.Int(verbosityFlag.Name))
	log := slog.With("pkg", "main")

	cfgPath := ctx.String(configFlag.Name)
	if cfgPath == "" {
		return errors.New("--config is required")
	}
	cfg, err := preset.Load(cfgPath)
	if err != nil {
		return err
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		return err
	}

	kv, logDB, err := openDatabases(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Warn("could not close state db", "err", err)
		}
		if err := logDB.Close(); err != nil {
			log.Warn("could not close log db", "err", err)
		}
	}()

	st := state.New(kv)
	paymentToken := token.New(frok.PaymentTokenAddr, st)
	collection := nft.New(frok.NFTAddr, st)
	collection.Initialize(resolved.Owner)
	if err := collection.SetMinter(resolved.Owner, frok.AuctionHouseAddr); err != nil {
		return errors.Wrap(err, "set minter")
	}
	if err := st.Commit(); err != nil {
		return errors.Wrap(err, "commit genesis")
	}

	house, err := auction.New(auction.Options{
		State:                           st,
		Token:                           paymentToken,
		NFT:                             collection,
		PriceProvider:                   pricing.NewMidpoint(),
		LogDB:                           logDB,
		Owner:                           resolved.Owner,
		ProceedsReceiver:                resolved.ProceedsReceiver,
		TimeBuffer:                      resolved.TimeBuffer,
		ReservePrice:                    resolved.ReservePrice,
		MinBidIncrementPercentage:       resolved.MinBidIncrementPercentage,
		Duration:                        resolved.Duration,
		ProceedsReceiverSplitPercentage: resolved.ProceedsReceiverSplitPercentage,
	})
	if err != nil {
		return errors.Wrap(err, "open auction house")
	}

	handler := api.New(house, logDB, ctx.String(apiCorsFlag.Name))
	srv := &http.Server{Handler: handler}

	listener, err := net.Listen("tcp", ctx.String(apiAddrFlag.Name))
	if err != nil {
		return errors.Wrap(err, "listen API addr")
	}
	log.Info("API started", "addr", listener.Addr(), "version", fullVersion())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return errors.Wrap(err, "API server")
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDatabases(ctx *cli.Context) (*lvldb.LevelDB, *logdb.LogDB, error) {
	if ctx.Bool(memDBFlag.Name) {
		kv, err := lvldb.NewMem()
		if err != nil {
			return nil, nil, errors.Wrap(err, "open mem state db")
		}
		logDB, err := logdb.NewMem()
		if err != nil {
			return nil, nil, errors.Wrap(err, "open mem log db")
		}
		return kv, logDB, nil
	}

	dataDir := ctx.String(dataDirFlag.Name)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, nil, errors.Wrap(err, "create data dir")
	}
	kv, err := lvldb.New(filepath.Join(dataDir, "state.db"), lvldb.Options{})
	if err != nil {
		return nil, nil, errors.Wrap(err, "open state db")
	}
	logDB, err := logdb.New(filepath.Join(dataDir, "logs.db"))
	if err != nil {
		kv.Close()
		return nil, nil, errors.Wrap(err, "open log db")
	}
	return kv, logDB, nil
}
