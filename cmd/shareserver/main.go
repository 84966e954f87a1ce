package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/share-engine/api/sharehandler"
	"github.com/ruteri/share-engine/cmd/flags"
	"github.com/ruteri/share-engine/common"
	"github.com/ruteri/share-engine/engine"
	"github.com/ruteri/share-engine/httpserver"
	"github.com/ruteri/share-engine/interfaces"
	"github.com/ruteri/share-engine/metrics"
	"github.com/ruteri/share-engine/storage"
	"github.com/urfave/cli/v2"
)

var ShareServiceLogFlag = flags.LogServiceFlagFn("share-engine")

func main() {
	app := &cli.App{
		Name:  "share-server",
		Usage: "Serve the secret sharing engine",
		Flags: append([]cli.Flag{
			flags.ListenAddrFlag,
			flags.StoreFlag,
			flags.AggregateModeFlag,
			flags.PartyViewsFlag,
			flags.MaxBodySizeFlag,
			ShareServiceLogFlag,
		}, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flags.ListenAddrFlag.Name))

			aggregateMode, err := flags.AggregateMode(cCtx)
			if err != nil {
				return err
			}

			locations, err := flags.StorageLocations(cCtx)
			if err != nil {
				return err
			}

			var store interfaces.ShareStore
			if len(locations) > 0 {
				store, err = storage.NewStorageBackendFactory(logger).CreateMultiStore(locations)
				if err != nil {
					logger.Error("Failed to create share store", "err", err)
					return err
				}
				logger.Info("Share store configured", "location", store.LocationURI())
			} else {
				logger.Warn("No --store configured, records can only be passed inline")
			}

			metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
			if err != nil {
				logger.Error("Failed to create metrics server", "err", err)
				return err
			}

			engineCfg := engine.Config{
				AggregateMode: aggregateMode,
				Metrics:       metricsSrv.Engine(),
				Log:           logger,
			}
			if cCtx.Bool(flags.PartyViewsFlag.Name) {
				engineCfg.PartyViews = storage.NewMemoryPartyViewStore()
			}

			eng, err := engine.New(engineCfg)
			if err != nil {
				logger.Error("Failed to create share engine", "err", err)
				return err
			}

			server, err := httpserver.New(cfg, sharehandler.NewHandler(eng, store, logger), metricsSrv)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
