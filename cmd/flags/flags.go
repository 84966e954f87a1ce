package flags

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/share-engine/api"
	"github.com/ruteri/share-engine/common"
	"github.com/ruteri/share-engine/engine"
	"github.com/ruteri/share-engine/interfaces"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger, listenAddr string) *api.HTTPServerConfig {
	metricsAddr := cCtx.String("metrics-addr")
	enablePprof := cCtx.Bool("pprof")
	drainDuration := time.Duration(cCtx.Int64("drain-seconds")) * time.Second
	maxBodySize := cCtx.Int64(MaxBodySizeFlag.Name)

	return &api.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
		MaxRequestBodySize:       maxBodySize,
	}
}

// StorageLocations parses the repeatable --store flag.
func StorageLocations(cCtx *cli.Context) ([]interfaces.StorageLocation, error) {
	uris := cCtx.StringSlice(StoreFlag.Name)
	locations := make([]interfaces.StorageLocation, 0, len(uris))
	for _, uri := range uris {
		loc, err := interfaces.NewStorageLocation(uri)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", StoreFlag.Name, err)
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// AggregateMode parses the --aggregate-mode flag.
func AggregateMode(cCtx *cli.Context) (engine.AggregateMode, error) {
	return engine.ParseAggregateMode(cCtx.String(AggregateModeFlag.Name))
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var ServerAddrFlag = &cli.StringFlag{
	Name:  "server-addr",
	Value: "http://127.0.0.1:8080",
	Usage: "share engine server address to request",
}

var StoreFlag = &cli.StringSliceFlag{
	Name:  "store",
	Usage: "share record storage URI, repeatable (memory://, file://, s3://, ipfs://, vault://, postgres://)",
}

var AggregateModeFlag = &cli.StringFlag{
	Name:  "aggregate-mode",
	Value: string(engine.AggregateLinear),
	Usage: "how aggregation builds its result: 'linear' or 'legacy-split'",
}

var PartyViewsFlag = &cli.BoolFlag{
	Name:  "party-views",
	Value: true,
	Usage: "record each party's share of new records for the party view endpoint",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MaxBodySizeFlag = &cli.Int64Flag{
	Name:  "max-body-bytes",
	Value: api.DefaultMaxRequestBodySize,
	Usage: "maximum size of a share API request body, 0 for no limit",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
