package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/sitewarden/sitecloner/api"
	"github.com/sitewarden/sitecloner/common"
	"github.com/sitewarden/sitecloner/interfaces"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJSONFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUIDFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

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

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *api.HTTPServerConfig {
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		FunctionKeys:             cCtx.StringSlice(FunctionKeyFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,

		// Clone responses stay open for the whole pipeline, so the write
		// side has no deadline.
		WriteTimeout: 0,
	}
}

// Identity reads the app principal from flags or environment. The values
// are not validated here: a wrong thumbprint or client ID surfaces as a
// certificate or authentication failure once a clone runs.
func Identity(cCtx *cli.Context) interfaces.AppIdentity {
	return interfaces.AppIdentity{
		ClientID:   cCtx.String(ClientIDFlag.Name),
		TenantID:   cCtx.String(TenantFlag.Name),
		Thumbprint: interfaces.NewThumbprint(cCtx.String(ThumbprintFlag.Name)),
	}
}

var ThumbprintFlag = &cli.StringFlag{
	Name:    "thumbprint",
	EnvVars: []string{"THUMBPRINT"},
	Usage:   "thumbprint of the client certificate used for app-only authentication",
}

var ClientIDFlag = &cli.StringFlag{
	Name:    "client-id",
	EnvVars: []string{"CLIENT_ID"},
	Usage:   "application (client) ID of the app registration",
}

var TenantFlag = &cli.StringFlag{
	Name:    "tenant",
	EnvVars: []string{"TENANT"},
	Usage:   "tenant the app registration lives in",
}

var CertStoreFlag = &cli.StringSliceFlag{
	Name:    "cert-store",
	EnvVars: []string{"CERT_STORE"},
	Value:   cli.NewStringSlice("file:///var/lib/sitecloner/certs"),
	Usage:   "certificate store location URI (file://, vault:// or s3://), repeatable",
}

var AuthorityFlag = &cli.StringFlag{
	Name:    "authority",
	EnvVars: []string{"AUTHORITY"},
	Usage:   "identity provider base URL, defaults to the public one",
}

var ResolverAddrFlag = &cli.StringFlag{
	Name:  "resolver-addr",
	Usage: "DNS resolver (host:port) used to preflight site hosts, empty disables the preflight",
}

var FunctionKeyFlag = &cli.StringSliceFlag{
	Name:    "function-key",
	EnvVars: []string{"FUNCTION_KEYS"},
	Usage:   "shared access key required on API requests, repeatable; no keys disables the check",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var LogJSONFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUIDFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: common.PackageName,
	Usage: "add 'service' tag to logs",
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

var CommonFlags = []cli.Flag{
	LogJSONFlag,
	LogDebugFlag,
	LogUIDFlag,
	LogServiceFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
