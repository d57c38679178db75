package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/sitewarden/sitecloner/api/cloner"
	"github.com/sitewarden/sitecloner/certstore"
	"github.com/sitewarden/sitecloner/cmd/flags"
	"github.com/sitewarden/sitecloner/httpserver"
	"github.com/sitewarden/sitecloner/interfaces"
	"github.com/sitewarden/sitecloner/provisioning"
)

var serviceFlags = []cli.Flag{
	flags.ListenAddrFlag,
	flags.ThumbprintFlag,
	flags.ClientIDFlag,
	flags.TenantFlag,
	flags.CertStoreFlag,
	flags.AuthorityFlag,
	flags.ResolverAddrFlag,
	flags.FunctionKeyFlag,
}

func main() {
	app := &cli.App{
		Name:  "sitecloner",
		Usage: "Copy a site's provisioning template onto another site",
		Flags: append(serviceFlags, flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			// Setup logger
			logger := flags.SetupLogger(cCtx)

			// The identity is read once here and shared by every request;
			// missing values surface later as certificate or auth failures.
			identity := flags.Identity(cCtx)

			var locations []interfaces.StoreLocation
			for _, uri := range cCtx.StringSlice(flags.CertStoreFlag.Name) {
				location, err := interfaces.NewStoreLocation(uri)
				if err != nil {
					logger.Error("Invalid certificate store URI", "err", err, "uri", uri)
					return err
				}
				locations = append(locations, location)
			}

			storeFactory := certstore.NewCertStoreFactory(logger)
			store, err := storeFactory.CreateMultiStore(locations)
			if err != nil {
				logger.Error("Failed to create certificate store", "err", err)
				return err
			}
			logger.Info("Certificate store configured", "store", store.LocationURI())

			engine := provisioning.NewEngine(&provisioning.EngineConfig{
				Identity:     identity,
				Authority:    cCtx.String(flags.AuthorityFlag.Name),
				ResolverAddr: cCtx.String(flags.ResolverAddrFlag.Name),
				Log:          logger,
			})

			// The engine serves as session factory, extractor and applier
			handler := cloner.NewHandler(identity, store, engine, engine, engine, nil, logger)

			srv, err := httpserver.New(flags.ConfigureServer(cCtx, logger), handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			srv.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			// Shutdown server gracefully
			srv.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
