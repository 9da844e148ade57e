package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"address-gateway/core/loader"
	"address-gateway/core/metrics"
	"address-gateway/core/server"
	"address-gateway/core/usps"
	"address-gateway/feature/validation"

	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "address-gateway/docs/swagger"
)

// @title Address Gateway API
// @version 1.0
// @description Caching, credential rotating proxy in front of the USPS Addresses API.
// @host localhost:10000
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the address gateway server",
	Long:  `Validates the configuration, then serves the address validation endpoint until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration and Logger
		cfg, logg, err := loadConfig(envDir(cmd))
		if logg == nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer logg.Sync()
		if err != nil {
			logg.Fatal("Invalid configuration", zap.Error(err))
		}
		zap.ReplaceGlobals(logg)

		// 2. Build the gateway (credential pool, cache, provider client)
		gw, err := newGateway(cfg, logg)
		if err != nil {
			logg.Fatal("Failed to build gateway", zap.Error(err))
		}

		// 3. Initialize Fiber App with global middleware
		app := server.NewApp(cfg.Server, logg, usps.ServiceError)

		// 4. Swagger Documentation
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 5. Load Features
		mgr := loader.NewManager()
		mgr.Register(validation.NewFeature(gw.service))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 6. Metrics report (optional)
		if cfg.Metrics.Enabled {
			reporter, err := metrics.NewReporter(cfg.Metrics, gw.tracker, logg.Named("metrics"))
			if err != nil {
				logg.Fatal("Failed to schedule metrics report", zap.Error(err))
			}
			reporter.Start()
			defer reporter.Stop()
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("address", cfg.Server.Address()),
				zap.Int("credentials", gw.pool.Size()),
				zap.Int("cache_count", cfg.Cache.Count))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
