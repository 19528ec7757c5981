package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/ortelius/pdvd-assess/database"
	"github.com/ortelius/pdvd-assess/internal/ai"
	"github.com/ortelius/pdvd-assess/internal/api"
	"github.com/ortelius/pdvd-assess/internal/config"
	"github.com/ortelius/pdvd-assess/internal/kafka"
	"github.com/ortelius/pdvd-assess/internal/services"
	"github.com/ortelius/pdvd-assess/restapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// backend is satisfied by both the ArangoDB and in-memory stores.
type backend interface {
	restapi.Store
	services.AssessmentRepository
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	var inMemory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST and GraphQL API, and the Kafka worker when enabled",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, loadConfig(v), inMemory)
		},
	}

	cmd.Flags().String("port", "", "Listen port (env PORT)")
	cmd.Flags().Bool("kafka", false, "Consume assessment requests and publish events (env KAFKA_ENABLED)")
	cmd.Flags().BoolVar(&inMemory, "in-memory", false, "Keep data in memory instead of ArangoDB")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("kafka.enabled", cmd.Flags().Lookup("kafka"))
	return cmd
}

func serve(ctx context.Context, cfg config.Config, inMemory bool) error {
	var store backend
	if inMemory {
		logger.Sugar().Warnf("Using in-memory storage, data is lost on exit")
		store = database.NewMemoryStore()
	} else {
		store = database.NewStore(database.InitializeDatabase(ctx, cfg.Arango))
	}

	provider, err := ai.Resolve(cfg.AIProvider, cfg.AI)
	if err != nil {
		return err
	}
	logger.Sugar().Infof("Default AI provider: %s", provider.Name())

	svc := &services.AssessmentService{
		Catalog:      services.NewCVEFetcher(cfg.OSVURL),
		Applications: store,
		Assessments:  store,
		Provider:     provider,
		AIConfig:     cfg.AI,
	}

	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		svc.Publisher = producer

		if err := kafka.RunEventProcessor(ctx, cfg.Kafka, svc); err != nil {
			return err
		}
	}

	app, err := api.NewFiberApp(store, svc, svc.Catalog)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Sugar().Infof("Starting server on port %s", cfg.Port)
		logger.Sugar().Infof("GraphQL endpoint available at /api/v1/graphql")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Sugar().Infof("Shutting down server")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}
