package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/forumcore/config"
	"github.com/cppla/forumcore/models"
	"github.com/cppla/forumcore/repository"
	"github.com/cppla/forumcore/routes"
	"github.com/cppla/forumcore/services"
	"github.com/cppla/forumcore/utils"
)

// NewServeCommand starts the HTTP API.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(&models.Post{})

	forum := services.New(repository.NewGormRepository(db), services.Options{
		Logger:             utils.Logger.Named("forum"),
		MaxConflictRetries: cfg.MaxConflictRetries,
		PageSize:           cfg.DefaultPageSize,
		MaxPageSize:        cfg.MaxPageSize,
	})
	r := routes.SetupRouter(forum)

	utils.Logger.Info("starting server",
		zap.String("port", cfg.AppPort), zap.String("driver", cfg.DBDriver), zap.Bool("cache", cfg.RedisHost != ""))
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
