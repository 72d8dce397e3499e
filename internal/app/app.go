package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"zipexplorer/internal/config"
	"zipexplorer/internal/logging"
	"zipexplorer/internal/metrics"
	"zipexplorer/internal/recent"
	"zipexplorer/internal/services"
	"zipexplorer/internal/state"
	"zipexplorer/internal/ui"
)

// App holds the collaborators shared by the interactive browser and the
// plain-text commands.
type App struct {
	Config     config.Config
	ConfigPath string
	Logger     *zap.Logger
	Host       services.Host
	Recent     *recent.Cache

	stopMetrics context.CancelFunc
}

// New builds the collaborators for cfg. logOutput overrides cfg.LogFile
// when cfg.LogFile is empty, so commands that do not own the terminal can
// log to stderr.
func New(cfg config.Config, configPath, logOutput string) (*App, error) {
	output := cfg.LogFile
	if output == "" {
		output = logOutput
	}
	logger, err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		OutputPath: output,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	application := &App{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     logger,
	}
	application.Host, application.Recent, err = buildServices(cfg, logger)
	if err != nil {
		return nil, err
	}
	application.Recent.Load()
	logger.Debug("app ready",
		zap.Bool("demo", cfg.Demo),
		zap.String("platform", application.Host.PlatformDescription()),
	)
	return application, nil
}

func buildServices(cfg config.Config, logger *zap.Logger) (services.Host, *recent.Cache, error) {
	if cfg.Demo {
		host := services.DemoHost()
		for _, path := range []string{"demo/photos.zip", "demo/secret.zip", "demo/broken.zip"} {
			host.QueueSelection(path)
		}
		return host, recent.New(recent.NewMemoryStorage(), logger), nil
	}
	storagePath := cfg.StoragePath
	if storagePath == "" {
		resolved, err := recent.DefaultStoragePath()
		if err != nil {
			return nil, nil, fmt.Errorf("resolve storage path: %w", err)
		}
		storagePath = resolved
	}
	return services.NewZipHost(logger), recent.New(recent.NewFileStorage(storagePath), logger), nil
}

// StartMetrics serves /metrics in the background when an address is
// configured.
func (application *App) StartMetrics() {
	if application.Config.MetricsAddr == "" {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	application.stopMetrics = cancel
	addr := application.Config.MetricsAddr
	go func() {
		if err := metrics.Serve(ctx, addr); err != nil {
			application.Logger.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
}

func (application *App) Close() {
	if application.stopMetrics != nil {
		application.stopMetrics()
	}
	_ = logging.Sync()
}

// RunUI runs the interactive browser, opening initial first when set, and
// saves the display preferences on exit.
func (application *App) RunUI(initial string) error {
	initialState := state.NewState(application.Config)
	initialState.SetRecent(application.Recent.Entries())

	model := ui.NewModel(initialState, application.Host, application.Recent, application.Config, application.Logger)
	if initial != "" {
		model = model.WithInitialArchive(initial)
	}
	if application.Config.Demo {
		model = model.WithStatus("Demo mode - press o to open demo archives (password: secret)")
	}
	program := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	if application.Config.Demo {
		return nil
	}
	if provider, ok := finalModel.(ui.ConfigProvider); ok {
		if err := config.SaveConfig(application.ConfigPath, provider.ConfigSnapshot()); err != nil {
			application.Logger.Warn("save config", zap.Error(err))
			return fmt.Errorf("save config: %w", err)
		}
	}
	return nil
}
