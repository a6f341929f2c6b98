package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/salam-labs/adzan/internal/adapters/aladhan"
	"github.com/salam-labs/adzan/internal/adapters/bigdatacloud"
	"github.com/salam-labs/adzan/internal/adapters/httpapi"
	"github.com/salam-labs/adzan/internal/adapters/memorybus"
	"github.com/salam-labs/adzan/internal/adapters/mqtt"
	redisadapter "github.com/salam-labs/adzan/internal/adapters/redis"
	"github.com/salam-labs/adzan/internal/adapters/sqlite"
	"github.com/salam-labs/adzan/internal/app"
	"github.com/salam-labs/adzan/internal/buildinfo"
	"github.com/salam-labs/adzan/internal/config"
	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

var (
	configFile string
	addrFlag   string
	dbFlag     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "adzan-server",
		Short:         "Service d'horaires de prière et de notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Fichier de configuration (défaut: ./adzan.yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Démarre l'API, le poller et le dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addrFlag
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbFlag
			}
			return serve(cfg)
		},
	}
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Adresse d'écoute (ex: 127.0.0.1:8080)")
	serveCmd.Flags().StringVar(&dbFlag, "db", "", "Chemin SQLite (ex: adzan.db)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Affiche la version",
		Run: func(cmd *cobra.Command, args []string) {
			info := buildinfo.Current()
			fmt.Printf("%s %s %s %s\n", info.Version, info.Commit, info.Date, info.GoVersion)
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Erreur:", err)
		os.Exit(1)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Str("app", "adzan-server").Logger()
	log.Logger = logger
	return logger
}

func serve(cfg config.Config) error {
	logger := newLogger(cfg.LogLevel)
	logger.Info().Interface("build", buildinfo.Current()).Str("db", cfg.DBPath).Str("cache", cfg.Cache.Backend).Msg("starting")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	bus := memorybus.New()
	defer bus.Close()

	settingsRepo := sqlite.NewSettingsRepository(db.SQL)
	if err := seedSettings(ctx, settingsRepo, cfg); err != nil {
		return err
	}
	settingsSvc := app.NewSettingsService(settingsRepo, bus)

	var cache ports.ScheduleCache = sqlite.NewScheduleCache(db.SQL)
	if cfg.Cache.Backend == "redis" {
		rdb := redisadapter.NewClient(redisadapter.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		redisCache := redisadapter.NewScheduleCache(rdb, cfg.Redis.Prefix, cfg.Redis.TTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, schedule cache degraded")
		}
		cancel()
		cache = redisCache
	}

	source := aladhan.NewClient().
		WithEndpoint(cfg.Aladhan.Endpoint).
		WithHTTPClient(&http.Client{Timeout: cfg.Aladhan.Timeout})
	geocoder := bigdatacloud.NewGeocoder().
		WithEndpoint(cfg.Geocoder.Endpoint).
		WithLanguage(cfg.Geocoder.Language)

	schedules := app.NewScheduleService(logger.With().Str("component", "schedule").Logger(), source, cache, settingsSvc.Get, bus, clock)
	if _, err := schedules.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial schedule degraded")
	}

	history := sqlite.NewNotificationsRepository(db.SQL)
	lastRead := sqlite.NewLastReadRepository(db.SQL)

	notifiers := app.MultiNotifier{app.NewLogNotifier(logger.With().Str("component", "notifier").Logger())}
	var state ports.StatePublisher
	if cfg.MQTT.Enabled {
		pub, err := mqtt.Connect(logger.With().Str("component", "mqtt").Logger(), mqtt.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("mqtt disabled")
		} else {
			defer pub.Close()
			notifiers = append(notifiers, pub)
			state = pub
		}
	}

	dispatcher := app.NewNotificationDispatcher(logger.With().Str("component", "dispatcher").Logger(), bus, settingsSvc.Get, history, notifiers, state)
	go dispatcher.Run(shutdownCtx)

	poller := app.NewPrayerPoller(logger.With().Str("component", "poller").Logger(), schedules, lastRead, history, bus, clock)
	poller.TickInterval = cfg.Poller.Interval
	go poller.Run(shutdownCtx)

	refresher := app.NewRefresher(logger.With().Str("component", "refresher").Logger(), schedules, cache, clock)
	refresher.CheckInterval = cfg.Poller.CheckInterval
	if err := refresher.Start(schedules.Snapshot().Location); err != nil {
		return fmt.Errorf("start refresher: %w", err)
	}
	defer func() { _ = refresher.Stop() }()
	go refresher.Follow(shutdownCtx, bus)

	location := app.NewLocationService(logger.With().Str("component", "location").Logger(), settingsSvc, geocoder, schedules)
	reading := app.NewReadingService(lastRead, clock)

	srv := httpapi.NewServer(logger, httpapi.Services{
		Settings:  settingsSvc,
		Schedules: schedules,
		Location:  location,
		Reading:   reading,
		History:   history,
	}, bus, func(updated domain.Settings) {
		// Méthode ou fuseau peuvent avoir changé.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := schedules.Refresh(ctx); err != nil {
				logger.Warn().Err(err).Msg("refresh after settings update degraded")
			}
		}()
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	logger.Info().Msg("bye")
	return nil
}

// seedSettings applique la méthode et le fuseau de la config tant que l'utilisateur ne les a pas changés.
func seedSettings(ctx context.Context, repo ports.SettingsRepository, cfg config.Config) error {
	current, err := repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	def := domain.DefaultSettings()
	changed := false
	if current.Method == def.Method && cfg.Aladhan.Method > 0 && cfg.Aladhan.Method != def.Method {
		current.Method = cfg.Aladhan.Method
		changed = true
	}
	if current.Timezone == "" && cfg.Timezone != "" {
		current.Timezone = cfg.Timezone
		changed = true
	}
	if !changed {
		return nil
	}
	_, err = repo.Put(ctx, current)
	return err
}
