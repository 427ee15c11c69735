package cmd

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/config"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/database"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/database/migration"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/huawei"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/influx"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/inverter"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/mqtt"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/poller"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/publisher"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/server"
	"github.com/anicoll/huawei-solar-integration/pkg/hasher"
	"github.com/anicoll/huawei-solar-integration/pkg/sockets"
)

const cleanupSchedule = "0 3 * * *"

var errCron = errors.New("cron error")

func HuaweiCommand(ctx *cli.Context) error {
	cfg := &config.Config{
		Settings: config.Settings{
			PollInterval:   ctx.Duration("poll-interval"),
			Cooldown:       ctx.Duration("cooldown"),
			ReconnectDelay: ctx.Duration("reconnect-delay"),
			LogLevel:       ctx.String("log-level"),
			MqttCfg: config.MqttConfig{
				Host:     ctx.String("mqtt-host"),
				Username: ctx.String("mqtt-user"),
				Password: ctx.String("mqtt-pass"),
			},
			DatabaseCfg: config.DatabaseConfig{
				URL:              ctx.String("database-url"),
				MigrationsFolder: ctx.String("migrations-folder"),
			},
			InfluxCfg: config.InfluxConfig{
				URL:    ctx.String("influx-url"),
				Token:  ctx.String("influx-token"),
				Org:    ctx.String("influx-org"),
				Bucket: ctx.String("influx-bucket"),
			},
			HTTPCfg: config.HTTPConfig{
				Addr:            ctx.String("http-addr"),
				APISecret:       ctx.String("api-secret"),
				APIPasswordHash: ctx.String("api-password-hash"),
			},
		},
	}
	if host := ctx.String("inverter-host"); host != "" {
		cfg.Inverters = []config.InverterConfig{{
			Name:       host,
			Host:       host,
			Port:       ctx.Int("inverter-port"),
			SlaveID:    uint8(ctx.Uint("slave-id")),
			Optimizers: ctx.Bool("optimizers"),
			Battery:    ctx.Bool("battery"),
		}}
	}
	if err := config.Load(ctx.String("config"), cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := run(ctx.Context, cfg); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// HashPasswordCommand prints the bcrypt hash to use for api-password-hash.
func HashPasswordCommand(ctx *cli.Context) error {
	password := ctx.Args().First()
	if password == "" {
		return errors.New("password argument is required")
	}
	hash, err := hasher.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write([]byte(hash + "\n"))
	return err
}

func run(ctx context.Context, cfg *config.Config) error {
	errorChan := make(chan error, 1000)
	var err error

	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	var db *database.Database
	if cfg.DatabaseCfg.URL != "" {
		if cfg.DatabaseCfg.MigrationsFolder != "" {
			if err := migration.Migrate(cfg.DatabaseCfg.URL, cfg.DatabaseCfg.MigrationsFolder); err != nil {
				return err
			}
		}
		db, err = database.Connect(ctx, cfg.DatabaseCfg.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := publisher.RegisterPublisher("postgres", db); err != nil {
			return err
		}
	}

	if cfg.MqttCfg.Host != "" {
		mqttSvc := mqtt.New(mqtt.NewClient(mqtt.Config{
			Host:     cfg.MqttCfg.Host,
			Username: cfg.MqttCfg.Username,
			Password: cfg.MqttCfg.Password,
		}))
		if err := mqttSvc.Connect(); err != nil {
			return err
		}
		defer mqttSvc.Close()
		if err := publisher.RegisterPublisher("mqtt", mqttSvc); err != nil {
			return err
		}
	}

	if cfg.InfluxCfg.URL != "" {
		influxSvc, err := influx.Connect(ctx, influx.Config{
			URL:    cfg.InfluxCfg.URL,
			Token:  cfg.InfluxCfg.Token,
			Org:    cfg.InfluxCfg.Org,
			Bucket: cfg.InfluxCfg.Bucket,
		})
		if err != nil {
			return err
		}
		defer influxSvc.Close()
		if err := publisher.RegisterPublisher("influx", influxSvc); err != nil {
			return err
		}
	}

	hub := sockets.New(sockets.OnError(func(err error) {
		logger.Debug("websocket client error", zap.Error(err))
	}))
	defer hub.Close()

	services := make([]InverterService, 0, len(cfg.Inverters))
	for _, ic := range cfg.Inverters {
		client := connectInverter(ctx, ic, logger)
		defer client.Close()

		p := poller.New(client, poller.Options{
			OptimizersInstalled: ic.Optimizers,
			BatteryInstalled:    ic.Battery,
			Cooldown:            cfg.Cooldown,
			ReconnectDelay:      cfg.ReconnectDelay,
		}).WithLogger(logger.With(zap.String("inverter", ic.Name)))
		services = append(services, inverter.New(ic.Name, p, publisher.Registry{}).WithBroadcaster(hub))
	}

	apiCfg := server.Config{
		Secret:       cfg.HTTPCfg.APISecret,
		PasswordHash: cfg.HTTPCfg.APIPasswordHash,
	}
	if apiCfg.PasswordHash != "" && apiCfg.Secret == "" {
		// tokens then only survive until the next restart
		apiCfg.Secret, err = hasher.GenerateToken(32)
		if err != nil {
			return err
		}
		logger.Warn("no api secret configured, generated one for this process")
	}
	// a nil *Database must not reach the interfaces below
	var cleaner Cleaner
	api := server.New(apiCfg, lo.Map(services, toInverter), nil, hub)
	if db != nil {
		cleaner = db
		api = server.New(apiCfg, lo.Map(services, toInverter), db, hub)
	}

	return serve(ctx, serveOptions{
		inverters:    services,
		cleaner:      cleaner,
		handler:      api.Handler(),
		addr:         cfg.HTTPCfg.Addr,
		pollInterval: cfg.PollInterval,
		errorChan:    errorChan,
		logger:       logger,
	})
}

func toInverter(s InverterService, _ int) server.Inverter {
	return s
}

// connectInverter opens the session up front so configuration mistakes
// show in the log at startup. A failed connect is retried by the first poll.
func connectInverter(ctx context.Context, ic config.InverterConfig, logger *zap.Logger) *huawei.Client {
	hcfg := huawei.Config{
		Host:    ic.Host,
		Port:    ic.Port,
		SlaveID: ic.SlaveID,
	}
	client, err := huawei.Connect(ctx, hcfg)
	if err != nil {
		logger.Warn("could not connect to inverter, will retry on poll",
			zap.String("inverter", ic.Name),
			zap.Error(err),
		)
		return huawei.New(hcfg)
	}
	logger.Info("connected to inverter", zap.String("inverter", ic.Name), zap.String("host", ic.Host))
	return client
}

type serveOptions struct {
	inverters    []InverterService
	cleaner      Cleaner
	handler      http.Handler
	addr         string
	pollInterval time.Duration
	errorChan    chan error
	logger       *zap.Logger
}

func serve(ctx context.Context, opts serveOptions) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return schedulePolls(ctx, opts.inverters, opts.pollInterval, opts.logger)
	})

	if opts.cleaner != nil {
		eg.Go(func() error {
			return cronDbCleanup(ctx, opts.cleaner, opts.errorChan, opts.logger)
		})
	}

	if opts.handler != nil && opts.addr != "" {
		srv := &http.Server{
			Handler:      opts.handler,
			Addr:         opts.addr,
			WriteTimeout: 15 * time.Second,
			ReadTimeout:  15 * time.Second,
		}
		eg.Go(func() error {
			opts.logger.Info("starting http server", zap.String("addr", opts.addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		// handle any async errors from background jobs
		for {
			select {
			case err := <-opts.errorChan:
				if errors.Is(err, errCron) {
					opts.logger.Error("cron error", zap.Error(err))
					return err
				}
				opts.logger.Warn("background error", zap.Error(err))
			case <-ctx.Done():
				opts.logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

// schedulePolls runs one cycle per inverter straight away and then every
// interval. A cycle that overruns the interval makes the next tick skip.
func schedulePolls(ctx context.Context, inverters []InverterService, interval time.Duration, logger *zap.Logger) error {
	cl := cronLogger{logger.Sugar()}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl))
	var firstRuns sync.WaitGroup

	for _, inv := range inverters {
		job := cron.FuncJob(func() {
			if err := inv.Run(ctx); err != nil {
				logger.Warn("poll cycle finished with errors", zap.String("inverter", inv.Name()), zap.Error(err))
			}
		})
		id := c.Schedule(cron.Every(interval), job)
		first := c.Entry(id).WrappedJob
		firstRuns.Add(1)
		go func() {
			defer firstRuns.Done()
			first.Run()
		}()
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	// the first cycles run outside the scheduler, Stop does not see them
	firstRuns.Wait()
	return nil
}

func cronDbCleanup(ctx context.Context, db Cleaner, errChan chan error, logger *zap.Logger) error {
	if err := db.Cleanup(ctx); err != nil {
		return err
	}

	c := cron.New(cron.WithLogger(cronLogger{logger.Sugar()}))
	if _, err := c.AddFunc(cleanupSchedule, func() {
		if err := db.Cleanup(ctx); err != nil {
			logger.Error("error cleaning up database", zap.Error(err))
			errChan <- errCron
			return
		}
		logger.Info("cleaned up database")
	}); err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
