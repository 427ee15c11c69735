package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/huawei-solar-integration/cmd"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/config"
	"github.com/anicoll/huawei-solar-integration/internal/pkg/poller"
)

func main() {
	app := &cli.App{
		Name:   "huawei-solar",
		Usage:  "polls Huawei SUN2000 inverters over modbus and publishes their sensors",
		Action: cmd.HuaweiCommand,
		Commands: []*cli.Command{
			{
				Name:      "hash-password",
				Usage:     "print the bcrypt hash for api-password-hash",
				ArgsUsage: "<password>",
				Action:    cmd.HashPasswordCommand,
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				EnvVars: []string{"CONFIG_FILE"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "inverter-host",
				EnvVars: []string{"INVERTER_HOST"},
				Value:   "",
			},
			&cli.IntFlag{
				Name:    "inverter-port",
				EnvVars: []string{"INVERTER_PORT"},
				Value:   config.DefaultPort,
			},
			&cli.UintFlag{
				Name:    "slave-id",
				EnvVars: []string{"INVERTER_SLAVE_ID"},
				Value:   0,
			},
			&cli.BoolFlag{
				Name:    "optimizers",
				EnvVars: []string{"INVERTER_OPTIMIZERS"},
				Value:   false,
			},
			&cli.BoolFlag{
				Name:    "battery",
				EnvVars: []string{"INVERTER_BATTERY"},
				Value:   false,
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				EnvVars: []string{"POLL_INTERVAL"},
				Value:   60 * time.Second,
			},
			&cli.DurationFlag{
				Name:    "cooldown",
				EnvVars: []string{"COOLDOWN"},
				Value:   poller.DefaultCooldown,
			},
			&cli.DurationFlag{
				Name:    "reconnect-delay",
				EnvVars: []string{"RECONNECT_DELAY"},
				Value:   poller.DefaultReconnectDelay,
			},
			&cli.StringFlag{
				Name:    "mqtt-host",
				EnvVars: []string{"MQTT_HOST"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "database-url",
				EnvVars: []string{"DATABASE_URL"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "migrations-folder",
				EnvVars: []string{"MIGRATIONS_FOLDER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "influx-url",
				EnvVars: []string{"INFLUX_URL"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "influx-token",
				EnvVars: []string{"INFLUX_TOKEN"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "influx-org",
				EnvVars: []string{"INFLUX_ORG"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "influx-bucket",
				EnvVars: []string{"INFLUX_BUCKET"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "http-addr",
				EnvVars: []string{"HTTP_ADDR"},
				Value:   "0.0.0.0:8000",
			},
			&cli.StringFlag{
				Name:    "api-secret",
				EnvVars: []string{"API_SECRET"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "api-password-hash",
				EnvVars: []string{"API_PASSWORD_HASH"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
