// Package influx writes numeric sensor readings to InfluxDB v2.
package influx

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

const (
	measurement    = "inverter"
	connectTimeout = 10 * time.Second
)

var ErrConnectionFailed = errors.New("influxdb connection failed")

type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// pointWriter is satisfied by api.WriteAPIBlocking.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

type service struct {
	client influxdb2.Client
	writer pointWriter
	logger *zap.Logger
}

// Connect verifies the server answers a ping before handing out the adapter.
func Connect(ctx context.Context, cfg Config) (*service, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	healthy, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	s := New(client.WriteAPIBlocking(cfg.Org, cfg.Bucket))
	s.client = client
	return s, nil
}

func New(writer pointWriter) *service {
	return &service{
		writer: writer,
		logger: zap.L(),
	}
}

func (s *service) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

// Write sends one point per numeric reading. Text sensors and readings
// without a value are skipped.
func (s *service) Write(ctx context.Context, readings []model.Reading) error {
	points := make([]*write.Point, 0, len(readings))
	for _, r := range readings {
		value, ok := r.Float()
		if !ok {
			continue
		}
		points = append(points, influxdb2.NewPoint(
			measurement,
			map[string]string{
				"identifier": r.Identifier,
				"slug":       r.Slug,
			},
			map[string]interface{}{
				"value": value,
			},
			r.Timestamp,
		))
	}
	if len(points) == 0 {
		return nil
	}
	if err := s.writer.WritePoint(ctx, points...); err != nil {
		return err
	}
	s.logger.Debug("wrote points", zap.Int("count", len(points)))
	return nil
}

// RegisterDevice is a no-op, series are created on first write.
func (s *service) RegisterDevice(context.Context, model.Device, []model.Entity) error {
	return nil
}
