package huawei

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"go.uber.org/zap"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/model"
)

const (
	DefaultPort    = 502
	defaultTimeout = 5 * time.Second
)

type Config struct {
	Host    string
	Port    int
	SlaveID byte
	Timeout time.Duration
}

func (c Config) address() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, fmt.Sprint(port))
}

// session is the part of a Modbus client handler the client drives directly.
type session interface {
	Connect() error
	Close() error
}

type registerReader interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// Client reads named registers from a SUN2000 inverter over Modbus TCP.
// The inverter tolerates a single outstanding request, so reads are serialised.
type Client struct {
	cfg       Config
	session   session
	reader    registerReader
	logger    *zap.Logger
	mu        sync.Mutex
	connected bool
}

func New(cfg Config) *Client {
	handler := modbus.NewTCPClientHandler(cfg.address())
	handler.SlaveId = cfg.SlaveID
	handler.Timeout = cfg.Timeout
	if handler.Timeout <= 0 {
		handler.Timeout = defaultTimeout
	}
	return newClient(cfg, handler, modbus.NewClient(handler))
}

func newClient(cfg Config, s session, r registerReader) *Client {
	return &Client{
		cfg:     cfg,
		session: s,
		reader:  r,
		logger:  zap.L().With(zap.String("host", cfg.Host), zap.Uint8("slave_id", cfg.SlaveID)),
	}
}

// Connect opens the Modbus TCP session to the inverter.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	c := New(cfg)
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureConnected(ctx)
}

func (c *Client) ensureConnected(ctx context.Context) error {
	if c.connected {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &ConnectionError{Err: err}
	}
	if err := c.session.Connect(); err != nil {
		return &ConnectionError{Err: err}
	}
	c.connected = true
	c.logger.Debug("connected to inverter", zap.String("address", c.cfg.address()))
	return nil
}

// Get reads and decodes one named register.
func (c *Client) Get(ctx context.Context, name string) (model.Value, error) {
	reg, ok := lookup(name)
	if !ok {
		return model.Value{}, &ReadError{Register: name, Err: ErrUnknownRegister}
	}

	if err := ctx.Err(); err != nil {
		return model.Value{}, &ConnectionError{Register: name, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureConnected(ctx); err != nil {
		var cerr *ConnectionError
		if errors.As(err, &cerr) {
			cerr.Register = name
		}
		return model.Value{}, err
	}

	data, err := c.reader.ReadHoldingRegisters(reg.address, reg.quantity)
	if err != nil {
		if isTransportError(err) {
			// drop the session, the next read reconnects
			_ = c.session.Close()
			c.connected = false
			return model.Value{}, &ConnectionError{Register: name, Err: err}
		}
		return model.Value{}, &ReadError{Register: name, Err: err}
	}

	v, err := decode(reg, data)
	if err != nil {
		return model.Value{}, &ReadError{Register: name, Err: err}
	}
	return v, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return c.session.Close()
}

func isTransportError(err error) bool {
	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}
