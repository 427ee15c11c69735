package mqtt

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 10 * time.Second
	keepAlive      = 60 * time.Second
)

var errTimeout = errors.New("mqtt operation timed out")

type Config struct {
	Host     string
	Username string
	Password string
	ClientID string
}

// client is the subset of paho_mqtt.Client used by the adapter.
type client interface {
	Connect() paho_mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho_mqtt.Token
	Disconnect(quiesce uint)
}

type service struct {
	client client
	logger *zap.Logger

	mu         sync.Mutex
	configured map[string]struct{}
}

// NewClient builds a paho client that reconnects on its own. Host may
// carry a scheme, otherwise tcp:// is assumed.
func NewClient(cfg Config) paho_mqtt.Client {
	broker := cfg.Host
	if !strings.Contains(broker, "://") {
		broker = fmt.Sprintf("tcp://%s", broker)
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "huawei-solar"
	}
	opts := paho_mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetKeepAlive(keepAlive).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnectionLost = func(_ paho_mqtt.Client, err error) {
		zap.L().Warn("mqtt connection lost", zap.Error(err))
	}
	return paho_mqtt.NewClient(opts)
}

func New(client client) *service {
	return &service{
		client:     client,
		logger:     zap.L(),
		configured: make(map[string]struct{}),
	}
}

func (s *service) Connect() error {
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return errors.New("unable to connect in time")
	}
	return token.Error()
}

func (s *service) Close() {
	s.client.Disconnect(250)
}

func (s *service) publish(topic string, qos byte, retained bool, payload []byte) error {
	token := s.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: publish to %s", errTimeout, topic)
	}
	return token.Error()
}
