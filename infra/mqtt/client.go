package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/crewsched/core/model"
	coremon "github.com/kilianp07/crewsched/core/monitoring"
	coremqtt "github.com/kilianp07/crewsched/core/mqtt"
	"github.com/kilianp07/crewsched/infra/logger"
)

// DefaultTopicPrefix roots roster topics when none is configured.
const DefaultTopicPrefix = "crewsched/rosters"

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	Retain      bool   `json:"retain"`
	UseTLS      bool   `json:"use_tls"`
	ClientCert  string `json:"client_cert"`
	ClientKey   string `json:"client_key"`
	CABundle    string `json:"ca_bundle"`
	AuthMethod  string `json:"auth_method"`
	LWTTopic    string `json:"lwt_topic"`
	LWTPayload  string `json:"lwt_payload"`
	LWTQoS      byte   `json:"lwt_qos"`
	LWTRetain   bool   `json:"lwt_retain"`
	MaxRetries  int    `json:"max_retries"`
	BackoffMS   int    `json:"backoff_ms"`
	// ConnectTimeoutMS bounds the initial connection.
	ConnectTimeoutMS int         `json:"connect_timeout_ms"`
	TLSConfig        *tls.Config `json:"-"`
}

// SetDefaults fills the optional fields.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	if c.ClientID == "" {
		c.ClientID = "crewsched-" + uuid.NewString()[:8]
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
	if c.ConnectTimeoutMS <= 0 {
		c.ConnectTimeoutMS = 5000
	}
}

// Validate checks an enabled configuration.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	if c.QoS > 2 || c.LWTQoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// PahoClient implements coremqtt.Publisher using Eclipse Paho.
type PahoClient struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		now:        time.Now,
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(time.Duration(cfg.ConnectTimeoutMS) * time.Millisecond) {
		return nil, fmt.Errorf("connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, err)
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

// RosterTopic returns <prefix>/<run>/<driver>.
func (p *PahoClient) RosterTopic(runID string, driver int) string {
	return p.prefix + "/" + runID + "/" + strconv.Itoa(driver)
}

// SummaryTopic returns <prefix>/<run>/summary.
func (p *PahoClient) SummaryTopic(runID string) string {
	return p.prefix + "/" + runID + "/summary"
}

// PublishRoster publishes the roster of one driver as JSON.
func (p *PahoClient) PublishRoster(runID, catalog string, r model.Roster) error {
	msg := newRosterMessage(runID, catalog, r, p.now())
	return p.publish(p.RosterTopic(runID, r.Driver), msg, map[string]string{
		"run_id": runID,
		"driver": strconv.Itoa(r.Driver),
	})
}

// PublishSummary publishes the schedule totals.
func (p *PahoClient) PublishSummary(runID string, s model.Schedule) error {
	msg := summaryMessage{
		RunID:        runID,
		Catalog:      s.Catalog,
		Drivers:      s.Drivers,
		TotalDelay:   s.TotalDelay,
		TotalDriving: s.TotalDriving(),
		TotalWorking: s.TotalWorking(),
		PublishedAt:  p.now().UnixMilli(),
	}
	return p.publish(p.SummaryTopic(runID), msg, map[string]string{"run_id": runID})
}

func (p *PahoClient) publish(topic string, msg any, tags map[string]string) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	err = fmt.Errorf("%w: %s: %v", coremqtt.ErrPublish, topic, publishErr)
	tags["module"] = "mqtt"
	tags["topic"] = topic
	coremon.CaptureException(err, tags)
	return err
}

// Close gracefully closes the MQTT connection.
func (p *PahoClient) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
