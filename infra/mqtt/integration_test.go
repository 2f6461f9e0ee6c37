package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestIntegration publishes a roster through a real Mosquitto broker.
func TestIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:1.6",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1883")
	require.NoError(t, err)
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("sub"))
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)

	got := make(chan []byte, 1)
	tok = sub.Subscribe("crewsched/rosters/it/#", 1, func(_ paho.Client, m paho.Message) { got <- m.Payload() })
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	cli, err := NewPahoClient(Config{Broker: broker, ClientID: "pub", QoS: 1})
	require.NoError(t, err)
	defer cli.Close()
	require.NoError(t, cli.PublishRoster("it", "small", sampleRoster()))

	select {
	case payload := <-got:
		var msg rosterMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		require.Equal(t, 2, msg.Driver)
	case <-time.After(5 * time.Second):
		t.Fatal("roster not received")
	}
}
