package kafka

import (
	"Larder/internal/api/config"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaramaConfig(t *testing.T) {
	c := newSaramaConfig(config.KafkaConfig{
		Sasl:     config.SaslConfig{Enable: true, Username: "u", Password: "p"},
		Consumer: config.ConsumerConfig{SessionTimeout: 20, HeartbeatInterval: 0},
	})
	require.NoError(t, c.Validate())

	assert.Equal(t, "larder", c.ClientID)
	assert.True(t, c.Net.SASL.Enable)
	assert.Equal(t, 20*time.Second, c.Consumer.Group.Session.Timeout)
	assert.Equal(t, sarama.NewConfig().Consumer.Group.Heartbeat.Interval, c.Consumer.Group.Heartbeat.Interval)
	assert.False(t, c.Consumer.Offsets.AutoCommit.Enable)
}
