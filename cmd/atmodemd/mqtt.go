package main

import (
	"context"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/collab-project/atcmd/modem"
)

// startMQTT connects the notification bridge: payloads published on the
// configured topic are forwarded to the host as unsolicited lines.
// Returns nil when no broker is configured.
func startMQTT(ctx context.Context, config *Config, m *modem.Modem, logger *zap.Logger) mqtt.Client {
	if config.MQTTBroker == "" {
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.MQTTBroker)
	opts.SetClientID(config.MQTTClientID)
	if config.MQTTUser != "" {
		opts.SetUsername(config.MQTTUser)
		opts.SetPassword(config.MQTTPass)
	}
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", zap.Error(err))
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Info("mqtt connected, subscribing", zap.String("topic", config.MQTTTopic))
		token := c.Subscribe(config.MQTTTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			line := string(msg.Payload())
			if line == "" {
				return
			}
			if err := m.Notify(line); err != nil {
				logger.Error("failed to forward mqtt notification", zap.Error(err), zap.String("line", line))
			}
		})
		if token.Wait() && token.Error() != nil {
			logger.Error("mqtt subscribe failed", zap.Error(token.Error()))
		}
	})

	cli := mqtt.NewClient(opts)
	if t := cli.Connect(); t.Wait() && t.Error() != nil {
		logger.Error("mqtt connect failed", zap.Error(t.Error()))
	}

	go func() {
		<-ctx.Done()
		cli.Disconnect(500)
	}()
	return cli
}
