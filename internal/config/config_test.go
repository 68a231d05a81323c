package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Transport.Kind != TransportLog {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Telemetry.SensorTick != 2*time.Second || cfg.Telemetry.BatteryTick != time.Minute || cfg.Telemetry.LogTick != 3*time.Second {
		t.Fatalf("unexpected ticks: %+v", cfg.Telemetry)
	}
	if cfg.Telemetry.LogCapacity != 1000 || cfg.MQTT.QoS != 1 || cfg.WS.Interval != time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yml := []byte("port: \"9000\"\ntelemetry:\n  log_tick: 500ms\nmqtt:\n  topic: farm/rover7\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), yml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROVER_PORT", "9100")
	t.Setenv("ROVER_TRANSPORT_KIND", "MQTT")
	t.Setenv("ROVER_ANALYSIS_API_KEY", "secret")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9100" {
		t.Fatalf("env should override file port, got %q", cfg.Port)
	}
	if cfg.Telemetry.LogTick != 500*time.Millisecond {
		t.Fatalf("file log_tick not applied: %v", cfg.Telemetry.LogTick)
	}
	if cfg.MQTT.Topic != "farm/rover7" || cfg.Transport.Kind != TransportMQTT {
		t.Fatalf("unexpected mqtt settings: %+v %+v", cfg.MQTT, cfg.Transport)
	}
	if cfg.Analysis.APIKey != "secret" {
		t.Fatalf("api key not read from env")
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown_transport", map[string]string{"ROVER_TRANSPORT_KIND": "carrier-pigeon"}},
		{"bad_qos", map[string]string{"ROVER_MQTT_QOS": "3"}},
		{"mqtt_without_broker", map[string]string{"ROVER_TRANSPORT_KIND": "mqtt", "ROVER_MQTT_BROKER": ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(t.TempDir()); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_UnknownTransportIsWrapped(t *testing.T) {
	t.Setenv("ROVER_TRANSPORT_KIND", "udp")
	_, err := Load(t.TempDir())
	if !errors.Is(err, errUnknownTransport) {
		t.Fatalf("expected errUnknownTransport, got %v", err)
	}
}
