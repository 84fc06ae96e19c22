// Package telemetry mirrors relay activity to MQTT and InfluxDB.
//
// Both sinks implement relay.Observer and are called on the relay's event
// loop, so they only use the non-blocking publish and write paths of their
// clients. Combine them with Fanout:
//
//	obs := telemetry.Fanout{
//	    telemetry.NewMQTTMirror(mqttClient, "00", 1, runID, logger),
//	    telemetry.NewInfluxRecorder(influxClient, runID),
//	}
package telemetry
