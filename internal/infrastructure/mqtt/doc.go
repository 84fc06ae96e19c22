// Package mqtt provides MQTT client connectivity for moodpd.
//
// moodpd only publishes. It mirrors the last command sent to the lamp so
// home automation dashboards can show the current color:
//
//	moodpd/state/{lamp_id}          retained JSON lamp state
//	moodpd/event/{lamp_id}/rejected rejected packet notices
//	moodpd/status/{lamp_id}         retained online/offline, also the LWT
//
// # Security Considerations
//
//   - Enable TLS (cfg.Broker.TLS=true) when the broker is not on localhost
//   - Pass the broker password via MOODPD_MQTT_PASSWORD, not the config file
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, runID)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.LampState(client.LampID())
//	client.PublishAsync(topic, []byte(`{"r":16,"g":64,"b":128}`), 1, true)
package mqtt
