// Package config handles loading and validating moodpd configuration.
//
// This package manages:
//   - Built-in defaults matching the original daemon (UDP 4242, /dev/ttyUSB0, 230400 baud)
//   - Loading an optional YAML file
//   - Overriding with MOODPD_* environment variables
//   - Validation of required fields
//
// Security Considerations:
//   - relay.allow_raw lets network peers write arbitrary bytes to the lamp; it defaults to false
//   - Broker passwords and InfluxDB tokens should be set via environment variables
//
// Usage:
//
//	cfg, err := config.Load("/etc/moodpd.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Serial.Device)
package config
