// Package influxdb provides InfluxDB connectivity for moodpd.
//
// It wraps the official influxdb-client-go v2 library and records what the
// relay does, so lamp usage and rejected traffic can be graphed:
//
//	moodpd_commands  tags command, dialect, channel; fields wire_bytes, queued_bytes, r, g, b
//	moodpd_rejects   tags reason, channel; field count
//	moodpd_stats     counter snapshot written at shutdown
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteReject("bad_payload", "udp", runID)
//
// # Error Handling
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Batch errors are delivered to the SetOnError callback.
package influxdb
