// Package influxdb provides optional time-series telemetry for
// Switchboard.
//
// When enabled in configuration, job firings, switch state reports and
// client presence transitions are recorded as InfluxDB points. The
// integration is strictly best-effort: writes are batched and
// asynchronous, and a failed or disabled sink never affects scheduling
// or registry behaviour.
//
// Usage:
//
//	sink, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    sink = nil // run without telemetry
//	} else if err != nil {
//	    return err
//	}
package influxdb
