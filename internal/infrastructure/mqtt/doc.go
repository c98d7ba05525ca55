// Package mqtt provides the MQTT transport layer for Switchboard.
//
// It wraps the Eclipse Paho MQTT client with functionality needed by
// the job scheduler and device registries:
//
//   - Connection management with automatic reconnection
//   - Subscription tracking and restoration after reconnect
//   - Last Will and Testament on the retained presence topic
//   - Panic recovery around message handlers
//   - Topic builders for the Switchboard topic hierarchy
//
// Topic Hierarchy:
//
// All topics share a configurable prefix (default "myhome"). Scheduler
// control topics are exact matches:
//
//	{prefix}/scheduler/submit_job      job submissions
//	{prefix}/scheduler/ping            liveness probes
//	{prefix}/scheduler/status          responses and engine status
//	{prefix}/scheduler/list_jobs       job-list requests
//	{prefix}/scheduler/delete_job      single-job deletion
//	{prefix}/scheduler/delete_all_jobs bulk deletion
//	{prefix}/scheduler/presence        retained presence declarations
//
// Device topics are wildcard patterns where the second segment is the
// publishing device's id:
//
//	{prefix}/+/request/clients  client-list requests (answered in place)
//	{prefix}/+/create/switch    switch registration
//	{prefix}/+/command          raw state reports
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return fmt.Errorf("connecting to broker: %w", err)
//	}
//	defer client.Close()
//
//	topics := client.Topics()
//	err = client.Subscribe(topics.Ping(), 1, func(topic string, payload []byte) error {
//	    return client.PublishString(topics.Status(), `{"status":"alive"}`, 1, false)
//	})
package mqtt
