package queue

import "fmt"

// GetQueueStats inspects the job queue without consuming from it.
func (q *QueueService) GetQueueStats() (map[string]interface{}, error) {
	info, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect queue: %w", err)
	}

	return map[string]interface{}{
		"name":      info.Name,
		"messages":  info.Messages,
		"consumers": info.Consumers,
		"workers":   q.workers.Load(),
	}, nil
}

// HealthCheck reports the broker connection state.
func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return "unhealthy: connection closed"
	case q.channel == nil:
		return "unhealthy: channel not available"
	default:
		return "healthy"
	}
}
