package spectatorpush

import (
	"context"
	"time"

	"sueca-referee/internal/spectatorpush/platforms"

	"github.com/rs/zerolog/log"
)

// panelMessageCleaner is implemented by adapters that remember the message
// id of each live panel.
type panelMessageCleaner interface {
	ForgetPanel(endpoint, panelKey string)
}

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case job := <-m.dispatchCh:
			metricPushQueueDepth.Set(int64(len(m.dispatchCh)))
			m.deliver(ctx, job)
		}
	}
}

func (m *Manager) deliver(ctx context.Context, job pushJob) {
	platform := job.Target.Platform
	adapter, ok := m.adapters[platform]
	if !ok {
		metricPushDropped.Add(1)
		return
	}
	key := job.key()

	if err := m.breaker.allow(key, time.Now()); err != nil {
		metricPushCircuitOpen.Add(1)
		m.failed(job, err)
		return
	}
	if err := adapter.Send(ctx, job.Target.Endpoint, job.Target.Secret, job.Formatted.platformMessage()); err != nil {
		metricPushFailed.Add(platform, 1)
		if m.breaker.failure(key, time.Now()) {
			log.Warn().Str("platform", platform).Dur("open_for", m.cfg.CircuitOpenDuration).Msg("push target circuit opened")
		}
		m.failed(job, err)
		return
	}

	metricPushSent.Add(platform, 1)
	if job.Formatted.Alert {
		metricPushAlerts.Add(1)
	}
	m.breaker.success(key)
	m.panelSettled(job, true)
	if !job.PanelTerminal {
		return
	}
	if cleaner, ok := adapter.(panelMessageCleaner); ok {
		cleaner.ForgetPanel(job.Target.Endpoint, job.Formatted.PanelKey)
	}
}

// failed schedules another attempt, or gives the job up once RetryMax
// retries have been spent.
func (m *Manager) failed(job pushJob, err error) {
	if job.Attempt < m.cfg.RetryMax {
		job.Attempt++
		metricPushRetried.Add(1)
		m.redeliverLater(job, retryDelay(m.cfg.RetryBase, job.Attempt))
		return
	}
	metricPushGaveUp.Add(1)
	log.Warn().
		Err(err).
		Str("platform", job.Target.Platform).
		Str("table_id", job.Event.TableID).
		Str("event", job.Event.EventType).
		Int("attempts", job.Attempt+1).
		Msg("spectator push dropped")
	m.panelSettled(job, false)
}

func (msg FormattedMessage) platformMessage() platforms.Message {
	out := platforms.Message{
		PanelKey:    msg.PanelKey,
		Title:       msg.Title,
		Content:     msg.Content,
		Description: msg.Description,
		Color:       msg.Color,
		Alert:       msg.Alert,
		Timestamp:   msg.Timestamp,
		Footer:      msg.Footer,
	}
	for _, f := range msg.Fields {
		out.Fields = append(out.Fields, platforms.Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}
