package metrics

import (
	"log"
	"strconv"

	"github.com/VictoriaMetrics/metrics"
)

// RecordRelayMessage records one relayed message by content kind and delivery outcome
func RecordRelayMessage(contentKind string, delivered bool) {
	if !IsEnabled() {
		return
	}

	incCounter(`dealbot_relay_messages_total{content_kind="` + contentKind + `",delivered="` + strconv.FormatBool(delivered) + `"}`)
	log.Printf("[METRICS] Relay message: kind=%s, delivered=%t", contentKind, delivered)
}

// RecordRelaySession records relay sessions being opened or closed.
// reason is one of "opened", "quit", "ended", "deal_missing".
func RecordRelaySession(reason string) {
	if !IsEnabled() {
		return
	}

	incCounter(`dealbot_relay_sessions_total{reason="` + reason + `"}`)
	log.Printf("[METRICS] Relay session: reason=%s", reason)
}

// RegisterSessionGauges exposes the number of active sessions. counts is
// called on every scrape.
func RegisterSessionGauges(counts func() (relay int, negotiation int)) {
	metrics.GetOrCreateGauge(`dealbot_sessions_active{kind="relay"}`, func() float64 {
		relay, _ := counts()
		return float64(relay)
	})
	metrics.GetOrCreateGauge(`dealbot_sessions_active{kind="negotiation"}`, func() float64 {
		_, negotiation := counts()
		return float64(negotiation)
	})
}
