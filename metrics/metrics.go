// Package metrics exposes Prometheus counters and gauges for the player
// coordinator, gated behind the configured metrics enable flag and served on
// the configured address.
package metrics

import (
	"context"
	"net/http"

	"github.com/driftplay/player/key"
	"github.com/driftplay/player/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

var (
	// StateTransitionsTotal counts playback state machine transitions, by
	// origin and destination state.
	StateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftplay_state_transitions_total",
		Help: "Total number of playback state transitions, by from/to state.",
	}, []string{"from", "to"})

	// SeeksTotal counts seek_to calls.
	SeeksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driftplay_seeks_total",
		Help: "Total number of seek_to operations issued to the coordinator.",
	})

	// PlayerErrorsTotal counts surfaced playback errors, by kind.
	PlayerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftplay_player_errors_total",
		Help: "Total number of playback errors surfaced to listeners, by kind.",
	}, []string{"kind"})

	// PlaylistLength tracks the current playlist window count.
	PlaylistLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "driftplay_playlist_length",
		Help: "Current number of windows in the playlist.",
	})

	// PendingOperationAcks tracks the coordinator's in-flight ack count.
	PendingOperationAcks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "driftplay_pending_operation_acks",
		Help: "Current number of operations awaiting acknowledgement from the internal dispatcher.",
	})

	// MessagesDeliveredTotal counts PlayerMessage deliveries.
	MessagesDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driftplay_messages_delivered_total",
		Help: "Total number of PlayerMessage deliveries.",
	})
)

// RecordStateTransition increments the transition counter for from->to.
func RecordStateTransition(from, to string) {
	StateTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordSeek increments the seek counter.
func RecordSeek() { SeeksTotal.Inc() }

// RecordPlayerError increments the error counter for kind.
func RecordPlayerError(kind string) {
	PlayerErrorsTotal.WithLabelValues(kind).Inc()
}

// SetPlaylistLength sets the playlist length gauge.
func SetPlaylistLength(n int) { PlaylistLength.Set(float64(n)) }

// SetPendingOperationAcks sets the pending-ack gauge.
func SetPendingOperationAcks(n int) { PendingOperationAcks.Set(float64(n)) }

// RecordMessageDelivered increments the message-delivery counter.
func RecordMessageDelivered() { MessagesDeliveredTotal.Inc() }

// Serve starts the Prometheus exposition HTTP server on the configured
// address if metrics are enabled, returning immediately; the server runs
// until ctx is cancelled. A disabled configuration is a silent no-op.
func Serve(ctx context.Context) {
	if !viper.GetBool(key.MetricsEnable) {
		return
	}
	addr := viper.GetString(key.MetricsAddr)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
}
