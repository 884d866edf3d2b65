package chat

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts chat core events. A nil *Metrics records nothing.
type Metrics struct {
	threadsResolved    *prometheus.CounterVec
	messagesPosted     prometheus.Counter
	messagesMarkedRead prometheus.Counter
}

// NewMetrics creates the chat counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		threadsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_threads_resolved_total",
			Help: "Thread resolutions by result (created or found).",
		}, []string{"result"}),
		messagesPosted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_posted_total",
			Help: "Messages appended to threads.",
		}),
		messagesMarkedRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_marked_read_total",
			Help: "Mark-as-read requests that succeeded.",
		}),
	}
	reg.MustRegister(m.threadsResolved, m.messagesPosted, m.messagesMarkedRead)
	return m
}

func (m *Metrics) threadResolved(result string) {
	if m == nil {
		return
	}
	m.threadsResolved.WithLabelValues(result).Inc()
}

func (m *Metrics) messagePosted() {
	if m == nil {
		return
	}
	m.messagesPosted.Inc()
}

func (m *Metrics) messageMarkedRead() {
	if m == nil {
		return
	}
	m.messagesMarkedRead.Inc()
}
