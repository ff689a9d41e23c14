package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/odyssey-erp/shopledger/internal/ledger"
)

// LedgerMetrics counts ledger outcomes. Methods are safe on a nil receiver.
type LedgerMetrics struct {
	finalized  *prometheus.CounterVec
	payments   *prometheus.CounterVec
	returns    *prometheus.CounterVec
	rejections *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger counters on reg.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	m := &LedgerMetrics{
		finalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_finalized_total",
			Help:      "Ledger records finalized by kind and payment mode.",
		}, []string{"kind", "mode"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Payment events applied to existing records.",
		}, []string{"kind"}),
		returns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_total",
			Help:      "Returns resolved by resolution.",
		}, []string{"resolution"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_rejections_total",
			Help:      "Ledger operations rejected by kind and reason.",
		}, []string{"kind", "reason"}),
	}
	reg.MustRegister(m.finalized, m.payments, m.returns, m.rejections)
	return m
}

// Finalized counts a record.
func (m *LedgerMetrics) Finalized(rec *ledger.Record) {
	if m == nil || rec == nil {
		return
	}
	m.finalized.WithLabelValues(string(rec.Kind), string(rec.Plan.Mode)).Inc()
}

// PaymentApplied counts a payment event.
func (m *LedgerMetrics) PaymentApplied(kind ledger.Kind) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(string(kind)).Inc()
}

// ReturnResolved counts a return.
func (m *LedgerMetrics) ReturnResolved(res ledger.Resolution) {
	if m == nil {
		return
	}
	m.returns.WithLabelValues(string(res)).Inc()
}

// Rejected counts a failed ledger operation by its error reason.
func (m *LedgerMetrics) Rejected(kind ledger.Kind, err error) {
	if m == nil || err == nil {
		return
	}
	m.rejections.WithLabelValues(string(kind), ledger.Reason(err)).Inc()
}
