package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// VoucherAppliedTotal counts successful discount applications by voucher kind.
	VoucherAppliedTotal *prometheus.CounterVec
	// VoucherClearedTotal counts discounts cleared during recalculation by reason.
	VoucherClearedTotal *prometheus.CounterVec
	// CartsPrunedTotal counts expired carts removed by the background worker.
	CartsPrunedTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		VoucherAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_applied_total",
			Help:      "Count of discounts applied to carts by voucher kind.",
		}, []string{"kind"})
		VoucherClearedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_cleared_total",
			Help:      "Count of cart discounts cleared during recalculation by reason.",
		}, []string{"reason"})
		CartsPrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "carts_pruned_total",
			Help:      "Number of expired carts removed by the pruning task.",
		})

		registerDomainCollector(reg, VoucherAppliedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				VoucherAppliedTotal = v
			}
		})
		registerDomainCollector(reg, VoucherClearedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				VoucherClearedTotal = v
			}
		})
		registerDomainCollector(reg, CartsPrunedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartsPrunedTotal = v
			}
		})
	})
}

func registerDomainCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
