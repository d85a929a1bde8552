// Package metrics объявляет метрики Prometheus бизнес-операций биллинга.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "billing"

var (
	// ContractsCreated — число созданных договоров.
	ContractsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contracts_created_total",
		Help:      "Number of created contracts.",
	})
	// ContractsSigned — число договоров, перешедших в подписанные.
	ContractsSigned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contracts_signed_total",
		Help:      "Number of contracts that became signed.",
	})
	// PaymentsRecorded — число записанных платежей по виду (contract, subscription).
	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_recorded_total",
		Help:      "Number of recorded payments.",
	}, []string{"kind"})
	// PaymentsRejected — число отклонённых платежей по причине.
	PaymentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_rejected_total",
		Help:      "Number of rejected payments by reason.",
	}, []string{"kind", "reason"})
	// SubscriptionsCreated — число созданных подписок.
	SubscriptionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscriptions_created_total",
		Help:      "Number of created subscriptions.",
	})
	// SubscriptionsLapsed — число подписок, ставших неактивными из-за неоплаты.
	SubscriptionsLapsed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscriptions_lapsed_total",
		Help:      "Number of subscriptions deactivated after an unpaid window.",
	})
	// ConversionFailures — число неудачных запросов курса валют.
	ConversionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "currency_conversion_failures_total",
		Help:      "Number of failed currency rate lookups.",
	})
)

// Виды платежей для метки kind.
const (
	KindContract     = "contract"
	KindSubscription = "subscription"
)
