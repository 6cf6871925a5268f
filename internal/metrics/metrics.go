package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cricketbook_bookings_created_total",
		Help: "Pending bookings written at checkout.",
	})

	BookingsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cricketbook_bookings_confirmed_total",
		Help: "Bookings moved from pending to confirmed.",
	})

	PaymentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cricketbook_payment_failures_total",
		Help: "Payment outcomes that did not confirm a booking.",
	}, []string{"stage"})

	TicketEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cricketbook_ticket_emails_total",
		Help: "Ticket email attempts by result.",
	}, []string{"result"})

	GateScans = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cricketbook_gate_scans_total",
		Help: "Gate scans by verdict.",
	}, []string{"verdict"})
)
