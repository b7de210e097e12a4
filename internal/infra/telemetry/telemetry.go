package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider holds the workflow outcome collectors.
type Provider struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	startups      *prometheus.CounterVec
}

// New registers workflow counters with the provided registerer (the default
// registerer when nil).
func New(reg prometheus.Registerer) (*Provider, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "registrations_total",
		Help:      "Registration workflow outcomes partitioned by kind.",
	}, []string{"outcome"})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "logins_total",
		Help:      "Login workflow outcomes partitioned by kind.",
	}, []string{"outcome"})

	startups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "auth",
		Name:      "startup_validations_total",
		Help:      "Secret provisioning validation outcomes.",
	}, []string{"outcome"})

	for _, c := range []*prometheus.CounterVec{registrations, logins, startups} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}

	return &Provider{
		registrations: registrations,
		logins:        logins,
		startups:      startups,
	}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) error {
	if err := reg.Register(c); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return fmt.Errorf("register collector: %w", err)
		}
		if _, ok := already.ExistingCollector.(*prometheus.CounterVec); !ok {
			return fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
	}
	return nil
}

// ObserveRegistration records a registration outcome.
func (p *Provider) ObserveRegistration(outcome string) {
	if p == nil {
		return
	}
	p.registrations.WithLabelValues(outcome).Inc()
}

// ObserveLogin records a login outcome.
func (p *Provider) ObserveLogin(outcome string) {
	if p == nil {
		return
	}
	p.logins.WithLabelValues(outcome).Inc()
}

// ObserveStartupValidation records a provisioning validation outcome.
func (p *Provider) ObserveStartupValidation(passed bool) {
	if p == nil {
		return
	}
	outcome := "passed"
	if !passed {
		outcome = "failed"
	}
	p.startups.WithLabelValues(outcome).Inc()
}
