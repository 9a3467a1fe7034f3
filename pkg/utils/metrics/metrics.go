package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolve sources
const (
	SourceCache  = "cache"
	SourceStore  = "store"
	SourceRemote = "remote"
)

var (
	// PartnerResolveTotal counts partner resolutions by the layer that answered
	PartnerResolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partnerflow",
		Name:      "partner_resolve_total",
		Help:      "Number of partner resolutions by answering source.",
	}, []string{"source"})

	// ChannelProvisionTotal counts provisioned channels by kind and provision type
	ChannelProvisionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partnerflow",
		Name:      "channel_provision_total",
		Help:      "Number of channel provisioning outcomes.",
	}, []string{"kind", "provision"})

	// AutomationActivityTotal counts automation activities by channel and status
	AutomationActivityTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partnerflow",
		Name:      "automation_activity_total",
		Help:      "Number of automation activities by channel and status.",
	}, []string{"channel", "status"})
)

// Handler serves the default Prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
