package cmd

import (
	"time"

	"github.com/isometry/payment-webhook/internal/config"
	"github.com/isometry/payment-webhook/internal/helpers"
)

var svcEnvMapString = map[*string]boundEnvVar[string]{
	&config.Service.Addr: {
		Name:        "service-host-addr",
		Description: "The address to serve the service on (default all interfaces in dual-stack mode)",
		Short:       helpers.Ptr("H"),
	},
	&config.Service.Port: {
		Name:        "service-host-port",
		Description: "The port to serve the service on",
		Short:       helpers.Ptr("p"),
	},
	&config.Service.Path: {
		Name:        "service-host-path",
		Description: "The path to serve the webhook on",
		Short:       helpers.Ptr("P"),
	},
	&config.Service.MetricsPath: {
		Name:        "service-metrics-path",
		Description: "The path to serve prometheus metrics on",
	},
}

var svcEnvMapBool = map[*bool]boundEnvVar[bool]{
	&config.Service.Metrics: {
		Name:        "service-metrics",
		Description: "Serve prometheus metrics",
	},
}

var svcEnvMapInt64 = map[*int64]boundEnvVar[int64]{
	&config.Service.MaxBodyBytes: {
		Name:        "service-max-body-bytes",
		Description: "The largest request body accepted, in bytes",
	},
}

var svcEnvMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Service.Timeout: {
		Name:        "service-io-timeout",
		Description: "The timeout for I/O operations",
		Short:       helpers.Ptr("t"),
	},
}
