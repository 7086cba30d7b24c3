package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(otpRequestsTotal, otpVerificationsTotal) }

var otpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "otp_requests_total",
		Help: "OTP issuance requests, labeled by outcome.",
	},
	[]string{"result"}, // issued | rate_limited | error
)

var otpVerificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "otp_verifications_total",
		Help: "OTP verification attempts, labeled by outcome.",
	},
	[]string{"result"}, // ok | invalid | throttled | error
)

func IncOTPRequest(result string) {
	otpRequestsTotal.WithLabelValues(norm(result)).Inc()
}

func IncOTPVerification(result string) {
	otpVerificationsTotal.WithLabelValues(norm(result)).Inc()
}
