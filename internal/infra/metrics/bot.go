package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(botUpdatesTotal, botSendFailuresTotal, ordersPlacedTotal) }

var botUpdatesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Inbound webhook updates, labeled by kind.",
	},
	[]string{"kind"}, // message | callback | malformed
)

var botSendFailuresTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "bot_send_failures_total",
		Help: "Outbound messages that failed to deliver (logged and swallowed).",
	},
)

var ordersPlacedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders confirmed through the bot, labeled by payment method.",
	},
	[]string{"payment"},
)

func IncBotUpdate(kind string)      { botUpdatesTotal.WithLabelValues(norm(kind)).Inc() }
func IncBotSendFailure()            { botSendFailuresTotal.Inc() }
func IncOrderPlaced(payment string) { ordersPlacedTotal.WithLabelValues(norm(payment)).Inc() }
