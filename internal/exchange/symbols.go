package exchange

// Static per-exchange symbol tables. Keys are normalized instrument names;
// values are each venue's wire symbol. Not every instrument trades on every
// exchange; a missing entry simply excludes that venue from the pair.

var binanceSymbols = map[string]string{
	"BTCUSDT": "btcusdt",
	"ETHUSDT": "ethusdt",
	"SOLUSDT": "solusdt",
	"XRPUSDT": "xrpusdt",
}

var coinbaseSymbols = map[string]string{
	"BTCUSDT": "BTC-USD",
	"ETHUSDT": "ETH-USD",
	"SOLUSDT": "SOL-USD",
}

var krakenSymbols = map[string]string{
	"BTCUSDT": "XBT/USD",
	"ETHUSDT": "ETH/USD",
	"SOLUSDT": "SOL/USD",
	"XRPUSDT": "XRP/USD",
}

// reverse builds the wire-symbol → instrument lookup used on ingress.
func reverse(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

var (
	binanceInstruments  = reverse(binanceSymbols)
	coinbaseInstruments = reverse(coinbaseSymbols)
	krakenInstruments   = reverse(krakenSymbols)
)

// krakenIntervals maps our timeframe names to Kraken's OHLC interval
// minutes, and back from the subscription channel suffix.
var krakenIntervals = map[string]int{
	"1m":  1,
	"5m":  5,
	"15m": 15,
	"1h":  60,
	"4h":  240,
	"1d":  1440,
}

func krakenTimeframe(intervalMin int) string {
	for tf, m := range krakenIntervals {
		if m == intervalMin {
			return tf
		}
	}
	return ""
}
