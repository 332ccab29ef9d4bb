// Package datafeed simulates three slow external data sources (weather,
// news and stock quotes) for the parallel aggregation sample.
//
// Every fetch sleeps for a random latency drawn from a configurable range
// before answering with mock data. The sleep honours context cancellation,
// so an abandoned branch returns promptly. Randomness comes from an
// injectable *rand.Rand which makes tests reproducible.
package datafeed
