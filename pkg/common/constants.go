package common

const (
	RedisStreamScanRefresh = "scan.refresh"

	RedisStreamGroup    = "executor-group"
	RedisStreamConsumer = "executor-consumer"

	// RedisKeyScanResult is formatted with ticker, exchange and profile.
	RedisKeyScanResult = "scan_result:%s:%s:%s"

	CacheKeyTickerTape = "ticker_tape"

	DefaultExchange = "BVMF"
)
