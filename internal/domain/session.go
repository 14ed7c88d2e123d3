package domain

// ScanSession records one historical whale scan run.
// Corresponds to the scan_sessions table in PostgreSQL.
type ScanSession struct {
	SessionID   string   // unique session identifier
	Symbols     []string // symbols scanned
	StartTime   int64    // scan range start, Unix ms
	EndTime     int64    // scan range end, Unix ms
	MinShares   int64    // whale share threshold used
	MinValue    float64  // whale notional threshold used
	TradesSeen  int      // total trades examined
	WhalesFound int      // trades that passed the whale filter
	CreatedAt   int64    // record creation timestamp (ms)
}
