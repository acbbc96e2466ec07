package database

import "time"

// Connection definition redis setting
type Connection struct {
	// Addr single node address, used when no sentinel is configured
	Addr string
	// MasterName and SentinelAddrs for sentinel mode
	MasterName    string
	SentinelAddrs []string
	DB            int

	RetryCount    int
	RetryInterval time.Duration
}
