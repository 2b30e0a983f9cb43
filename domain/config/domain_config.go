package config

import "time"

// DomainConfig holds tunable domain-level limits
type DomainConfig struct {
	// SyncBatchSize is the number of items written per transactional batch
	// during tree reconciliation
	SyncBatchSize int

	// BatchTimeout bounds each transactional batch
	BatchTimeout time.Duration

	// MaxCustomFields limits the free-form custom field map on a node
	MaxCustomFields int

	// MaxNodesPerTree bounds a single tree submission
	MaxNodesPerTree int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		SyncBatchSize:   5,
		BatchTimeout:    5 * time.Second,
		MaxCustomFields: 50,
		MaxNodesPerTree: 2000,
	}
}
