package domain

// BlockRecord is one observed chain block. Height is the sort key.
type BlockRecord struct {
	Height    uint64 `json:"height"`
	Timestamp string `json:"timestamp"`
	Hash      string `json:"hash"`
}

// NetworkAlert is the ephemeral output of a block health check.
type NetworkAlert struct {
	Type      string `json:"type"`
	Network   string `json:"network"`
	Info      string `json:"info"`
	BlockLink string `json:"blocklink"`
}

// AlertTypeNetwork tags alerts raised by the block monitor.
const AlertTypeNetwork = "network-alert"

// HealthCheck is the result of one monitoring pass.
type HealthCheck struct {
	IsHealthy bool           `json:"isHealthy"`
	Alerts    []NetworkAlert `json:"alerts"`
}
