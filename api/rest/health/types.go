package health

type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

// reports the curated set loaded by the most recent initialize
type ReadinessResponse struct {
	Status         string `json:"status"`
	CuratedEntries int    `json:"curated_entries"`
	CuratedVectors int    `json:"curated_vectors"`
}
