package landing

import "strconv"

// DefaultSector is the industry shown when none is requested.
const DefaultSector = "energy"

// Page is everything the landing page template renders.
type Page struct {
	Brand         Brand
	Partners      []string
	Metrics       []Metric
	Industries    []Industry
	ActiveSector  Industry
	Anomalies     []Anomaly
	ActiveAnomaly Anomaly
	Features      []Feature
	Stats         []Stat
	APIBaseURL    string
}

// NewPage builds the page for the requested sector id and anomaly id. An
// unknown sector falls back to DefaultSector and an unknown or malformed
// anomaly id falls back to the first anomaly.
func NewPage(sector, anomaly, apiBaseURL string) Page {
	return Page{
		Brand:         brand,
		Partners:      clone(partners),
		Metrics:       clone(metrics),
		Industries:    clone(industries),
		ActiveSector:  Sector(sector),
		Anomalies:     clone(anomalies),
		ActiveAnomaly: anomalyByID(anomaly),
		Features:      clone(features),
		Stats:         clone(stats),
		APIBaseURL:    apiBaseURL,
	}
}

// Sector returns the industry with the given id, or the default one.
func Sector(id string) Industry {
	var fallback Industry
	for _, industry := range industries {
		if industry.ID == id {
			return industry
		}
		if industry.ID == DefaultSector {
			fallback = industry
		}
	}
	return fallback
}

// Sectors returns the ids of all industries in display order.
func Sectors() []string {
	ids := make([]string, len(industries))
	for i, industry := range industries {
		ids[i] = industry.ID
	}
	return ids
}

func anomalyByID(raw string) Anomaly {
	id, err := strconv.Atoi(raw)
	if err == nil {
		for _, a := range anomalies {
			if a.ID == id {
				return a
			}
		}
	}
	return anomalies[0]
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
