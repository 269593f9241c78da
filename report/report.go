package report

import "time"

// Record is one filed unit of work. Every listed worker is credited with the
// full Hours value.
type Record struct {
	ID          string
	Timestamp   time.Time
	SiteID      string
	SiteName    string
	Description string
	Workers     []Worker
	Hours       float64
	MediaRef    string
	Transcript  string
	Comment     string
}

// Worker is a worker credited on a record. Name is snapshotted at filing time.
type Worker struct {
	ID   string
	Name string
}

// Profile is the worker-directory entry used to enrich aggregates.
type Profile struct {
	WorkerID   string
	Name       string
	Position   string
	HourlyRate float64
}

// Site is a physical work location reports are tagged against.
type Site struct {
	ID   string
	Name string
}

// WorkerName returns the snapshotted name of workerID on r.
func (r Record) WorkerName(workerID string) (string, bool) {
	for _, worker := range r.Workers {
		if worker.ID == workerID {
			return worker.Name, true
		}
	}
	return "", false
}
