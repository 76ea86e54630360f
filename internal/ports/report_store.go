package ports

import "github.com/aalvaropc/appserve/internal/domain"

// ReportStore persists check reports and returns an id for the saved report.
type ReportStore interface {
	SaveReport(report domain.CheckReport) (string, error)
}
