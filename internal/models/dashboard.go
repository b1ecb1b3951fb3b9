package models

// DashboardStats aggregates headline counts for the landing page.
type DashboardStats struct {
	TotalArchives      int             `json:"totalArchives"`
	TotalUsers         int             `json:"totalUsers"`
	TotalDocumentTypes int             `json:"totalDocumentTypes"`
	ByCategory         []CategoryCount `json:"byCategory"`
}
