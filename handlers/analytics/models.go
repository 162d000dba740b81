package analytics

// AnalyticsRequest selects which dashboard to compute
type AnalyticsRequest struct {
	Type    string  `json:"type"`
	EventID *string `json:"event_id,omitempty"`
}

// PersonalMetrics is an attendee's own networking dashboard
type PersonalMetrics struct {
	TotalMatches     int            `json:"totalMatches"`
	TotalConnections int            `json:"totalConnections"`
	TotalMeetings    int            `json:"totalMeetings"`
	AvgMatchScore    float64        `json:"avgMatchScore"`
	ConversionRate   float64        `json:"conversionRate"`
	ActivityByDay    map[string]int `json:"activityByDay"`
}

// OrganizerMetrics is the event organizer's dashboard
type OrganizerMetrics struct {
	TotalAttendees int             `json:"totalAttendees"`
	TotalMatches   int             `json:"totalMatches"`
	TotalMeetings  int             `json:"totalMeetings"`
	MatchRate      float64         `json:"matchRate"`
	EngagementRate float64         `json:"engagementRate"`
	HeatmapData    []HeatmapBucket `json:"heatmapData"`
}

// HeatmapBucket is one hour-of-day x day-of-week activity cell
type HeatmapBucket struct {
	Day   int `json:"day"`
	Hour  int `json:"hour"`
	Count int `json:"count"`
}
