package analytics

// Dashboard queries. Personal queries take the user id; organizer queries
// take the event id.
const (
	CountMatchesQuery = `
        SELECT COUNT(*), COALESCE(AVG(match_score), 0)
        FROM matches
        WHERE user_id = $1
    `

	CountAcceptedMatchesQuery = `
        SELECT COUNT(*) FROM matches
        WHERE user_id = $1 AND status = 'accepted'
    `

	CountConnectionsQuery = `
        SELECT COUNT(*) FROM connections
        WHERE user_id = $1 OR connected_user_id = $1
    `

	CountMeetingsQuery = `
        SELECT COUNT(*) FROM meetings
        WHERE (organizer_id = $1 OR attendee_id = $1) AND status != 'cancelled'
    `

	ActivityByDayQuery = `
        SELECT TO_CHAR(created_at, 'YYYY-MM-DD') as day, COUNT(*)
        FROM analytics_events
        WHERE user_id = $1 AND created_at > CURRENT_TIMESTAMP - INTERVAL '30 days'
        GROUP BY day
        ORDER BY day
    `

	CheckOrganizerRoleQuery = `
        SELECT EXISTS (
            SELECT 1 FROM user_roles
            WHERE user_id = $1 AND role IN ('organizer', 'admin')
        )
    `

	CountEventAttendeesQuery = `
        SELECT COUNT(*) FROM event_attendees WHERE event_id = $1
    `

	CountEventMatchesQuery = `
        SELECT COUNT(*),
               COUNT(DISTINCT user_id)
        FROM matches
        WHERE event_id = $1
    `

	CountEventMeetingsQuery = `
        SELECT COUNT(*),
               COUNT(DISTINCT organizer_id)
        FROM meetings
        WHERE event_id = $1 AND status != 'cancelled'
    `

	// EventHeatmapQuery buckets attendee activity by weekday and hour
	EventHeatmapQuery = `
        SELECT EXTRACT(DOW FROM ae.created_at)::int as day,
               EXTRACT(HOUR FROM ae.created_at)::int as hour,
               COUNT(*)
        FROM analytics_events ae
        JOIN event_attendees ea ON ea.user_id = ae.user_id
        WHERE ea.event_id = $1
        GROUP BY day, hour
        ORDER BY day, hour
    `
)
