package meeting

// Meeting queries
const (
	CreateMeetingQuery = `
        INSERT INTO meetings (organizer_id, attendee_id, title, meeting_type, location, scheduled_at, duration_minutes, status, event_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, 'scheduled', $8)
        RETURNING id, created_at
    `

	// ListMeetingsQuery lists meetings the caller is part of, soonest first
	ListMeetingsQuery = `
        SELECT
            m.id, m.organizer_id, m.attendee_id, m.title, m.meeting_type,
            COALESCE(m.location, ''), m.scheduled_at, m.duration_minutes,
            m.status, m.event_id,
            COALESCE(p.full_name, '') as other_user_name,
            m.created_at
        FROM meetings m
        JOIN profiles p ON p.id = CASE
            WHEN m.organizer_id = $1 THEN m.attendee_id
            ELSE m.organizer_id
        END
        WHERE m.organizer_id = $1 OR m.attendee_id = $1
        ORDER BY m.scheduled_at ASC
    `

	// SelectMeetingQuery loads a meeting only if the caller participates
	SelectMeetingQuery = `
        SELECT id, organizer_id, attendee_id, title, meeting_type,
            COALESCE(location, ''), scheduled_at, duration_minutes, status, event_id, created_at
        FROM meetings
        WHERE id = $1 AND (organizer_id = $2 OR attendee_id = $2)
    `

	UpdateMeetingQuery = `
        UPDATE meetings
        SET title = $1, meeting_type = $2, location = $3, scheduled_at = $4,
            duration_minutes = $5, status = 'rescheduled', updated_at = CURRENT_TIMESTAMP
        WHERE id = $6
    `

	CancelMeetingQuery = `
        UPDATE meetings
        SET status = 'cancelled', updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
    `

	// UpcomingMeetingsQuery lists both parties' future non-cancelled slots,
	// used to build the suggestion prompt
	UpcomingMeetingsQuery = `
        SELECT scheduled_at, duration_minutes
        FROM meetings
        WHERE (organizer_id = $1 OR attendee_id = $1 OR organizer_id = $2 OR attendee_id = $2)
        AND status != 'cancelled'
        AND scheduled_at > CURRENT_TIMESTAMP
        ORDER BY scheduled_at ASC
    `
)
