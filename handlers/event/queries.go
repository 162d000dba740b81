package event

// Event queries
const (
	CreateEventQuery = `
        INSERT INTO events (name, description, location, start_date, end_date, organizer_id, join_slug)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `

	// ListEventsQuery lists events with attendee counts and whether the
	// caller has joined. The join slug is only exposed to the organizer.
	ListEventsQuery = `
        SELECT
            e.id, e.name, COALESCE(e.description, ''), COALESCE(e.location, ''),
            e.start_date, e.end_date, e.organizer_id,
            CASE WHEN e.organizer_id = $1 THEN e.join_slug ELSE '' END,
            (SELECT COUNT(*) FROM event_attendees ea WHERE ea.event_id = e.id),
            EXISTS (SELECT 1 FROM event_attendees ea WHERE ea.event_id = e.id AND ea.user_id = $1),
            e.created_at
        FROM events e
        ORDER BY e.start_date ASC
    `

	GetEventQuery = `
        SELECT
            e.id, e.name, COALESCE(e.description, ''), COALESCE(e.location, ''),
            e.start_date, e.end_date, e.organizer_id,
            CASE WHEN e.organizer_id = $2 THEN e.join_slug ELSE '' END,
            (SELECT COUNT(*) FROM event_attendees ea WHERE ea.event_id = e.id),
            EXISTS (SELECT 1 FROM event_attendees ea WHERE ea.event_id = e.id AND ea.user_id = $2),
            e.created_at
        FROM events e
        WHERE e.id = $1
    `

	UpdateEventQuery = `
        UPDATE events
        SET name = $1, description = $2, location = $3, start_date = $4, end_date = $5
        WHERE id = $6 AND organizer_id = $7
    `

	// ResolveSlugQuery finds the event a join slug points at
	ResolveSlugQuery = `
        SELECT id, name FROM events WHERE join_slug = $1
    `

	// JoinEventQuery is idempotent: re-joining is not an error
	JoinEventQuery = `
        INSERT INTO event_attendees (event_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (event_id, user_id) DO NOTHING
    `

	LeaveEventQuery = `
        DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2
    `

	ListAttendeesQuery = `
        SELECT ea.user_id, COALESCE(p.full_name, ''), COALESCE(p.title, ''), COALESCE(p.company, ''), ea.joined_at
        FROM event_attendees ea
        JOIN profiles p ON p.id = ea.user_id
        WHERE ea.event_id = $1 AND p.is_visible = true
        ORDER BY ea.joined_at ASC
    `

	// RegenerateSlugQuery revokes previously shared join links
	RegenerateSlugQuery = `
        UPDATE events
        SET join_slug = $1
        WHERE id = $2 AND organizer_id = $3
        RETURNING join_slug
    `
)
