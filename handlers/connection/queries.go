package connection

// Connection queries
const (
	// GetConnectionsQuery retrieves all connections for a user, in either
	// direction, joined with the other party's public profile fields
	GetConnectionsQuery = `
        SELECT
            c.id,
            c.user_id,
            c.connected_user_id,
            c.connected_via,
            c.created_at,
            p.id as other_user_id,
            COALESCE(p.full_name, '') as other_user_name,
            COALESCE(p.title, '') as other_user_title,
            COALESCE(p.company, '') as other_user_company,
            p.avatar_url as other_user_avatar
        FROM connections c
        JOIN profiles p ON
            (c.user_id = $1 AND c.connected_user_id = p.id) OR
            (c.connected_user_id = $1 AND c.user_id = p.id)
        WHERE c.user_id = $1 OR c.connected_user_id = $1
        ORDER BY c.created_at DESC
    `

	// DeleteConnectionQuery removes a connection the user is part of
	DeleteConnectionQuery = `
        DELETE FROM connections
        WHERE id = $1 AND (user_id = $2 OR connected_user_id = $2)
    `
)
