package qrcode

// QR connect queries
const (
	// SelectTokenQuery reads a user's stored QR token
	SelectTokenQuery = `
        SELECT qr_code_id, full_name
        FROM profiles
        WHERE id = $1
    `

	// StoreTokenQuery persists a freshly minted QR token. The WHERE clause
	// keeps a concurrent mint from overwriting an existing token, so the
	// first write wins and the token stays stable.
	StoreTokenQuery = `
        UPDATE profiles
        SET qr_code_id = $1
        WHERE id = $2 AND qr_code_id IS NULL
    `

	// ResolveTokenQuery finds the profile owning a scanned token
	ResolveTokenQuery = `
        SELECT id, full_name
        FROM profiles
        WHERE qr_code_id = $1
    `

	// CheckConnectionExistsQuery checks for a connection in either direction
	CheckConnectionExistsQuery = `
        SELECT EXISTS (
            SELECT 1 FROM connections
            WHERE (user_id = $1 AND connected_user_id = $2) OR
                  (user_id = $2 AND connected_user_id = $1)
        )
    `

	// CreateConnectionQuery inserts the directed edge scanner -> owner.
	// The connections_pair_key unique index on the canonical pair turns a
	// lost race into a unique violation, which the handler reports as
	// already_connected.
	CreateConnectionQuery = `
        INSERT INTO connections (user_id, connected_user_id, connected_via, created_at)
        VALUES ($1, $2, 'qr_code', NOW())
        RETURNING id
    `

	// SelectConnectedProfileQuery loads the public snapshot shown after a scan
	SelectConnectedProfileQuery = `
        SELECT
            p.id,
            p.full_name,
            p.title,
            p.company,
            p.bio,
            p.skills,
            p.interests,
            p.linkedin_url,
            p.twitter_url,
            p.website_url,
            p.avatar_url
        FROM profiles p
        WHERE p.id = $1
    `
)
