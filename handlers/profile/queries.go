package profile

// Profile queries
const (
	// SelectProfileQuery retrieves a full profile by user id
	SelectProfileQuery = `
        SELECT
            p.id,
            p.full_name,
            p.title,
            p.company,
            p.location,
            p.bio,
            p.skills,
            p.interests,
            p.goals,
            p.linkedin_url,
            p.twitter_url,
            p.website_url,
            p.avatar_url,
            p.is_visible,
            p.status,
            p.updated_at
        FROM profiles p
        WHERE p.id = $1
    `

	// SelectPublicProfileQuery retrieves the fields other attendees may see
	SelectPublicProfileQuery = `
        SELECT
            p.id,
            p.full_name,
            p.title,
            p.company,
            p.location,
            p.bio,
            p.skills,
            p.interests,
            p.avatar_url
        FROM profiles p
        WHERE p.id = $1 AND p.is_visible = true
    `

	// ListAttendeesQuery lists visible attendee profiles
	ListAttendeesQuery = `
        SELECT
            p.id,
            p.full_name,
            p.title,
            p.company,
            p.location,
            p.bio,
            p.skills,
            p.interests,
            p.avatar_url
        FROM profiles p
        WHERE p.is_visible = true AND p.id != $1
        ORDER BY p.full_name ASC
    `

	// UpdateProfileQuery writes the mutable profile fields
	UpdateProfileQuery = `
        UPDATE profiles SET
            full_name = $1,
            title = $2,
            company = $3,
            location = $4,
            bio = $5,
            skills = $6,
            interests = $7,
            goals = $8,
            linkedin_url = $9,
            twitter_url = $10,
            website_url = $11,
            is_visible = $12,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $13
    `
)
