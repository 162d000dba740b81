package message

// Conversation and message queries
const (
	// GetConversationsQuery lists a user's conversations with the other
	// party's profile, last message preview and unread count
	GetConversationsQuery = `
        WITH last_message AS (
            SELECT
                conversation_id,
                content,
                created_at,
                ROW_NUMBER() OVER (PARTITION BY conversation_id ORDER BY created_at DESC) as rn
            FROM messages
        )
        SELECT
            c.id,
            c.participant_one,
            c.participant_two,
            p.id as other_user_id,
            COALESCE(p.full_name, '') as other_user_name,
            p.avatar_url as other_user_avatar,
            COALESCE(lm.content, '') as last_message,
            lm.created_at as last_message_at,
            (
                SELECT COUNT(*) FROM messages m
                WHERE m.conversation_id = c.id
                AND m.sender_id != $1
                AND m.read = false
            ) as unread_count
        FROM conversations c
        JOIN profiles p ON p.id = CASE
            WHEN c.participant_one = $1 THEN c.participant_two
            ELSE c.participant_one
        END
        LEFT JOIN last_message lm ON lm.conversation_id = c.id AND lm.rn = 1
        WHERE c.participant_one = $1 OR c.participant_two = $1
        ORDER BY lm.created_at DESC NULLS LAST
    `

	// CheckParticipantQuery verifies the user belongs to the conversation
	CheckParticipantQuery = `
        SELECT EXISTS (
            SELECT 1 FROM conversations
            WHERE id = $1 AND (participant_one = $2 OR participant_two = $2)
        )
    `

	// CheckConnectedQuery verifies two users share a connection before a
	// conversation may be opened
	CheckConnectedQuery = `
        SELECT EXISTS (
            SELECT 1 FROM connections
            WHERE (user_id = $1 AND connected_user_id = $2) OR
                  (user_id = $2 AND connected_user_id = $1)
        )
    `

	// CreateConversationQuery inserts the canonical pair; the unique
	// constraint makes the operation idempotent
	CreateConversationQuery = `
        INSERT INTO conversations (participant_one, participant_two)
        VALUES ($1, $2)
        ON CONFLICT (participant_one, participant_two) DO NOTHING
    `

	// SelectConversationIDQuery finds the conversation for a canonical pair
	SelectConversationIDQuery = `
        SELECT id FROM conversations
        WHERE participant_one = $1 AND participant_two = $2
    `

	// GetMessagesQuery lists a conversation's messages in creation order
	GetMessagesQuery = `
        SELECT id, conversation_id, sender_id, content, created_at, read
        FROM messages
        WHERE conversation_id = $1
        ORDER BY created_at ASC
    `

	// CreateMessageQuery appends a message
	CreateMessageQuery = `
        INSERT INTO messages (conversation_id, sender_id, content)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `

	// MarkMessagesReadQuery marks the other party's messages read
	MarkMessagesReadQuery = `
        UPDATE messages
        SET read = true
        WHERE conversation_id = $1 AND sender_id != $2 AND read = false
    `
)
