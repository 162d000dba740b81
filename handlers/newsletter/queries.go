package newsletter

// Newsletter queries
const (
	SelectSubscriberQuery = `
        SELECT id FROM newsletter_subscriptions WHERE email = $1
    `

	InsertSubscriberQuery = `
        INSERT INTO newsletter_subscriptions (email, confirmed)
        VALUES ($1, true)
    `
)
