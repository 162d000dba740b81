package matchmaker

// CandidateProfile is the slice of a profile the scorer shows the model and
// returns to the caller for display
type CandidateProfile struct {
	ID        string   `json:"id"`
	FullName  string   `json:"full_name"`
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location"`
	Bio       string   `json:"bio"`
	Skills    []string `json:"skills"`
	Interests []string `json:"interests"`
	Goals     []string `json:"goals"`
	AvatarURL string   `json:"avatar_url,omitempty"`
}

// Match is a scored compatibility suggestion
type Match struct {
	ID              string            `json:"id,omitempty"`
	UserID          string            `json:"user_id"`
	MatchedUserID   string            `json:"matched_user_id"`
	EventID         *string           `json:"event_id"`
	MatchScore      int               `json:"match_score"`
	ConfidenceScore float64           `json:"confidence_score"`
	AIExplanation   string            `json:"ai_explanation"`
	SharedSkills    []string          `json:"shared_skills"`
	SharedInterests []string          `json:"shared_interests"`
	Status          string            `json:"status"`
	Profile         *CandidateProfile `json:"profile,omitempty"`
}

// matchAnalysis is one entry of the model's JSON array reply. Index refers
// into the candidate pool sent with the prompt.
type matchAnalysis struct {
	Index           int      `json:"index"`
	Score           int      `json:"score"`
	Confidence      float64  `json:"confidence"`
	Explanation     string   `json:"explanation"`
	SharedSkills    []string `json:"shared_skills"`
	SharedInterests []string `json:"shared_interests"`
}
