package matchmaker

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a professional networking matchmaking AI. Respond only with valid JSON."

// BuildMatchPrompt renders the requester and candidate pool into the
// matchmaking prompt. Candidate order defines the index space the model's
// reply refers back to.
func BuildMatchPrompt(requester CandidateProfile, candidates []CandidateProfile) string {
	var sb strings.Builder

	sb.WriteString("You are an AI matchmaking engine for a professional conference networking app.\n\n")
	sb.WriteString("Analyze the user and candidates to generate match scores and explanations.\n\n")

	sb.WriteString("USER PROFILE:\n")
	writeProfile(&sb, requester)

	sb.WriteString("\nCANDIDATE PROFILES:\n")
	for i, c := range candidates {
		fmt.Fprintf(&sb, "\n[%d] %s\n", i, c.FullName)
		fmt.Fprintf(&sb, "Title: %s\n", c.Title)
		fmt.Fprintf(&sb, "Company: %s\n", c.Company)
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(c.Skills, ", "))
		fmt.Fprintf(&sb, "Interests: %s\n", strings.Join(c.Interests, ", "))
		fmt.Fprintf(&sb, "Goals: %s\n", strings.Join(c.Goals, ", "))
		fmt.Fprintf(&sb, "Bio: %s\n", c.Bio)
	}

	sb.WriteString(`
For each candidate, provide a match analysis. Return JSON array with objects containing:
- index: candidate index number
- score: match score 0-100
- confidence: confidence level 0.0-1.0
- explanation: 1-2 sentence explanation of why they match
- shared_skills: array of overlapping skills
- shared_interests: array of overlapping interests

Focus on complementary skills, shared interests, and potential collaboration opportunities.
Return ONLY valid JSON array, no other text.`)

	return sb.String()
}

func writeProfile(sb *strings.Builder, p CandidateProfile) {
	fmt.Fprintf(sb, "Name: %s\n", p.FullName)
	fmt.Fprintf(sb, "Title: %s\n", p.Title)
	fmt.Fprintf(sb, "Company: %s\n", p.Company)
	fmt.Fprintf(sb, "Skills: %s\n", strings.Join(p.Skills, ", "))
	fmt.Fprintf(sb, "Interests: %s\n", strings.Join(p.Interests, ", "))
	fmt.Fprintf(sb, "Goals: %s\n", strings.Join(p.Goals, ", "))
	fmt.Fprintf(sb, "Bio: %s\n", p.Bio)
}
