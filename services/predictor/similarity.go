package predictor

import (
	"context"
	"encoding/json"
	"fmt"
)

// profiledCourse is the shape handed to the LLM for similarity ranking.
// The ID is the course code, which the ranking echoes back as courseId.
type profiledCourse struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Profile CourseProfile `json:"profile"`
}

// rankedCourse is one entry of the LLM's similarity ranking.
type rankedCourse struct {
	CourseID        string  `json:"courseId"`
	SimilarityScore float64 `json:"similarity_score"`
	Reason          string  `json:"reason"`
}

type similarityRanking struct {
	RankedPastCourses []rankedCourse `json:"ranked_past_courses"`
}

// similarityRankingSchema builds the JSON schema for the ranking response.
// courseId is constrained to the closed set of valid past-course IDs so the
// model cannot invent identifiers the caller cannot resolve.
func similarityRankingSchema(validIDs []string) map[string]interface{} {
	courseIDSchema := map[string]interface{}{
		"type":        "string",
		"description": "The course ID of the past course",
	}
	if len(validIDs) > 0 {
		courseIDSchema["enum"] = validIDs
	}

	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"ranked_past_courses": map[string]interface{}{
				"type":        "array",
				"description": "Top 3 most similar past courses, most similar first",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"courseId": courseIDSchema,
						"similarity_score": map[string]interface{}{
							"type":        "number",
							"description": "Float between 0.0 (very different) and 1.0 (very similar)",
						},
						"reason": map[string]interface{}{
							"type":        "string",
							"description": "Short explanation of why these courses are similar",
						},
					},
					"required": []string{"courseId", "similarity_score", "reason"},
				},
			},
		},
		"required": []string{"ranked_past_courses"},
	}
}

// rankSimilarCourses asks the LLM to rank the past courses by semantic
// similarity to the target. A failed call is an error so the caller can
// distinguish "the model found nothing similar" from "the model never
// answered".
func (s *Service) rankSimilarCourses(ctx context.Context, target profiledCourse, past []profiledCourse) (similarityRanking, error) {
	if s.generator == nil || len(past) == 0 {
		return similarityRanking{RankedPastCourses: []rankedCourse{}}, nil
	}

	targetJSON, err := json.MarshalIndent(target, "", "  ")
	if err != nil {
		return similarityRanking{}, err
	}
	pastJSON, err := json.MarshalIndent(past, "", "  ")
	if err != nil {
		return similarityRanking{}, err
	}

	userPrompt := fmt.Sprintf(`Compare the CURRENT COURSE with PAST COURSES and rank by similarity.

CURRENT COURSE:
%s

PAST COURSES:
%s

Task: Identify the TOP 3 most similar past courses based on skills, topics, and difficulty.
For each similar course, provide:
- courseId: The course ID from the past courses
- similarity_score: A float between 0.0 (very different) and 1.0 (very similar)
- reason: A short explanation of why they are similar (mention overlapping skills/topics)

Return JSON with a "ranked_past_courses" array.`, targetJSON, pastJSON)

	validIDs := make([]string, 0, len(past))
	for _, p := range past {
		validIDs = append(validIDs, p.ID)
	}

	var ranking similarityRanking
	if err := s.callStructured(ctx,
		"You compare university courses by their semantic profiles and rank them by similarity.",
		userPrompt, "similarity_ranking", similarityRankingSchema(validIDs), &ranking); err != nil {
		return similarityRanking{}, fmt.Errorf("similarity ranking for %q: %w", target.Name, err)
	}

	if ranking.RankedPastCourses == nil {
		ranking.RankedPastCourses = []rankedCourse{}
	}
	return ranking, nil
}
