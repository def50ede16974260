package predictor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/salmamehrez85/UniMate/utils"
)

// CourseProfile is the semantic profile the LLM extracts from a course's
// name and outline. Ephemeral; recomputed on every request.
type CourseProfile struct {
	DomainTags      []string `json:"domain_tags"`
	MainTopics      []string `json:"main_topics"`
	Skills          []string `json:"skills"`
	Difficulty      string   `json:"difficulty"`       // Intro, Intermediate, Advanced
	AssessmentStyle string   `json:"assessment_style"` // Implementation, Analysis, Mixed
}

// defaultProfile is the neutral profile used whenever the LLM path fails.
func defaultProfile() CourseProfile {
	return CourseProfile{
		DomainTags:      []string{},
		MainTopics:      []string{},
		Skills:          []string{},
		Difficulty:      "Intermediate",
		AssessmentStyle: "Mixed",
	}
}

// courseProfileSchema is the JSON schema for structured profile extraction
var courseProfileSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"domain_tags": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "Domain tags like Programming, Math, Systems, AI",
		},
		"main_topics": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "3-8 main topics covered in the course",
		},
		"skills": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "2-6 specific skills students learn",
		},
		"difficulty": map[string]interface{}{
			"type": "string",
			"enum": []string{"Intro", "Intermediate", "Advanced"},
		},
		"assessment_style": map[string]interface{}{
			"type": "string",
			"enum": []string{"Implementation", "Analysis", "Mixed"},
		},
	},
	"required": []string{"domain_tags", "main_topics", "skills", "difficulty", "assessment_style"},
}

// ProfileCourse extracts a semantic profile for a course. It never returns an
// error: any failure past the retry budget yields the neutral default profile.
func (s *Service) ProfileCourse(ctx context.Context, courseName, outlineText string) CourseProfile {
	if s.generator == nil {
		return defaultProfile()
	}

	if strings.TrimSpace(outlineText) == "" {
		outlineText = courseName
	}

	userPrompt := fmt.Sprintf(`Analyze this course outline and extract semantic characteristics.
Course Name: %s
Outline: %s

Return a JSON object with:
- domain_tags: List of domain tags (e.g., "Programming", "Math", "Systems")
- main_topics: 3-8 main topics covered in the course
- skills: 2-6 specific skills students learn
- difficulty: One of "Intro", "Intermediate", "Advanced"
- assessment_style: One of "Implementation", "Analysis", "Mixed"`, courseName, outlineText)

	var profile CourseProfile
	err := s.callStructured(ctx,
		"You are an academic advisor who profiles university courses from their outlines.",
		userPrompt, "course_profile", courseProfileSchema, &profile)
	if err != nil {
		log.Printf("Course profiling failed for %q, using default profile: %v", courseName, err)
		return defaultProfile()
	}

	return profile
}

// callStructured issues a structured-output LLM call with the retry policy:
// up to 3 attempts, a fixed pacing delay before every attempt, linear backoff
// after a detected rate-limit response, immediate retry on other errors.
func (s *Service) callStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]interface{}, out interface{}) error {
	const maxAttempts = 3

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := sleepCtx(ctx, s.paceDelay); err != nil {
			return err
		}

		raw, err := s.generator.GenerateStructured(ctx, systemPrompt, userPrompt, schemaName, schema)
		if err == nil {
			if parseErr := utils.ExtractJSONTo(raw, out); parseErr == nil {
				return nil
			} else {
				err = fmt.Errorf("malformed LLM response: %w", parseErr)
			}
		}
		lastErr = err

		if isRateLimited(err) {
			backoff := s.rateLimitBackoff * time.Duration(attempt+1)
			log.Printf("LLM rate limited, waiting %s before retry", backoff)
			if err := sleepCtx(ctx, backoff); err != nil {
				return err
			}
		} else if attempt < maxAttempts-1 {
			log.Printf("LLM call failed (attempt %d): %v", attempt+1, err)
		}
	}

	return lastErr
}

// isRateLimited detects rate-limit responses from the error text
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "exhausted") || strings.Contains(msg, "rate limit")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
