package pipeline

import (
	"fmt"
	"strings"

	"github.com/aryasetiadi/cv-evaluator/internal/model"
)

// Retrieval queries for the context store. The job context query is
// extended with the candidate's top skills at runtime.
const (
	jobContextQueryPrefix = "backend developer requirements"
	cvRubricQuery         = "CV evaluation scoring technical skills experience"
	projectRubricQuery    = "project evaluation rubric code quality correctness resilience documentation"
)

func extractCVPrompt(cvText string) string {
	return fmt.Sprintf(`Analyze the following CV text and extract structured information in JSON format.
Return ONLY the JSON, no additional text or formatting.

Expected JSON structure:
{
    "skills": ["skill1", "skill2", ...],
    "experiences": ["experience1", "experience2", ...],
    "projects": ["project1", "project2", ...],
    "education": ["education1", "education2", ...],
    "years_of_experience": number_or_null,
    "achievements": ["achievement1", "achievement2", ...]
}

CV Text:
%s`, cvText)
}

func cvMatchPrompt(cvData model.ExtractedCVData, jobDescription, retrievedContext string) string {
	years := "unknown"
	if cvData.YearsOfExperience != nil {
		years = fmt.Sprintf("%d", *cvData.YearsOfExperience)
	}

	return fmt.Sprintf(`You are an expert HR evaluator. Analyze how well this candidate matches the job requirements.

Job Description:
%s

Additional Context:
%s

Candidate Data:
- Skills: %s
- Experience: %s years
- Experiences: %s
- Projects: %s
- Education: %s
- Achievements: %s

Provide evaluation in JSON format:
{
    "match_rate": 0.0-1.0,
    "feedback": "detailed feedback string",
    "detailed_scores": {
        "technical_skills_match": 1-5,
        "experience_level": 1-5,
        "relevant_achievements": 1-5,
        "cultural_fit": 1-5,
        "overall_score": 1-5
    }
}`,
		jobDescription,
		retrievedContext,
		strings.Join(cvData.Skills, ", "),
		years,
		strings.Join(cvData.Experiences, "; "),
		strings.Join(cvData.Projects, "; "),
		strings.Join(cvData.Education, "; "),
		strings.Join(cvData.Achievements, "; "),
	)
}

func projectInitialPrompt(scoringRubric, projectText string) string {
	return fmt.Sprintf(`Evaluate this project report based on the scoring rubric.

Scoring Rubric:
%s

Project Report:
%s

Provide initial evaluation in JSON format:
{
    "score": 1.0-10.0,
    "feedback": "detailed feedback",
    "detailed_scores": {
        "correctness": 1-5,
        "code_quality": 1-5,
        "resilience": 1-5,
        "documentation": 1-5,
        "creativity": 1-5,
        "overall_score": 1-5
    }
}`, scoringRubric, projectText)
}

func projectRefinePrompt(initialJSON, projectExcerpt string) string {
	return fmt.Sprintf(`Review and refine this project evaluation. Consider if the scoring is fair and consistent.

Initial Evaluation:
%s

Project Report (for reference):
%s...

Provide refined evaluation in the same JSON format, but ensure consistency and fairness.`,
		initialJSON, projectExcerpt)
}

func summaryPrompt(cvFeedback, projectFeedback string, cvMatchRate, projectScore float64) string {
	return fmt.Sprintf(`Generate a concise overall summary for this candidate evaluation:

CV Match Rate: %.2f
CV Feedback: %s

Project Score: %.1f/10
Project Feedback: %s

Provide a 2-3 sentence overall summary that highlights key strengths, areas for improvement,
and hiring recommendation.`, cvMatchRate, cvFeedback, projectScore, projectFeedback)
}
