package model

// ExtractedCVData is the structured profile pulled out of a CV by the
// first pipeline step. Its zero value (everything empty) is the fallback
// used when the model response cannot be parsed.
type ExtractedCVData struct {
	Skills            []string `json:"skills"`
	Experiences       []string `json:"experiences"`
	Projects          []string `json:"projects"`
	Education         []string `json:"education"`
	YearsOfExperience *int     `json:"years_of_experience"`
	Achievements      []string `json:"achievements"`
}

// CVEvaluation holds the CV sub-scores, each in [1,5].
type CVEvaluation struct {
	TechnicalSkillsMatch float64 `json:"technical_skills_match"`
	ExperienceLevel      float64 `json:"experience_level"`
	RelevantAchievements float64 `json:"relevant_achievements"`
	CulturalFit          float64 `json:"cultural_fit"`
	OverallScore         float64 `json:"overall_score"`
}

// ProjectEvaluation holds the project report sub-scores, each in [1,5].
type ProjectEvaluation struct {
	Correctness   float64 `json:"correctness"`
	CodeQuality   float64 `json:"code_quality"`
	Resilience    float64 `json:"resilience"`
	Documentation float64 `json:"documentation"`
	Creativity    float64 `json:"creativity"`
	OverallScore  float64 `json:"overall_score"`
}

// EvaluationResult is the terminal payload attached to a completed task.
type EvaluationResult struct {
	CVMatchRate              float64            `json:"cv_match_rate"`
	CVFeedback               string             `json:"cv_feedback"`
	ProjectScore             float64            `json:"project_score"`
	ProjectFeedback          string             `json:"project_feedback"`
	OverallSummary           string             `json:"overall_summary"`
	CVEvaluationDetails      *CVEvaluation      `json:"cv_evaluation_details,omitempty"`
	ProjectEvaluationDetails *ProjectEvaluation `json:"project_evaluation_details,omitempty"`
}
