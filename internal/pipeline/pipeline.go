package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aryasetiadi/cv-evaluator/internal/contextstore"
	"github.com/aryasetiadi/cv-evaluator/internal/model"
	"github.com/aryasetiadi/cv-evaluator/internal/service"
	"go.uber.org/zap"
)

const projectExcerptLen = 1000

const fallbackSummary = "Unable to generate comprehensive summary due to evaluation errors."

// Pipeline runs the ordered evaluation steps over the extracted CV and
// project texts. It holds no per-task state; a single instance serves all
// concurrent tasks.
//
// Failure policy: a model response that cannot be parsed degrades to a
// neutral default for that step. Anything else (retriever failure, retry
// budget exhausted) aborts and propagates to the caller.
type Pipeline struct {
	gateway   *service.Gateway
	retriever contextstore.Retriever
	log       *zap.Logger
}

func New(gateway *service.Gateway, retriever contextstore.Retriever, log *zap.Logger) *Pipeline {
	return &Pipeline{gateway: gateway, retriever: retriever, log: log}
}

type cvMatchResponse struct {
	MatchRate      float64            `json:"match_rate"`
	Feedback       string             `json:"feedback"`
	DetailedScores model.CVEvaluation `json:"detailed_scores"`
}

type projectResponse struct {
	Score          float64                 `json:"score"`
	Feedback       string                  `json:"feedback"`
	DetailedScores model.ProjectEvaluation `json:"detailed_scores"`
}

// Evaluate produces a fully populated result for one candidate.
func (p *Pipeline) Evaluate(ctx context.Context, cvText, projectText, jobDescription string) (*model.EvaluationResult, error) {
	p.log.Info("step 1: extracting structured information from CV")
	cvData, err := p.extractCVStructure(ctx, cvText)
	if err != nil {
		return nil, err
	}

	p.log.Info("step 2: retrieving job context for CV evaluation")
	cvContext, err := p.retrieveCVContext(ctx, cvData)
	if err != nil {
		return nil, err
	}

	p.log.Info("step 3: evaluating CV match with job requirements")
	cvMatch, err := p.evaluateCVMatch(ctx, cvData, jobDescription, cvContext)
	if err != nil {
		return nil, err
	}

	p.log.Info("step 4: evaluating project report")
	projectEval, err := p.evaluateProjectReport(ctx, projectText)
	if err != nil {
		return nil, err
	}

	p.log.Info("step 5: generating overall evaluation summary")
	summary := p.generateOverallSummary(ctx, cvMatch, projectEval)

	return &model.EvaluationResult{
		CVMatchRate:              cvMatch.MatchRate,
		CVFeedback:               cvMatch.Feedback,
		ProjectScore:             projectEval.Score,
		ProjectFeedback:          projectEval.Feedback,
		OverallSummary:           summary,
		CVEvaluationDetails:      &cvMatch.DetailedScores,
		ProjectEvaluationDetails: &projectEval.DetailedScores,
	}, nil
}

// extractCVStructure pulls a structured profile from the raw CV text.
// Malformed output falls back to an empty profile; extraction failure must
// not abort the evaluation.
func (p *Pipeline) extractCVStructure(ctx context.Context, cvText string) (model.ExtractedCVData, error) {
	var cvData model.ExtractedCVData
	err := p.gateway.CompleteJSON(ctx, extractCVPrompt(cvText), 0.1, &cvData)
	if err != nil {
		if !errors.Is(err, service.ErrMalformedResponse) {
			return cvData, err
		}
		p.log.Warn("CV extraction unparseable, continuing with empty profile", zap.Error(err))
		cvData = model.ExtractedCVData{}
	}
	return cvData, nil
}

// retrieveCVContext grounds the CV evaluation in the relevant job
// description and rubric documents, blank-line separated.
func (p *Pipeline) retrieveCVContext(ctx context.Context, cvData model.ExtractedCVData) (string, error) {
	topSkills := cvData.Skills
	if len(topSkills) > 5 {
		topSkills = topSkills[:5]
	}
	jobQuery := strings.TrimSpace(jobContextQueryPrefix + " " + strings.Join(topSkills, " "))

	jobDocs, err := p.retriever.Retrieve(ctx, jobQuery, model.DocTypeJobDescription, 2)
	if err != nil {
		return "", fmt.Errorf("retrieve job context: %w", err)
	}
	rubricDocs, err := p.retriever.Retrieve(ctx, cvRubricQuery, model.DocTypeScoringRubric, 1)
	if err != nil {
		return "", fmt.Errorf("retrieve cv rubric: %w", err)
	}

	return joinDocs(append(jobDocs, rubricDocs...)), nil
}

func (p *Pipeline) evaluateCVMatch(ctx context.Context, cvData model.ExtractedCVData, jobDescription, retrievedContext string) (cvMatchResponse, error) {
	var resp cvMatchResponse
	err := p.gateway.CompleteJSON(ctx, cvMatchPrompt(cvData, jobDescription, retrievedContext), 0.1, &resp)
	if err != nil {
		if !errors.Is(err, service.ErrMalformedResponse) {
			return resp, err
		}
		p.log.Warn("CV match evaluation unparseable, using neutral default", zap.Error(err))
		return defaultCVMatch(), nil
	}

	resp.MatchRate = clamp(resp.MatchRate, 0, 1)
	clampCVScores(&resp.DetailedScores)
	return resp, nil
}

// evaluateProjectReport scores the project in two passes: an initial
// evaluation against the rubric, then a refinement pass that is shown the
// initial evaluation and an excerpt of the report. The refined result
// supersedes the initial one.
func (p *Pipeline) evaluateProjectReport(ctx context.Context, projectText string) (projectResponse, error) {
	rubricDocs, err := p.retriever.Retrieve(ctx, projectRubricQuery, model.DocTypeScoringRubric, 2)
	if err != nil {
		return projectResponse{}, fmt.Errorf("retrieve project rubric: %w", err)
	}
	rubric := joinDocs(rubricDocs)

	var initial projectResponse
	err = p.gateway.CompleteJSON(ctx, projectInitialPrompt(rubric, projectText), 0.2, &initial)
	if err != nil {
		if !errors.Is(err, service.ErrMalformedResponse) {
			return initial, err
		}
		p.log.Warn("initial project evaluation unparseable, using neutral default", zap.Error(err))
		return defaultProjectEval(), nil
	}

	initialJSON, err := json.Marshal(initial)
	if err != nil {
		return projectResponse{}, fmt.Errorf("marshal initial evaluation: %w", err)
	}

	var refined projectResponse
	err = p.gateway.CompleteJSON(ctx, projectRefinePrompt(string(initialJSON), excerpt(projectText, projectExcerptLen)), 0.1, &refined)
	if err != nil {
		if !errors.Is(err, service.ErrMalformedResponse) {
			return refined, err
		}
		p.log.Warn("project refinement unparseable, using neutral default", zap.Error(err))
		return defaultProjectEval(), nil
	}

	refined.Score = clamp(refined.Score, 1, 10)
	clampProjectScores(&refined.DetailedScores)
	return refined, nil
}

// generateOverallSummary never fails the task: any error degrades to a
// fixed generic sentence.
func (p *Pipeline) generateOverallSummary(ctx context.Context, cvMatch cvMatchResponse, projectEval projectResponse) string {
	prompt := summaryPrompt(cvMatch.Feedback, projectEval.Feedback, cvMatch.MatchRate, projectEval.Score)
	summary, err := p.gateway.Complete(ctx, prompt, 0.3)
	if err != nil {
		p.log.Warn("overall summary generation failed, using fallback", zap.Error(err))
		return fallbackSummary
	}
	return strings.TrimSpace(summary)
}

func defaultCVMatch() cvMatchResponse {
	return cvMatchResponse{
		MatchRate: 0.5,
		Feedback:  "Unable to evaluate CV properly",
		DetailedScores: model.CVEvaluation{
			TechnicalSkillsMatch: 3,
			ExperienceLevel:      3,
			RelevantAchievements: 3,
			CulturalFit:          3,
			OverallScore:         3,
		},
	}
}

func defaultProjectEval() projectResponse {
	return projectResponse{
		Score:    5.0,
		Feedback: "Unable to evaluate project properly",
		DetailedScores: model.ProjectEvaluation{
			Correctness:   3,
			CodeQuality:   3,
			Resilience:    3,
			Documentation: 3,
			Creativity:    3,
			OverallScore:  3,
		},
	}
}

func joinDocs(docs []model.ContextDocument) string {
	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content)
	}
	return strings.Join(contents, "\n\n")
}

func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampCVScores(s *model.CVEvaluation) {
	s.TechnicalSkillsMatch = clamp(s.TechnicalSkillsMatch, 1, 5)
	s.ExperienceLevel = clamp(s.ExperienceLevel, 1, 5)
	s.RelevantAchievements = clamp(s.RelevantAchievements, 1, 5)
	s.CulturalFit = clamp(s.CulturalFit, 1, 5)
	s.OverallScore = clamp(s.OverallScore, 1, 5)
}

func clampProjectScores(s *model.ProjectEvaluation) {
	s.Correctness = clamp(s.Correctness, 1, 5)
	s.CodeQuality = clamp(s.CodeQuality, 1, 5)
	s.Resilience = clamp(s.Resilience, 1, 5)
	s.Documentation = clamp(s.Documentation, 1, 5)
	s.Creativity = clamp(s.Creativity, 1, 5)
	s.OverallScore = clamp(s.OverallScore, 1, 5)
}
