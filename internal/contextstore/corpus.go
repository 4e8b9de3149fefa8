package contextstore

import "github.com/aryasetiadi/cv-evaluator/internal/model"

// DefaultCorpus returns the fixed reference documents every deployment
// starts with: the backend job description and the two scoring rubrics.
func DefaultCorpus() []model.ContextDocument {
	return []model.ContextDocument{
		{
			ID:       "job_desc_backend",
			Type:     model.DocTypeJobDescription,
			Category: "backend_developer",
			Content: `Backend Developer Position Requirements:

Technical Skills Required:
- Proficiency in Python, Java, or Node.js
- Experience with REST API development and design
- Knowledge of databases (SQL and NoSQL)
- Cloud platforms experience (AWS, GCP, Azure)
- Understanding of microservices architecture
- Version control with Git
- Experience with Docker and containerization
- API documentation and testing

Experience Requirements:
- 3+ years of backend development experience
- Experience with high-traffic applications
- Knowledge of system design principles
- Experience with CI/CD pipelines
- Understanding of security best practices

Preferred Skills:
- AI/ML integration experience
- Experience with LLM APIs
- Knowledge of vector databases
- Experience with async programming
- DevOps and infrastructure knowledge

Cultural Fit:
- Strong problem-solving skills
- Good communication abilities
- Team collaboration experience
- Continuous learning mindset
- Attention to detail`,
		},
		{
			ID:       "scoring_rubric_cv",
			Type:     model.DocTypeScoringRubric,
			Category: "cv_evaluation",
			Content: `CV Evaluation Scoring Rubric:

Technical Skills Match (1-5):
5 - Exceptional: All required skills + advanced expertise
4 - Strong: Most required skills + some advanced areas
3 - Good: Core required skills present
2 - Adequate: Some required skills, gaps present
1 - Insufficient: Major skill gaps

Experience Level (1-5):
5 - Senior level with complex project leadership
4 - Mid-senior with significant contributions
3 - Mid-level with relevant experience
2 - Junior with some relevant experience
1 - Entry level or limited experience

Relevant Achievements (1-5):
5 - Outstanding achievements with measurable impact
4 - Strong achievements in relevant areas
3 - Good achievements demonstrating competence
2 - Some achievements, limited impact shown
1 - Few or no relevant achievements

Cultural Fit (1-5):
5 - Excellent communication, leadership, learning attitude
4 - Strong collaboration and communication skills
3 - Good team player with communication skills
2 - Adequate interpersonal skills
1 - Limited evidence of soft skills`,
		},
		{
			ID:       "scoring_rubric_project",
			Type:     model.DocTypeScoringRubric,
			Category: "project_evaluation",
			Content: `Project Deliverable Evaluation Rubric:

Correctness (1-5):
5 - Fully meets all requirements with excellent implementation
4 - Meets most requirements with good implementation
3 - Meets core requirements adequately
2 - Partially meets requirements
1 - Fails to meet basic requirements

Code Quality (1-5):
5 - Exceptional: Clean, modular, well-documented, testable
4 - Good: Well-structured with good practices
3 - Adequate: Readable with some structure
2 - Poor: Limited structure, hard to follow
1 - Very poor: Messy, unorganized code

Resilience (1-5):
5 - Comprehensive error handling, retries, fault tolerance
4 - Good error handling with some resilience features
3 - Basic error handling present
2 - Limited error handling
1 - Poor or no error handling

Documentation (1-5):
5 - Excellent: Complete README, API docs, design explanations
4 - Good: Clear README with setup and usage instructions
3 - Adequate: Basic documentation present
2 - Limited: Minimal documentation
1 - Poor: Little to no documentation

Creativity/Bonus (1-5):
5 - Exceptional additional features and innovations
4 - Good additional features or improvements
3 - Some creative elements or enhancements
2 - Minor additional features
1 - No additional features beyond requirements`,
		},
	}
}

// Seed loads the default corpus into the store.
func Seed(s *Store) {
	for _, doc := range DefaultCorpus() {
		s.Add(doc)
	}
}
