package services

import (
	"context"
	"fmt"
	"strings"

	"mindbloom-backend/application/analysis"
	"mindbloom-backend/application/ports"
	"mindbloom-backend/domain/core/entities"
	"mindbloom-backend/domain/core/valueobjects"
	pkgerrors "mindbloom-backend/pkg/errors"
	"mindbloom-backend/pkg/observability"

	"go.uber.org/zap"
)

// Relevance strategies selectable by configuration.
const (
	RelevanceHeuristic = analysis.StrategyHeuristic
	RelevanceLLM       = analysis.StrategyLLM
)

// Analysis sources recorded on stored analyses.
const (
	SourceHeuristic = "heuristic"
	SourceGemini    = "gemini"
)

// ResponseRequest is one interview answer to analyse.
type ResponseRequest struct {
	Question  string `json:"question" validate:"max=1000"`
	Response  string `json:"response_text" validate:"required,max=20000"`
	PatientID string `json:"patient_id" validate:"required"`
	SessionID string `json:"session_id" validate:"max=100"`
}

// VoiceRequest is a recorded answer to transcribe and analyse.
type VoiceRequest struct {
	Question  string
	PatientID string
	SessionID string
	Audio     []byte
	MimeType  string
}

// VoiceAnalysis is the outcome of a recorded answer.
type VoiceAnalysis struct {
	Transcript string                     `json:"transcript"`
	Analysis   *entities.ResponseAnalysis `json:"analysis"`
	Relevance  analysis.RelevanceResult   `json:"relevance"`
}

// PatientContext is what the interviewer knows about a patient so far.
type PatientContext struct {
	PatientID    string                       `json:"patient_id"`
	Analyses     []*entities.ResponseAnalysis `json:"analyses"`
	MemoryCount  int                          `json:"memory_count"`
	CommonThemes []string                     `json:"common_themes"`
}

// AnalysisService analyses interview answers and relates them to stored memories.
type AnalysisService struct {
	Base
	repos     *ports.Repositories
	access    *AccessPolicy
	gen       ports.TextGenerator
	strategy  string
	metrics   *observability.Metrics
	collector *observability.Collector
}

// NewAnalysisService creates the service. strategy is RelevanceHeuristic or
// RelevanceLLM; the LLM strategy needs an enabled generator.
func NewAnalysisService(base Base, repos *ports.Repositories, access *AccessPolicy, gen ports.TextGenerator,
	strategy string, metrics *observability.Metrics, collector *observability.Collector) *AnalysisService {
	return &AnalysisService{
		Base:      base,
		repos:     repos,
		access:    access,
		gen:       gen,
		strategy:  strategy,
		metrics:   metrics,
		collector: collector,
	}
}

func (s *AnalysisService) llm() bool {
	return s.gen != nil && s.gen.Enabled()
}

// AnalyzeResponse assesses an answer, stores the assessment and returns it.
// Storage failures are logged; the assessment is still returned.
func (s *AnalysisService) AnalyzeResponse(ctx context.Context, actor *Actor, req ResponseRequest) (*entities.ResponseAnalysis, error) {
	if err := s.access.Patient(ctx, actor, req.PatientID); err != nil {
		return nil, err
	}
	record := s.assess(ctx, req)
	if err := s.repos.Analyses.Save(ctx, record); err != nil {
		s.log().Error("Failed to store response analysis", zap.String("patientID", req.PatientID), zap.Error(err))
	}
	return record, nil
}

type llmAssessment struct {
	MemoryRecall        *float64 `json:"memory_recall"`
	EmotionalEngagement *float64 `json:"emotional_engagement"`
	CognitiveCoherence  *float64 `json:"cognitive_coherence"`
	MemoryType          string   `json:"memory_type"`
	Observations        []string `json:"observations"`
	Recommendations     []string `json:"recommendations"`
}

func (s *AnalysisService) assess(ctx context.Context, req ResponseRequest) *entities.ResponseAnalysis {
	a := analysis.Assess(req.Response)
	record := &entities.ResponseAnalysis{
		ID:                  newID(),
		PatientID:           req.PatientID,
		SessionID:           req.SessionID,
		Question:            req.Question,
		Response:            req.Response,
		Themes:              a.Themes,
		Keywords:            a.Keywords,
		EmotionalTone:       a.EmotionalTone,
		MemoryType:          a.MemoryType,
		MemoryRecall:        a.MemoryRecall,
		EmotionalEngagement: a.EmotionalEngagement,
		CognitiveCoherence:  a.CognitiveCoherence,
		Observations:        nonNil(a.Observations),
		Recommendations:     nonNil(a.Recommendations),
		Source:              SourceHeuristic,
		CreatedAt:           s.now(),
	}
	if !s.llm() || len(strings.Fields(req.Response)) == 0 {
		return record
	}

	var out llmAssessment
	if err := s.gen.GenerateJSON(ctx, assessmentPrompt(req.Question, req.Response), &out); err != nil {
		s.log().Warn("Gemini assessment failed, keeping heuristic scores", zap.Error(err))
		return record
	}
	if out.MemoryRecall == nil || out.EmotionalEngagement == nil || out.CognitiveCoherence == nil {
		s.log().Warn("Gemini assessment incomplete, keeping heuristic scores")
		return record
	}
	record.MemoryRecall = bound(*out.MemoryRecall)
	record.EmotionalEngagement = bound(*out.EmotionalEngagement)
	record.CognitiveCoherence = bound(*out.CognitiveCoherence)
	switch t := entities.MemoryType(strings.ToLower(out.MemoryType)); t {
	case entities.MemoryEpisodic, entities.MemorySemantic, entities.MemoryProcedural:
		record.MemoryType = t
	}
	if len(out.Observations) > 0 {
		record.Observations = out.Observations
	}
	if len(out.Recommendations) > 0 {
		record.Recommendations = out.Recommendations
	} else {
		record.Recommendations = analysis.Recommend(record.MemoryRecall, record.EmotionalEngagement, record.CognitiveCoherence)
	}
	record.Source = SourceGemini
	return record
}

func assessmentPrompt(question, response string) string {
	return fmt.Sprintf("You support caregivers of people living with dementia. Assess this interview answer.\n"+
		"Question: %q\nAnswer: %q\n\n"+
		"Return JSON with keys memory_recall, emotional_engagement and cognitive_coherence (numbers from 0 to 10), "+
		"memory_type (episodic, semantic or procedural), observations and recommendations (short sentences).",
		question, response)
}

func bound(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > analysis.MaxScore:
		return analysis.MaxScore
	}
	return float64(int(v*10+0.5)) / 10
}

// FindRelevantMemories relates an answer to the patient's stored memories.
// It never fails once access is granted: when memories cannot be loaded the
// result is empty with an encouragement instead of a follow-up.
func (s *AnalysisService) FindRelevantMemories(ctx context.Context, actor *Actor, req ResponseRequest) (analysis.RelevanceResult, error) {
	if err := s.access.Patient(ctx, actor, req.PatientID); err != nil {
		return analysis.RelevanceResult{}, err
	}
	return s.relevance(ctx, req.Question, req.Response, req.PatientID), nil
}

func (s *AnalysisService) relevance(ctx context.Context, question, response, patientID string) analysis.RelevanceResult {
	memories, err := s.repos.Memories.ListByPatient(ctx, patientID)
	if err != nil {
		s.log().Error("Failed to load memories for relevance", zap.String("patientID", patientID), zap.Error(err))
		result := analysis.RelevanceResult{
			RelevantMemories:  []analysis.RelevantMemory{},
			EmotionalTheme:    string(valueobjects.MoodNeutral),
			SuggestedFollowUp: analysis.EncouragementFallback,
			Strategy:          analysis.StrategyFallback,
		}
		s.record(ctx, result)
		return result
	}

	var result analysis.RelevanceResult
	if s.strategy == RelevanceLLM && s.llm() {
		result, err = analysis.RankMemoriesWithLLM(ctx, s.gen, question, response, memories)
		if err != nil {
			s.log().Warn("LLM relevance failed, using heuristic", zap.Error(err))
			result = analysis.RankMemories(analysis.Analyze(response), memories)
		}
	} else {
		result = analysis.RankMemories(analysis.Analyze(response), memories)
	}
	s.record(ctx, result)
	return result
}

func (s *AnalysisService) record(ctx context.Context, result analysis.RelevanceResult) {
	s.metrics.RecordRelevance(ctx, result.Strategy, len(result.RelevantMemories))
	s.collector.Relevance(result.Strategy)
}

// Feedback rates an answer while the interview is running.
func (s *AnalysisService) Feedback(req ResponseRequest) analysis.Feedback {
	return analysis.RealTimeFeedback(req.Response)
}

// Summary aggregates the stored analyses of a patient, optionally for one session.
func (s *AnalysisService) Summary(ctx context.Context, actor *Actor, patientID, sessionID string) (*analysis.Summary, error) {
	if err := s.access.Patient(ctx, actor, patientID); err != nil {
		return nil, err
	}
	records, err := s.repos.Analyses.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if sessionID != "" {
		matched := records[:0]
		for _, r := range records {
			if r.SessionID == sessionID {
				matched = append(matched, r)
			}
		}
		records = matched
	}
	summary, ok := analysis.Summarize(patientID, sessionID, records)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("interview analyses")
	}
	return &summary, nil
}

// Context returns the stored analyses of a patient, newest first, with
// the themes that recur across them.
func (s *AnalysisService) Context(ctx context.Context, actor *Actor, patientID string) (*PatientContext, error) {
	if err := s.access.Patient(ctx, actor, patientID); err != nil {
		return nil, err
	}
	records, err := s.repos.Analyses.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	memories, err := s.repos.Memories.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	pc := &PatientContext{
		PatientID:    patientID,
		Analyses:     records,
		MemoryCount:  len(memories),
		CommonThemes: []string{},
	}
	if summary, ok := analysis.Summarize(patientID, "", records); ok {
		pc.CommonThemes = summary.DominantThemes
	}
	return pc, nil
}

// AnalyzeVoice transcribes a recorded answer, analyses it and relates it to
// the patient's memories.
func (s *AnalysisService) AnalyzeVoice(ctx context.Context, actor *Actor, req VoiceRequest) (*VoiceAnalysis, error) {
	if err := s.access.Patient(ctx, actor, req.PatientID); err != nil {
		return nil, err
	}
	if !s.llm() {
		return nil, pkgerrors.NewUnavailableError("speech transcription")
	}
	transcript, err := s.gen.Transcribe(ctx, req.Audio, req.MimeType)
	if err != nil {
		return nil, err
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, pkgerrors.NewValidationError("no speech was recognised in the recording")
	}

	record, err := s.AnalyzeResponse(ctx, actor, ResponseRequest{
		Question:  req.Question,
		Response:  transcript,
		PatientID: req.PatientID,
		SessionID: req.SessionID,
	})
	if err != nil {
		return nil, err
	}
	return &VoiceAnalysis{
		Transcript: transcript,
		Analysis:   record,
		Relevance:  s.relevance(ctx, req.Question, transcript, req.PatientID),
	}, nil
}
