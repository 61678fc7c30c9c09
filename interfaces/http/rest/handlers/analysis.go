package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"mindbloom-backend/application/services"
	pkgerrors "mindbloom-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultAudioType = "audio/wav"

// AnalysisHandler serves interview-response analysis.
type AnalysisHandler struct {
	base
	analysis      *services.AnalysisService
	maxAudioBytes int64
}

// NewAnalysisHandler creates a new analysis handler. Recordings larger than
// maxAudioBytes are rejected.
func NewAnalysisHandler(analysis *services.AnalysisService, maxAudioBytes int64, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{base: newBase(errs, logger), analysis: analysis, maxAudioBytes: maxAudioBytes}
}

type feedbackRequest struct {
	Response string `json:"response_text" validate:"required,max=20000"`
}

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data")
}

// decodeResponse accepts the answer either as JSON or as form fields.
func (h *AnalysisHandler) decodeResponse(w http.ResponseWriter, r *http.Request) (services.ResponseRequest, error) {
	var req services.ResponseRequest
	if !isForm(r) {
		return req, h.decode(w, r, &req)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return req, pkgerrors.NewValidationError("Invalid form body: " + err.Error())
	}
	req = services.ResponseRequest{
		Question:  r.FormValue("question"),
		Response:  r.FormValue("response_text"),
		PatientID: r.FormValue("patient_id"),
		SessionID: r.FormValue("session_id"),
	}
	return req, validate(req)
}

// AnalyzeResponse handles POST /interview-analysis/analyze-response
func (h *AnalysisHandler) AnalyzeResponse(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := h.decodeResponse(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	record, err := h.analysis.AnalyzeResponse(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, record)
}

// FindRelevantMemories handles POST /interview-analysis/find-relevant-memories
func (h *AnalysisHandler) FindRelevantMemories(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := h.decodeResponse(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.analysis.FindRelevantMemories(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, result)
}

// RealTimeFeedback handles POST /interview-analysis/real-time-feedback
func (h *AnalysisHandler) RealTimeFeedback(w http.ResponseWriter, r *http.Request) {
	if _, err := h.actor(r); err != nil {
		h.fail(w, r, err)
		return
	}
	var req feedbackRequest
	if isForm(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			h.fail(w, r, pkgerrors.NewValidationError("Invalid form body: "+err.Error()))
			return
		}
		req.Response = r.FormValue("response_text")
		if err := validate(req); err != nil {
			h.fail(w, r, err)
			return
		}
	} else if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, h.analysis.Feedback(services.ResponseRequest{Response: req.Response}))
}

// AnalyzeVoice handles POST /interview-analysis/analyze-voice-response. The
// recording comes in the multipart field "audio".
func (h *AnalysisHandler) AnalyzeVoice(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAudioBytes+maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		h.fail(w, r, uploadError(err))
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		h.fail(w, r, pkgerrors.NewValidationError("audio file is required"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, h.maxAudioBytes+1))
	if err != nil {
		h.fail(w, r, uploadError(err))
		return
	}
	if int64(len(audio)) > h.maxAudioBytes {
		h.fail(w, r, pkgerrors.NewValidationError("File too large").WithCode("FILE_TOO_LARGE"))
		return
	}
	if len(audio) == 0 {
		h.fail(w, r, pkgerrors.NewValidationError("audio file is empty"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "audio/") {
		mimeType = defaultAudioType
	}
	req := services.VoiceRequest{
		Question:  r.FormValue("question"),
		PatientID: r.FormValue("patient_id"),
		SessionID: r.FormValue("session_id"),
		Audio:     audio,
		MimeType:  mimeType,
	}
	if req.PatientID == "" {
		h.fail(w, r, pkgerrors.NewValidationError("patient_id is required"))
		return
	}

	result, err := h.analysis.AnalyzeVoice(r.Context(), actor, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, result)
}

// Summary handles GET /interview-analysis/summary/{patientID}?session_id=
func (h *AnalysisHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	summary, err := h.analysis.Summary(r.Context(), actor, chi.URLParam(r, "patientID"), r.URL.Query().Get("session_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, summary)
}

// PatientContext handles GET /interview-analysis/patient-context/{patientID}
func (h *AnalysisHandler) PatientContext(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pc, err := h.analysis.Context(r.Context(), actor, chi.URLParam(r, "patientID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, pc)
}

// uploadError maps body-size failures to a validation error.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.NewValidationError("File too large").WithCode("FILE_TOO_LARGE")
	}
	return pkgerrors.NewValidationError("Invalid multipart body: " + err.Error())
}
