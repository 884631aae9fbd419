package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/healingsoulutions/intake-api/internal/entity"
	"github.com/healingsoulutions/intake-api/internal/usecase"
	"go.uber.org/zap"
)

// Signature images ride inside the JSON body, so the limit is generous.
const maxIntakeBody = 10 << 20

const defaultRecentLimit = 10

type IntakeHandler struct {
	SubmitUC *usecase.SubmitIntakeUseCase
	History  usecase.OutcomeRecorder
	log      *zap.Logger
}

func NewIntakeHandler(uc *usecase.SubmitIntakeUseCase, history usecase.OutcomeRecorder, log *zap.Logger) *IntakeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntakeHandler{SubmitUC: uc, History: history, log: log.Named("intake_handler")}
}

// Handle (POST /api/submit-intake)
func (h *IntakeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxIntakeBody)

	var sub entity.IntakeSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Submission is too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	out, err := h.SubmitUC.Execute(r.Context(), sub)
	if err != nil {
		resp := errorResponse{Error: messageFor(err)}

		var te *usecase.TechnicalError
		if errors.As(err, &te) && te.Code == usecase.CodeClientSaveFailed {
			resp.Debug = te.Detail
		}
		if statusFor(err) >= http.StatusInternalServerError {
			h.log.Error("intake submission failed", zap.Error(err))
		}

		writeJSON(w, statusFor(err), resp)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

type debugResponse struct {
	Status     string                 `json:"status"`
	LastResult *entity.OutcomeRecord  `json:"lastResult"`
	Recent     []entity.OutcomeRecord `json:"recent"`
}

// HandleDebug (GET /api/submit-intake) shows recent outcomes to operators.
func (h *IntakeHandler) HandleDebug(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	resp := debugResponse{Status: "ok", Recent: []entity.OutcomeRecord{}}
	if h.History != nil {
		resp.LastResult = h.History.Last()
		resp.Recent = h.History.Recent(limit)
	}
	writeJSON(w, http.StatusOK, resp)
}
