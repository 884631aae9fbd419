package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/healingsoulutions/intake-api/internal/usecase"
)

type CardHandler struct {
	VerifyUC *usecase.VerifyCardUseCase
}

func NewCardHandler(uc *usecase.VerifyCardUseCase) *CardHandler {
	return &CardHandler{VerifyUC: uc}
}

// HandleSetup (GET /api/charge-verification?email=&name=)
func (h *CardHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.VerifyUC.Setup(r.Context(), usecase.SetupCardInput{
		Email: q.Get("email"),
		Name:  q.Get("name"),
	})
	if err != nil {
		writeError(w, statusFor(err), messageFor(err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleConfirm (POST /api/charge-verification)
func (h *CardHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var input usecase.ConfirmCardInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	out, err := h.VerifyUC.Confirm(r.Context(), input)
	if err != nil {
		writeError(w, statusFor(err), messageFor(err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
