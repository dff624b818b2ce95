package httpHandler

import (
	"net/http"

	"lung-server/usecases"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	useCase *usecases.PatientUseCase
}

func NewPatientHandler(useCase *usecases.PatientUseCase) *PatientHandler {
	return &PatientHandler{useCase: useCase}
}

// GetAllData handles GET /getAllData/:user_id
func (h *PatientHandler) GetAllData(c *gin.Context) {
	userID := c.Param("user_id")
	if !Authorize(c, userID) {
		return
	}

	patients, err := h.useCase.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, http.StatusNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"patients": patients,
	})
}
