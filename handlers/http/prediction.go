package httpHandler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"lung-server/usecases"

	"github.com/gin-gonic/gin"
)

type PredictionHandler struct {
	useCase   *usecases.PredictionUseCase
	maxUpload int64
}

func NewPredictionHandler(useCase *usecases.PredictionUseCase, maxUpload int64) *PredictionHandler {
	return &PredictionHandler{useCase: useCase, maxUpload: maxUpload}
}

// LungPredict handles POST /lungpredict
func (h *PredictionHandler) LungPredict(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	if err := c.Request.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form", "details": err.Error()})
		return
	}

	req := usecases.PredictionRequest{
		UserID:         c.PostForm("user_id"),
		PatientName:    c.PostForm("patient_name"),
		PatientAge:     c.PostForm("patient_age"),
		PatientGender:  c.PostForm("patient_gender"),
		PatientAddress: c.PostForm("patient_address"),
	}
	if !Authorize(c, req.UserID) {
		return
	}

	// a missing file is reported by the use case after the user check
	if file, header, err := c.Request.FormFile("patient_ct_image"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		req.Image = data
		req.Filename = header.Filename
		log.Printf("Received file: %s, size: %d bytes", header.Filename, header.Size)
	}

	result, err := h.useCase.Predict(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, http.StatusBadRequest)
		return
	}

	resp := gin.H{
		"message":       "Prediction completed and data saved.",
		"prediction":    result.Label,
		"probabilities": result.Probabilities,
		"record_id":     result.RecordID,
		"time":          result.Time,
	}
	if result.ImagePath != nil {
		resp["image_path"] = *result.ImagePath
	}
	c.JSON(http.StatusOK, resp)
}
