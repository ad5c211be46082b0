package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/golang/geo/s2"

	"trash-report-service/database"
	"trash-report-service/models"
	"trash-report-service/openai"
	"trash-report-service/service"
)

type Handler struct {
	submit  *service.SubmitService
	reports *database.ReportService
	rewards *database.RewardService
}

func NewHandler(submit *service.SubmitService, reports *database.ReportService, rewards *database.RewardService) *Handler {
	return &Handler{
		submit:  submit,
		reports: reports,
		rewards: rewards,
	}
}

// HealthCheck returns a simple health status
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "trash-report-service",
	})
}

// SubmitReport accepts a multipart form with latitude, longitude and an image
// file and runs the submission pipeline for the authenticated user.
func (h *Handler) SubmitReport(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("user_email")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authenticated user"})
		return
	}

	latitude, err := strconv.ParseFloat(c.PostForm("latitude"), 64)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("Parsing latitude: %v", err))
		return
	}
	longitude, err := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("Parsing longitude: %v", err))
		return
	}
	if !s2.LatLngFromDegrees(latitude, longitude).IsValid() {
		c.String(http.StatusBadRequest, fmt.Sprintf("Invalid coordinates %f,%f", latitude, longitude))
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("Missing image file: %v", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("Opening image file: %v", err))
		return
	}
	defer file.Close()
	image, err := io.ReadAll(file)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("Reading image file: %v", err))
		return
	}

	result, err := h.submit.Submit(c.Request.Context(), userID, email, image, fileHeader.Filename, latitude, longitude)
	if err != nil {
		log.Errorf("Submission from user %s failed: %v", userID, err)
		c.String(submitStatus(err), fmt.Sprint(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// submitStatus maps pipeline error kinds to HTTP statuses so clients can
// tell "try again" from "unusable input".
func submitStatus(err error) int {
	switch {
	case errors.Is(err, openai.ErrUnavailable), errors.Is(err, openai.ErrTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrAssessmentMissing),
		errors.Is(err, service.ErrAssessmentMalformed),
		errors.Is(err, service.ErrAssessmentInvalid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// MarkCleaned flips a report's cleaned flag.
func (h *Handler) MarkCleaned(c *gin.Context) {
	seq, err := strconv.ParseInt(c.Param("seq"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("Parsing seq: %v", err))
		return
	}

	if err := h.reports.MarkCleaned(c.Request.Context(), seq); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.String(http.StatusNotFound, "Report not found")
			return
		}
		log.Errorf("Error marking report %d cleaned: %v", seq, err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	c.JSON(http.StatusOK, true)
}

// ListReports returns all reports, optionally filtered by cleaned status.
func (h *Handler) ListReports(c *gin.Context) {
	var cleaned *bool
	if cleanedStr, has := c.GetQuery("cleaned"); has {
		v, err := strconv.ParseBool(cleanedStr)
		if err != nil {
			c.String(http.StatusBadRequest, fmt.Sprintf("Parsing cleaned param: %v", err))
			return
		}
		cleaned = &v
	}

	reports, err := h.reports.ListReports(c.Request.Context(), cleaned)
	if err != nil {
		log.Errorf("Error listing reports: %v", err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	c.IndentedJSON(http.StatusOK, &models.ReportsResponse{Reports: reports})
}

// GetReport returns a single report by seq.
func (h *Handler) GetReport(c *gin.Context) {
	seq, err := strconv.ParseInt(c.Param("seq"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("Parsing seq: %v", err))
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), seq)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.String(http.StatusNotFound, "Report not found")
			return
		}
		log.Errorf("Error getting report %d: %v", seq, err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	c.IndentedJSON(http.StatusOK, report)
}

// ListRewards returns the ledger ranked by points descending.
func (h *Handler) ListRewards(c *gin.Context) {
	entries, err := h.rewards.ListRanked(c.Request.Context())
	if err != nil {
		log.Errorf("Error listing rewards: %v", err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	c.IndentedJSON(http.StatusOK, &models.RewardsResponse{Rewards: entries})
}

// ListLocations returns every distinct coordinate pair across reports.
func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.reports.ListDistinctLocations(c.Request.Context())
	if err != nil {
		log.Errorf("Error listing locations: %v", err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	c.IndentedJSON(http.StatusOK, &models.LocationsResponse{Locations: locations})
}
