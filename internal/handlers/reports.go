package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/KRaymonne/pro/internal/apperr"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler struct {
	log     *zap.Logger
	reports *services.ReportService
	exports *services.ExportService
}

func NewReportHandler(log *zap.Logger, reports *services.ReportService, exports *services.ExportService) *ReportHandler {
	return &ReportHandler{log: log, reports: reports, exports: exports}
}

// periodSpec reads the reporting window from query parameters: a named
// periode token, or explicit debut/fin bounds which win over the token.
func periodSpec(c *gin.Context) (services.PeriodSpec, error) {
	spec := services.PeriodSpec{Token: c.Query("periode")}

	start, err := parseDate(c.Query("debut"))
	if err != nil {
		return spec, apperr.Validation("date de début invalide")
	}
	end, err := parseDate(c.Query("fin"))
	if err != nil {
		return spec, apperr.Validation("date de fin invalide")
	}
	spec.Start = start
	spec.End = end
	return spec, nil
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparseable date %q", raw)
}

// Individual serves one student's progress report. Students get their own;
// enseignant and admin accounts may ask for any student via eleveId.
func (h *ReportHandler) Individual(c *gin.Context) {
	user := currentUser(c)

	targetID := user.ID
	if raw := c.Query("eleveId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			respondError(c, h.log, apperr.Validation("eleveId invalide"))
			return
		}
		if uint(id) != user.ID && user.Role != models.RoleTeacher && user.Role != models.RoleAdmin {
			respondError(c, h.log, apperr.Forbidden("accès réservé aux enseignants"))
			return
		}
		targetID = uint(id)
	}

	spec, err := periodSpec(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	report, err := h.reports.Individual(c.Request.Context(), targetID, spec)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Classroom serves the class-level report. Both filters only narrow the
// roster: enseignant accounts fall back to their own class and institution,
// and a filter left empty matches every student.
func (h *ReportHandler) Classroom(c *gin.Context) {
	user := currentUser(c)
	if user.Role != models.RoleTeacher && user.Role != models.RoleAdmin {
		respondError(c, h.log, apperr.Forbidden("accès réservé aux enseignants"))
		return
	}

	class := c.Query("classe")
	institution := c.Query("etablissement")
	if class == "" {
		class = user.Class
	}
	if institution == "" {
		institution = user.Institution
	}

	spec, err := periodSpec(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	report, err := h.reports.Classroom(c.Request.Context(), class, institution, spec)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Export streams the raw takeaway dataset as a download.
func (h *ReportHandler) Export(c *gin.Context) {
	user := currentUser(c)

	kind := c.Query("type")
	encoding := c.Query("format")

	payload, filename, contentType, err := h.exports.Export(c.Request.Context(), user.ID, kind, encoding)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
