package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jsobotka/tutorbase-api/internal/models"
	"github.com/jsobotka/tutorbase-api/internal/scheduling"
	"gorm.io/gorm"
)

// ListAcademicYears returns all academic years, newest first.
func ListAcademicYears(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var years []models.AcademicYear
		if err := db.Order("start_date desc").Find(&years).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to fetch academic years",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    years,
		})
	}
}

// GetAcademicYear returns one academic year with its semesters and breaks.
func GetAcademicYear(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		yearID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "academic year")
			return
		}

		var year models.AcademicYear
		err = db.Preload("Semesters", func(db *gorm.DB) *gorm.DB {
			return db.Order("semester_number asc")
		}).Preload("TeachingBreaks", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_date asc")
		}).First(&year, "id = ?", yearID).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "NOT_FOUND",
						"message": "Academic year not found",
					},
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to fetch academic year",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    year,
		})
	}
}

// GetNonTeachingDates returns the non-teaching dates of a year within
// [from, to], as yyyy-MM-dd strings.
func GetNonTeachingDates(calendar *scheduling.Calendar) gin.HandlerFunc {
	return func(c *gin.Context) {
		yearID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondInvalidID(c, "academic year")
			return
		}

		from, err := scheduling.ParseDate("from", c.Query("from"))
		if err != nil {
			respondEngineError(c, err)
			return
		}
		to, err := scheduling.ParseDate("to", c.Query("to"))
		if err != nil {
			respondEngineError(c, err)
			return
		}

		set, err := calendar.NonTeachingDates(c.Request.Context(), yearID, from, to)
		if err != nil {
			respondEngineError(c, err)
			return
		}

		dates := make([]string, 0, len(set))
		for d := range set {
			dates = append(dates, d)
		}
		sort.Strings(dates)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    dates,
		})
	}
}
