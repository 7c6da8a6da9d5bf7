package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/service/auth"
	"github.com/mamadbah2/farmdiary/internal/service/diary"
	"github.com/mamadbah2/farmdiary/internal/service/reporting"
)

// DiaryHandler exposes the six farm collections.
type DiaryHandler struct {
	diary   *diary.Service
	reports *reporting.Service
	logger  *zap.Logger
}

// NewDiaryHandler constructs the collection HTTP adapter.
func NewDiaryHandler(diarySvc *diary.Service, reports *reporting.Service, logger *zap.Logger) *DiaryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiaryHandler{diary: diarySvc, reports: reports, logger: logger}
}

type cropView struct {
	models.CropRecord
	CurrentStatus string `json:"currentStatus"`
}

type saleView struct {
	models.SaleRecord
	CropName string `json:"cropName"`
}

func create[In, Out any](c *gin.Context, logger *zap.Logger, fn func(context.Context, *auth.Session, In) (Out, error)) {
	var in In
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, logger, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	record, err := fn(c.Request.Context(), sessionFrom(c), in)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func list[Out any](c *gin.Context, logger *zap.Logger, fn func(context.Context, *auth.Session) ([]Out, error)) {
	records, err := fn(c.Request.Context(), sessionFrom(c))
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func remove(c *gin.Context, logger *zap.Logger, fn func(context.Context, *auth.Session, int64) error) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	if err := fn(c.Request.Context(), sessionFrom(c), id); err != nil {
		respondError(c, logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, c.Param("id"))
	}
	return id, nil
}

// CreateActivity records a piece of farm work.
func (h *DiaryHandler) CreateActivity(c *gin.Context) {
	create(c, h.logger, h.diary.CreateActivity)
}

// ListActivities returns the activities, newest first.
func (h *DiaryHandler) ListActivities(c *gin.Context) {
	list(c, h.logger, h.diary.ListActivities)
}

// DeleteActivity removes one activity.
func (h *DiaryHandler) DeleteActivity(c *gin.Context) {
	remove(c, h.logger, h.diary.DeleteActivity)
}

// CreateCrop registers a planting.
func (h *DiaryHandler) CreateCrop(c *gin.Context) {
	create(c, h.logger, h.diary.CreateCrop)
}

// DeleteCrop removes one crop.
func (h *DiaryHandler) DeleteCrop(c *gin.Context) {
	remove(c, h.logger, h.diary.DeleteCrop)
}

// ListCrops returns the crops with their live status.
func (h *DiaryHandler) ListCrops(c *gin.Context) {
	crops, err := h.diary.ListCrops(c.Request.Context(), sessionFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	now := h.reports.Now()
	out := make([]cropView, 0, len(crops))
	for _, crop := range crops {
		out = append(out, cropView{CropRecord: crop, CurrentStatus: reporting.CropStatus(crop, now)})
	}
	c.JSON(http.StatusOK, out)
}

// CropStatus returns the live status of one crop.
func (h *DiaryHandler) CropStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	crops, err := h.diary.ListCrops(c.Request.Context(), sessionFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	for _, crop := range crops {
		if crop.ID == id {
			c.JSON(http.StatusOK, gin.H{"id": crop.ID, "status": reporting.CropStatus(crop, h.reports.Now())})
			return
		}
	}
	respondError(c, h.logger, fmt.Errorf("crop %d: %w", id, diary.ErrRecordNotFound))
}

// CreateWeather records a manual weather observation.
func (h *DiaryHandler) CreateWeather(c *gin.Context) {
	create(c, h.logger, h.diary.CreateWeather)
}

// ListWeather returns the weather observations, newest first.
func (h *DiaryHandler) ListWeather(c *gin.Context) {
	list(c, h.logger, h.diary.ListWeather)
}

// DeleteWeather removes one observation.
func (h *DiaryHandler) DeleteWeather(c *gin.Context) {
	remove(c, h.logger, h.diary.DeleteWeather)
}

// CreateExpense records an expense.
func (h *DiaryHandler) CreateExpense(c *gin.Context) {
	create(c, h.logger, h.diary.CreateExpense)
}

// ListExpenses returns the expenses, newest first.
func (h *DiaryHandler) ListExpenses(c *gin.Context) {
	list(c, h.logger, h.diary.ListExpenses)
}

// DeleteExpense removes one expense.
func (h *DiaryHandler) DeleteExpense(c *gin.Context) {
	remove(c, h.logger, h.diary.DeleteExpense)
}

// CreateSale records a sale and its total.
func (h *DiaryHandler) CreateSale(c *gin.Context) {
	create(c, h.logger, h.diary.CreateSale)
}

// DeleteSale removes one sale.
func (h *DiaryHandler) DeleteSale(c *gin.Context) {
	remove(c, h.logger, h.diary.DeleteSale)
}

// ListSales returns the sales with the name of the crop sold.
func (h *DiaryHandler) ListSales(c *gin.Context) {
	ctx := c.Request.Context()
	sess := sessionFrom(c)
	sales, err := h.diary.ListSales(ctx, sess)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	crops, err := h.diary.ListCrops(ctx, sess)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	out := make([]saleView, 0, len(sales))
	for _, sale := range sales {
		out = append(out, saleView{SaleRecord: sale, CropName: diary.SaleCropName(crops, sale)})
	}
	c.JSON(http.StatusOK, out)
}

// CreateSupport files a support request and notifies the desk.
func (h *DiaryHandler) CreateSupport(c *gin.Context) {
	create(c, h.logger, h.diary.CreateSupportRequest)
}

// ListSupport returns the support requests, newest first.
func (h *DiaryHandler) ListSupport(c *gin.Context) {
	list(c, h.logger, h.diary.ListSupportRequests)
}

// DeleteSupport removes one support request.
func (h *DiaryHandler) DeleteSupport(c *gin.Context) {
	remove(c, h.logger, h.diary.DeleteSupportRequest)
}

// ClearData deletes every collection of the signed-in user.
func (h *DiaryHandler) ClearData(c *gin.Context) {
	if err := h.diary.ClearData(c.Request.Context(), sessionFrom(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
