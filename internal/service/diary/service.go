package diary

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/observability"
	"github.com/mamadbah2/farmdiary/internal/repository/storage"
	"github.com/mamadbah2/farmdiary/internal/service/auth"
	"github.com/mamadbah2/farmdiary/internal/service/notify"
)

var (
	// ErrValidation wraps every rejected form.
	ErrValidation = errors.New("invalid record")
	// ErrRecordNotFound indicates the id is not in the collection.
	ErrRecordNotFound = errors.New("record not found")
)

// Service owns the six record collections of the farm diary.
type Service struct {
	store    storage.Store
	clock    clockwork.Clock
	notifier notify.Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger

	// mu serialises read-modify-write cycles on collections.
	mu sync.Mutex
}

// NewService wires a diary over the given store.
func NewService(store storage.Store, clock clockwork.Clock, notifier notify.Notifier, metrics *observability.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if metrics == nil {
		metrics = observability.Nop()
	}
	return &Service{store: store, clock: clock, notifier: notifier, metrics: metrics, logger: logger}
}

// ActivityInput is the activity form.
type ActivityInput struct {
	Date        models.Date `json:"date"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Duration    float64     `json:"duration"`
}

// CreateActivity logs a piece of farm work.
func (s *Service) CreateActivity(ctx context.Context, sess *auth.Session, in ActivityInput) (models.ActivityRecord, error) {
	in.Type = strings.TrimSpace(in.Type)
	switch {
	case in.Date.IsZero() || in.Type == "":
		return models.ActivityRecord{}, invalid("date and type are required")
	case in.Duration < 0:
		return models.ActivityRecord{}, invalid("duration must not be negative")
	}

	record, err := prependRecord(ctx, s, sess, models.CollectionActivities, func(id int64, ts time.Time) models.ActivityRecord {
		return models.ActivityRecord{
			ID:          id,
			Date:        in.Date,
			Type:        in.Type,
			Description: strings.TrimSpace(in.Description),
			Duration:    in.Duration,
			Timestamp:   ts,
		}
	})
	if err != nil {
		return models.ActivityRecord{}, err
	}
	s.logger.Debug("activity recorded", zap.String("user", sess.Email()), zap.Int64("id", record.ID))
	return record, nil
}

// ListActivities returns the activities, newest first.
func (s *Service) ListActivities(ctx context.Context, sess *auth.Session) ([]models.ActivityRecord, error) {
	return listRecords[models.ActivityRecord](ctx, s, sess, models.CollectionActivities)
}

// DeleteActivity removes one activity.
func (s *Service) DeleteActivity(ctx context.Context, sess *auth.Session, id int64) error {
	return removeRecord[models.ActivityRecord](ctx, s, sess, models.CollectionActivities, id)
}

// CropInput is the crop form.
type CropInput struct {
	Name            string      `json:"name"`
	Variety         string      `json:"variety"`
	PlantingDate    models.Date `json:"plantingDate"`
	ExpectedHarvest models.Date `json:"expectedHarvest"`
	ExpectedYield   float64     `json:"expectedYield"`
	YieldUnit       string      `json:"yieldUnit"`
	Area            float64     `json:"area"`
	ActualYield     float64     `json:"actualYield"`
	Notes           string      `json:"notes"`
}

// CreateCrop records a planting.
func (s *Service) CreateCrop(ctx context.Context, sess *auth.Session, in CropInput) (models.CropRecord, error) {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "" || in.PlantingDate.IsZero():
		return models.CropRecord{}, invalid("name and planting date are required")
	case in.ExpectedYield < 0 || in.ActualYield < 0 || in.Area < 0:
		return models.CropRecord{}, invalid("yield and area must not be negative")
	case !in.ExpectedHarvest.IsZero() && in.ExpectedHarvest.Before(in.PlantingDate.Time):
		return models.CropRecord{}, invalid("expected harvest must not precede planting")
	}

	return prependRecord(ctx, s, sess, models.CollectionCrops, func(id int64, ts time.Time) models.CropRecord {
		return models.CropRecord{
			ID:              id,
			Name:            in.Name,
			Variety:         strings.TrimSpace(in.Variety),
			PlantingDate:    in.PlantingDate,
			ExpectedHarvest: in.ExpectedHarvest,
			ExpectedYield:   in.ExpectedYield,
			YieldUnit:       strings.TrimSpace(in.YieldUnit),
			Area:            in.Area,
			ActualYield:     in.ActualYield,
			Notes:           strings.TrimSpace(in.Notes),
			Status:          models.CropStatusOnCreate,
			Timestamp:       ts,
		}
	})
}

// ListCrops returns the crops, newest first.
func (s *Service) ListCrops(ctx context.Context, sess *auth.Session) ([]models.CropRecord, error) {
	return listRecords[models.CropRecord](ctx, s, sess, models.CollectionCrops)
}

// DeleteCrop removes one crop. Sales referencing it are left alone.
func (s *Service) DeleteCrop(ctx context.Context, sess *auth.Session, id int64) error {
	return removeRecord[models.CropRecord](ctx, s, sess, models.CollectionCrops, id)
}

// WeatherInput is the weather observation form.
type WeatherInput struct {
	Date        models.Date `json:"date"`
	Condition   string      `json:"condition"`
	Temperature *float64    `json:"temperature"`
	Rainfall    float64     `json:"rainfall"`
	Notes       string      `json:"notes"`
}

// CreateWeather logs a weather observation.
func (s *Service) CreateWeather(ctx context.Context, sess *auth.Session, in WeatherInput) (models.WeatherRecord, error) {
	in.Condition = strings.TrimSpace(in.Condition)
	switch {
	case in.Date.IsZero() || in.Condition == "":
		return models.WeatherRecord{}, invalid("date and condition are required")
	case in.Rainfall < 0:
		return models.WeatherRecord{}, invalid("rainfall must not be negative")
	}

	return prependRecord(ctx, s, sess, models.CollectionWeather, func(id int64, ts time.Time) models.WeatherRecord {
		return models.WeatherRecord{
			ID:          id,
			Date:        in.Date,
			Condition:   strings.ToLower(in.Condition),
			Temperature: in.Temperature,
			Rainfall:    in.Rainfall,
			Notes:       strings.TrimSpace(in.Notes),
			Timestamp:   ts,
		}
	})
}

// ListWeather returns the weather observations, newest first.
func (s *Service) ListWeather(ctx context.Context, sess *auth.Session) ([]models.WeatherRecord, error) {
	return listRecords[models.WeatherRecord](ctx, s, sess, models.CollectionWeather)
}

// DeleteWeather removes one observation.
func (s *Service) DeleteWeather(ctx context.Context, sess *auth.Session, id int64) error {
	return removeRecord[models.WeatherRecord](ctx, s, sess, models.CollectionWeather, id)
}

// ExpenseInput is the expense form.
type ExpenseInput struct {
	Date        models.Date `json:"date"`
	Category    string      `json:"category"`
	Amount      float64     `json:"amount"`
	Description string      `json:"description"`
}

// CreateExpense records an operating cost.
func (s *Service) CreateExpense(ctx context.Context, sess *auth.Session, in ExpenseInput) (models.ExpenseRecord, error) {
	in.Category = strings.TrimSpace(in.Category)
	switch {
	case in.Date.IsZero() || in.Category == "":
		return models.ExpenseRecord{}, invalid("date and category are required")
	case in.Amount <= 0:
		return models.ExpenseRecord{}, invalid("amount must be greater than zero")
	}

	return prependRecord(ctx, s, sess, models.CollectionExpenses, func(id int64, ts time.Time) models.ExpenseRecord {
		return models.ExpenseRecord{
			ID:          id,
			Date:        in.Date,
			Category:    in.Category,
			Amount:      in.Amount,
			Description: strings.TrimSpace(in.Description),
			Timestamp:   ts,
		}
	})
}

// ListExpenses returns the expenses, newest first.
func (s *Service) ListExpenses(ctx context.Context, sess *auth.Session) ([]models.ExpenseRecord, error) {
	return listRecords[models.ExpenseRecord](ctx, s, sess, models.CollectionExpenses)
}

// DeleteExpense removes one expense.
func (s *Service) DeleteExpense(ctx context.Context, sess *auth.Session, id int64) error {
	return removeRecord[models.ExpenseRecord](ctx, s, sess, models.CollectionExpenses, id)
}

// SaleInput is the sale form.
type SaleInput struct {
	CropID       string      `json:"cropId"`
	Date         models.Date `json:"date"`
	Quantity     float64     `json:"quantity"`
	Unit         string      `json:"unit"`
	PricePerUnit float64     `json:"pricePerUnit"`
	Buyer        string      `json:"buyer"`
	Notes        string      `json:"notes"`
}

// CreateSale records a sale; the total is computed once here.
func (s *Service) CreateSale(ctx context.Context, sess *auth.Session, in SaleInput) (models.SaleRecord, error) {
	in.CropID = strings.TrimSpace(in.CropID)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.CropID == "" || in.Quantity <= 0 || in.Unit == "" || in.PricePerUnit <= 0 || in.Date.IsZero() {
		return models.SaleRecord{}, invalid("please fill in all required fields")
	}

	return prependRecord(ctx, s, sess, models.CollectionSales, func(id int64, ts time.Time) models.SaleRecord {
		return models.SaleRecord{
			ID:           id,
			CropID:       in.CropID,
			Date:         in.Date,
			Quantity:     in.Quantity,
			Unit:         in.Unit,
			PricePerUnit: in.PricePerUnit,
			TotalAmount:  in.Quantity * in.PricePerUnit,
			Buyer:        strings.TrimSpace(in.Buyer),
			Notes:        strings.TrimSpace(in.Notes),
			Timestamp:    ts,
		}
	})
}

// ListSales returns the sales, newest first.
func (s *Service) ListSales(ctx context.Context, sess *auth.Session) ([]models.SaleRecord, error) {
	return listRecords[models.SaleRecord](ctx, s, sess, models.CollectionSales)
}

// DeleteSale removes one sale.
func (s *Service) DeleteSale(ctx context.Context, sess *auth.Session, id int64) error {
	return removeRecord[models.SaleRecord](ctx, s, sess, models.CollectionSales, id)
}

// SupportInput is the support request form.
type SupportInput struct {
	Type          string `json:"type"`
	Urgency       string `json:"urgency"`
	Subject       string `json:"subject"`
	Description   string `json:"description"`
	ContactMethod string `json:"contactMethod"`
	Phone         string `json:"phone"`
}

// CreateSupportRequest files a pending request and notifies the support desk.
// Notification failures are logged, not returned.
func (s *Service) CreateSupportRequest(ctx context.Context, sess *auth.Session, in SupportInput) (models.SupportRequest, error) {
	in.Type = strings.TrimSpace(in.Type)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Description = strings.TrimSpace(in.Description)
	if in.Type == "" || in.Subject == "" || in.Description == "" {
		return models.SupportRequest{}, invalid("type, subject and description are required")
	}

	record, err := prependRecord(ctx, s, sess, models.CollectionSupport, func(id int64, ts time.Time) models.SupportRequest {
		return models.SupportRequest{
			ID:            id,
			Type:          in.Type,
			Urgency:       strings.TrimSpace(in.Urgency),
			Subject:       in.Subject,
			Description:   in.Description,
			ContactMethod: strings.TrimSpace(in.ContactMethod),
			Phone:         strings.TrimSpace(in.Phone),
			Status:        models.SupportStatusPending,
			Timestamp:     ts,
		}
	})
	if err != nil {
		return models.SupportRequest{}, err
	}

	if err := s.notifier.Notify(ctx, supportMessage(sess, record)); err != nil {
		s.logger.Warn("support request notification failed", zap.Int64("id", record.ID), zap.Error(err))
	}
	return record, nil
}

// ListSupportRequests returns the support requests, newest first.
func (s *Service) ListSupportRequests(ctx context.Context, sess *auth.Session) ([]models.SupportRequest, error) {
	return listRecords[models.SupportRequest](ctx, s, sess, models.CollectionSupport)
}

// DeleteSupportRequest removes one support request.
func (s *Service) DeleteSupportRequest(ctx context.Context, sess *auth.Session, id int64) error {
	return removeRecord[models.SupportRequest](ctx, s, sess, models.CollectionSupport, id)
}

// Snapshot loads every collection of the user.
func (s *Service) Snapshot(ctx context.Context, sess *auth.Session) (models.FarmData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		data models.FarmData
		err  error
	)
	if data.Activities, err = loadCollection[models.ActivityRecord](ctx, s.store, sess, models.CollectionActivities); err != nil {
		return data, err
	}
	if data.Crops, err = loadCollection[models.CropRecord](ctx, s.store, sess, models.CollectionCrops); err != nil {
		return data, err
	}
	if data.Weather, err = loadCollection[models.WeatherRecord](ctx, s.store, sess, models.CollectionWeather); err != nil {
		return data, err
	}
	if data.Expenses, err = loadCollection[models.ExpenseRecord](ctx, s.store, sess, models.CollectionExpenses); err != nil {
		return data, err
	}
	if data.Sales, err = loadCollection[models.SaleRecord](ctx, s.store, sess, models.CollectionSales); err != nil {
		return data, err
	}
	if data.Support, err = loadCollection[models.SupportRequest](ctx, s.store, sess, models.CollectionSupport); err != nil {
		return data, err
	}
	return data, nil
}

// ClearData deletes every collection of the user.
func (s *Service) ClearData(ctx context.Context, sess *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range models.Collections {
		if err := s.store.Delete(ctx, sess.Key(name)); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}
	s.logger.Info("user data cleared", zap.String("user", sess.Email()))
	return nil
}

// SaleCropName resolves the crop a sale refers to, falling back to UnknownCrop
// when the crop was deleted.
func SaleCropName(crops []models.CropRecord, sale models.SaleRecord) string {
	return CropName(crops, sale.CropID)
}

// CropName looks a crop up by its string id.
func CropName(crops []models.CropRecord, cropID string) string {
	id, err := strconv.ParseInt(strings.TrimSpace(cropID), 10, 64)
	if err != nil {
		return models.UnknownCrop
	}
	for _, c := range crops {
		if c.ID == id {
			return c.Name
		}
	}
	return models.UnknownCrop
}

func supportMessage(sess *auth.Session, r models.SupportRequest) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>, %s\n", sess.User.Name, sess.Email(), sess.User.Location)
	fmt.Fprintf(&b, "Type: %s\nUrgency: %s\n", r.Type, r.Urgency)
	fmt.Fprintf(&b, "Contact: %s %s\n\n", r.ContactMethod, r.Phone)
	b.WriteString(r.Description)

	return notify.Message{
		Subject: fmt.Sprintf("[Support #%d] %s", r.ID, r.Subject),
		Body:    b.String(),
	}
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}
