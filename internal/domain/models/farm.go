package models

import "time"

// Collection names double as the storage key prefix of each per-user blob.
const (
	CollectionActivities = "farmActivities"
	CollectionCrops      = "farmCrops"
	CollectionWeather    = "farmWeather"
	CollectionExpenses   = "farmExpenses"
	CollectionSales      = "farmSales"
	CollectionSupport    = "farmSupport"
)

// Collections lists every per-user collection in a stable order.
var Collections = []string{
	CollectionActivities,
	CollectionCrops,
	CollectionWeather,
	CollectionExpenses,
	CollectionSales,
	CollectionSupport,
}

// Derived crop status values.
const (
	CropStatusPlanted = "Planted"
	CropStatusGrowing = "Growing"
	CropStatusReady   = "Ready to Harvest"
)

// CropStatusOnCreate is written into CropRecord.Status at creation and never
// updated; readers derive the live status from the dates.
const CropStatusOnCreate = "planted"

// SupportStatusPending is the only status a support request ever carries.
const SupportStatusPending = "pending"

// UnknownCrop is displayed for sales whose crop no longer exists.
const UnknownCrop = "Unknown Crop"

// ActivityRecord captures one logged piece of farm work.
type ActivityRecord struct {
	ID          int64     `json:"id"`
	Date        Date      `json:"date"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Timestamp   time.Time `json:"timestamp"`
}

// CropRecord captures a planting and its expected and actual yield.
type CropRecord struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Variety         string    `json:"variety"`
	PlantingDate    Date      `json:"plantingDate"`
	ExpectedHarvest Date      `json:"expectedHarvest"`
	ExpectedYield   float64   `json:"expectedYield"`
	YieldUnit       string    `json:"yieldUnit"`
	Area            float64   `json:"area"`
	ActualYield     float64   `json:"actualYield"`
	Notes           string    `json:"notes"`
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
}

// DisplayName renders "Name (Variety)" or just the name.
func (c CropRecord) DisplayName() string {
	if c.Variety == "" {
		return c.Name
	}
	return c.Name + " (" + c.Variety + ")"
}

// WeatherRecord is a manually logged daily weather observation.
type WeatherRecord struct {
	ID          int64     `json:"id"`
	Date        Date      `json:"date"`
	Condition   string    `json:"condition"`
	Temperature *float64  `json:"temperature"`
	Rainfall    float64   `json:"rainfall"`
	Notes       string    `json:"notes"`
	Timestamp   time.Time `json:"timestamp"`
}

// ExpenseRecord captures operating expenses.
type ExpenseRecord struct {
	ID          int64     `json:"id"`
	Date        Date      `json:"date"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// SaleRecord captures a crop sale. TotalAmount is fixed at creation.
type SaleRecord struct {
	ID           int64     `json:"id"`
	CropID       string    `json:"cropId"`
	Date         Date      `json:"date"`
	Quantity     float64   `json:"quantity"`
	Unit         string    `json:"unit"`
	PricePerUnit float64   `json:"pricePerUnit"`
	TotalAmount  float64   `json:"totalAmount"`
	Buyer        string    `json:"buyer"`
	Notes        string    `json:"notes"`
	Timestamp    time.Time `json:"timestamp"`
}

// SupportRequest is a request for agricultural assistance.
type SupportRequest struct {
	ID            int64     `json:"id"`
	Type          string    `json:"type"`
	Urgency       string    `json:"urgency"`
	Subject       string    `json:"subject"`
	Description   string    `json:"description"`
	ContactMethod string    `json:"contactMethod"`
	Phone         string    `json:"phone"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// Identified is implemented by every collection record.
type Identified interface {
	RecordID() int64
}

func (r ActivityRecord) RecordID() int64 { return r.ID }
func (r CropRecord) RecordID() int64     { return r.ID }
func (r WeatherRecord) RecordID() int64  { return r.ID }
func (r ExpenseRecord) RecordID() int64  { return r.ID }
func (r SaleRecord) RecordID() int64     { return r.ID }
func (r SupportRequest) RecordID() int64 { return r.ID }
