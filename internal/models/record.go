package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Stage partitions records into the in-progress and history collections
type Stage string

const (
	StagePending Stage = "pending"
	StageHistory Stage = "history"
)

// Element is the metal an XRF analysis reports purity for
type Element string

const (
	ElementGold   Element = "GOLD"
	ElementSilver Element = "SILVER"
)

var (
	// ErrPartialAnalysis means exactly one of percentage/element is set
	ErrPartialAnalysis = errors.New("percentage and element must be set together")
	// ErrUnknownElement is returned by ParseElement
	ErrUnknownElement = errors.New("unknown element")
)

// ParseElement accepts "gold"/"GOLD"/"Silver" etc.
func ParseElement(s string) (Element, error) {
	switch Element(strings.ToUpper(strings.TrimSpace(s))) {
	case ElementGold:
		return ElementGold, nil
	case ElementSilver:
		return ElementSilver, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownElement, s)
}

// Kind tells a token (no analysis yet) from a report
type Kind int

const (
	KindPending Kind = iota
	KindCompleted
)

func (k Kind) String() string {
	if k == KindCompleted {
		return "report"
	}
	return "token"
}

// Record is a submitted item. It is a token until analysis is attached and a
// report afterwards. Percentage and Element are empty strings when absent.
type Record struct {
	ID                string  `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	TokenNumber       string  `gorm:"column:token_number;type:varchar(16);not null;index" json:"tokenNumber"`
	CustomerName      string  `gorm:"column:customer_name;not null" json:"customerName"`
	ItemDescription   string  `gorm:"column:item_description;not null" json:"itemDescription"`
	ItemWeight        string  `gorm:"column:item_weight;type:varchar(32);not null" json:"itemWeight"`
	PhoneNumber       string  `gorm:"column:phone_number" json:"phoneNumber,omitempty"`
	Image             []byte  `gorm:"column:image" json:"image,omitempty"`
	Percentage        string  `gorm:"column:percentage;type:varchar(32)" json:"percentage,omitempty"`
	Element           Element `gorm:"column:element;type:varchar(16)" json:"element,omitempty"`
	PercentageInWords string  `gorm:"column:percentage_in_words" json:"percentageInWords,omitempty"`
	Remarks           string  `gorm:"column:remarks" json:"remarks,omitempty"`
	Date              string  `gorm:"column:date;type:varchar(10)" json:"date"`
	Time              string  `gorm:"column:time;type:varchar(8)" json:"time"`
	Timestamp         int64   `gorm:"column:timestamp;not null;index" json:"timestamp"`
	Stage             Stage   `gorm:"column:stage;type:varchar(16);not null;index" json:"stage"`

	CreatedAt time.Time `gorm:"column:created_at" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"-"`
}

// TableName specifies the table name for Record
func (Record) TableName() string {
	return "records"
}

// Analysis is the XRF result that turns a token into a report
type Analysis struct {
	Percentage        string
	Element           Element
	PercentageInWords string
}

// Completed is a record known to carry an analysis
type Completed struct {
	Record
	Analysis Analysis
}

// Kind classifies the record. A record violating the both-or-neither rule
// reports KindPending; CheckAnalysis reports the violation.
func (r Record) Kind() Kind {
	if r.Percentage != "" && r.Element != "" {
		return KindCompleted
	}
	return KindPending
}

// AsCompleted returns the report view of r when analysis is present.
func (r Record) AsCompleted() (Completed, bool) {
	if r.Kind() != KindCompleted {
		return Completed{}, false
	}
	return Completed{
		Record: r,
		Analysis: Analysis{
			Percentage:        r.Percentage,
			Element:           r.Element,
			PercentageInWords: r.PercentageInWords,
		},
	}, true
}

// WithAnalysis returns a copy of r promoted to a report.
func (r Record) WithAnalysis(a Analysis, remarks string) Record {
	r.Percentage = a.Percentage
	r.Element = a.Element
	r.PercentageInWords = a.PercentageInWords
	r.Remarks = remarks
	return r
}

// WithoutImage returns a copy of r with the image payload dropped.
func (r Record) WithoutImage() Record {
	r.Image = nil
	return r
}

// CheckAnalysis enforces that percentage and element are set together.
func (r Record) CheckAnalysis() error {
	if (r.Percentage == "") != (r.Element == "") {
		return ErrPartialAnalysis
	}
	return nil
}

// BeforeSave keeps half-analysed records out of the store on every write path.
func (r *Record) BeforeSave(tx *gorm.DB) error {
	return r.CheckAnalysis()
}

// HistoryEntry is the denormalized search index over committed reports
type HistoryEntry struct {
	RecordID        string `gorm:"column:record_id;primaryKey;type:varchar(36)" json:"recordId"`
	TokenNumber     string `gorm:"column:token_number;type:varchar(16);index" json:"tokenNumber"`
	CustomerName    string `gorm:"column:customer_name" json:"customerName"`
	ItemDescription string `gorm:"column:item_description" json:"itemDescription"`
	PhoneNumber     string `gorm:"column:phone_number" json:"phoneNumber,omitempty"`
	Date            string `gorm:"column:date" json:"date"`
	Time            string `gorm:"column:time" json:"time"`
	Timestamp       int64  `gorm:"column:timestamp;index" json:"timestamp"`
	// SearchText is the lower-cased token, customer and description, folded
	// in Go so non-ASCII names match regardless of case
	SearchText string `gorm:"column:search_text" json:"-"`
}

// TableName specifies the table name for HistoryEntry
func (HistoryEntry) TableName() string {
	return "history_index"
}

// NewHistoryEntry projects a record into its index row.
func NewHistoryEntry(r Record) HistoryEntry {
	return HistoryEntry{
		RecordID:        r.ID,
		TokenNumber:     r.TokenNumber,
		CustomerName:    r.CustomerName,
		ItemDescription: r.ItemDescription,
		PhoneNumber:     r.PhoneNumber,
		Date:            r.Date,
		Time:            r.Time,
		Timestamp:       r.Timestamp,
		SearchText:      SearchText(r.TokenNumber, r.CustomerName, r.ItemDescription),
	}
}

// SearchText folds the searchable fields into one lower-case string.
func SearchText(fields ...string) string {
	return strings.ToLower(strings.Join(fields, "\n"))
}
