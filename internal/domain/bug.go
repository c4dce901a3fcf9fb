package domain

import "time"

type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}

func (s Severity) Valid() bool {
	for _, v := range Severities() {
		if s == v {
			return true
		}
	}
	return false
}

type BugType string

const (
	BugTypeFunctional  BugType = "Functional"
	BugTypeSecurity    BugType = "Security"
	BugTypePerformance BugType = "Performance"
	BugTypeValidation  BugType = "Validation"
	BugTypeUIUX        BugType = "UI/UX"
)

func BugTypes() []BugType {
	return []BugType{BugTypeFunctional, BugTypeSecurity, BugTypePerformance, BugTypeValidation, BugTypeUIUX}
}

func (t BugType) Valid() bool {
	for _, v := range BugTypes() {
		if t == v {
			return true
		}
	}
	return false
}

type BugStatus string

const (
	StatusOpen       BugStatus = "Open"
	StatusInProgress BugStatus = "In Progress"
	StatusResolved   BugStatus = "Resolved"
	StatusClosed     BugStatus = "Closed"
)

func Statuses() []BugStatus {
	return []BugStatus{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}
}

func (s BugStatus) Valid() bool {
	for _, v := range Statuses() {
		if s == v {
			return true
		}
	}
	return false
}

type BugReport struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Severity          Severity  `json:"severity"`
	BugType           BugType   `json:"bug_type"`
	ReproductionSteps []string  `json:"reproduction_steps"`
	ExpectedBehavior  string    `json:"expected_behavior"`
	ActualBehavior    string    `json:"actual_behavior"`
	Environment       *string   `json:"environment"`
	Status            BugStatus `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	CreatedBy         string    `json:"created_by"`
}

type BugInput struct {
	Title             string
	Description       string
	Severity          Severity
	BugType           BugType
	ReproductionSteps []string
	ExpectedBehavior  string
	ActualBehavior    string
	Environment       *string
}

// BugFilter values match case-insensitively; empty means no filter.
type BugFilter struct {
	Status   string
	Severity string
}

// BugStats always carries every enum bucket, zero or not.
type BugStats struct {
	Total      int               `json:"total_bugs"`
	BySeverity map[Severity]int  `json:"by_severity"`
	ByStatus   map[BugStatus]int `json:"by_status"`
}

type BugRepository interface {
	List(f BugFilter, skip, limit int) []BugReport
	Get(id int) (BugReport, error)
	Create(in BugInput, createdBy string) BugReport
	UpdateStatus(id int, status BugStatus) (BugReport, error)
	Delete(id int) error
	BySeverity(s Severity) ([]BugReport, error)
	Statistics() BugStats
}

func (b BugReport) Clone() BugReport {
	b.ReproductionSteps = append([]string(nil), b.ReproductionSteps...)
	if b.Environment != nil {
		e := *b.Environment
		b.Environment = &e
	}
	return b
}
