package internal

import (
	"time"

	"github.com/shopspring/decimal"
)

type Size string

const (
	SizeSmall      Size = "Small"
	SizeLarge      Size = "Large"
	SizeExtraLarge Size = "Extra Large"
)

type FrameType string

const (
	FrameFramed   FrameType = "Framed"
	FrameTubeOnly FrameType = "Tube only"
	FrameMounted  FrameType = "Mounted"
)

type StatusConfidence string

const (
	StatusVerified      StatusConfidence = "verified"
	StatusLegacyUnknown StatusConfidence = "legacy_unknown"
)

// DirectDistributorName is the sentinel distributor representing
// artist-held inventory. It carries 0% commission and is created
// lazily by the sync if the source batch never mentions it.
const DirectDistributorName = "Direct"

type PrintRecord struct {
	ID            int
	ExternalID    string
	Name          string
	ShortName     string
	Description   *string
	TotalEditions *int
	WebLink       *string
	Notes         *string
	ImageURLs     []string
	ImagePath     *string
	IsActive      bool
}

type DistributorRecord struct {
	ID             int
	ExternalID     string
	Name           string
	ShortName      string
	CommissionPct  *decimal.Decimal
	Notes          *string
	ContactNumber  *string
	WebAddress     *string
	LastUpdateDate *time.Time
	IsActive       bool
}

// EditionRecord is a cleaned edition row before foreign-key resolution.
// PrintName and DistributorName are canonical lookup names consumed by
// the importer; they are not stored.
type EditionRecord struct {
	ExternalID      string
	DisplayName     string
	PrintName       string
	DistributorName string

	PrintID       *int
	DistributorID *int
	EditionNumber *int

	Size      Size
	FrameType FrameType
	Variation *string

	IsPrinted      bool
	IsSold         bool
	IsSettled      bool
	IsStockChecked bool
	ToCheckDetail  bool

	RetailPrice   *decimal.Decimal
	DateSold      *time.Time
	CommissionPct *decimal.Decimal
	DateInGallery *time.Time

	Notes       *string
	PaymentNote *string

	StatusConfidence StatusConfidence
}

type DecisionAction string

const (
	DecisionKeep DecisionAction = "KEEP"
	DecisionSkip DecisionAction = "SKIP"
)

// Decision is one row of the pre-computed duplicate-handling table.
type Decision struct {
	RowIndex int
	Edition  string
	Action   DecisionAction
	Reason   string
}

type SyncCounts struct {
	Processed         int `json:"processed"`
	Created           int `json:"created"`
	Skipped           int `json:"skipped"`
	Failed            int `json:"failed"`
	DuplicatesIgnored int `json:"duplicatesIgnored"`
}

// RunCounts is the per-table breakdown persisted on a sync run.
type RunCounts struct {
	Prints       SyncCounts `json:"prints"`
	Distributors SyncCounts `json:"distributors"`
	Editions     SyncCounts `json:"editions"`
}

type SyncStatus string

const (
	SyncRunning   SyncStatus = "running"
	SyncCompleted SyncStatus = "completed"
	SyncFailed    SyncStatus = "failed"
)

// SyncRun is the durable audit record of one import execution.
type SyncRun struct {
	ID          int
	SyncID      string
	SyncType    string
	StartedAt   time.Time
	CompletedAt *time.Time
	Status      SyncStatus
	Error       *string
	SourceHash  string
	CountsJSON  string
}

type AuditAction string

const (
	AuditInsert AuditAction = "INSERT"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

type AuditEntry struct {
	ID            int
	TableName     string
	RecordID      int
	Action        AuditAction
	ChangedAt     time.Time
	OldValues     *string
	NewValues     *string
	ChangedFields []string
}

func StringPtr(v string) *string { return &v }

func IntPtr(v int) *int { return &v }

func DecimalPtr(v decimal.Decimal) *decimal.Decimal { return &v }

func TimePtr(v time.Time) *time.Time { return &v }
