package core

import (
	"errors"
	"strings"
	"time"
)

// TransactionKind distinguishes cash coming in from cash going out.
type TransactionKind string

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

// PaymentMethod is the instrument used for a transaction.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentCard        PaymentMethod = "card"
	PaymentMobileMoney PaymentMethod = "mobile-money"
	PaymentTransfer    PaymentMethod = "transfer"
	PaymentCheque      PaymentMethod = "cheque"
)

// RecurrencePeriod describes how often a recurring transaction repeats.
type RecurrencePeriod string

const (
	RecurrenceNone    RecurrencePeriod = "none"
	RecurrenceDaily   RecurrencePeriod = "daily"
	RecurrenceWeekly  RecurrencePeriod = "weekly"
	RecurrenceMonthly RecurrencePeriod = "monthly"
)

// Origin records how a transaction entered the ledger.
type Origin string

const (
	OriginManual  Origin = "manual"
	OriginProfile Origin = "derived-from-profile"
)

// ObjectiveStatus is the lifecycle state of a savings objective.
type ObjectiveStatus string

const (
	ObjectiveActive    ObjectiveStatus = "active"
	ObjectiveCompleted ObjectiveStatus = "completed"
	ObjectiveArchived  ObjectiveStatus = "archived"
)

// Valid reports whether s is a recognized objective status.
func (s ObjectiveStatus) Valid() bool {
	switch s {
	case ObjectiveActive, ObjectiveCompleted, ObjectiveArchived:
		return true
	}
	return false
}

// Priority orders objectives by importance to the user.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// SavingsFrequency is how often the user intends to put money aside.
type SavingsFrequency string

const (
	SavingsDaily   SavingsFrequency = "daily"
	SavingsWeekly  SavingsFrequency = "weekly"
	SavingsMonthly SavingsFrequency = "monthly"
)

// ObjectiveCategory is the closed set of savings-goal categories.
type ObjectiveCategory string

const (
	CategoryTravel     ObjectiveCategory = "travel"
	CategoryVehicle    ObjectiveCategory = "vehicle"
	CategoryHome       ObjectiveCategory = "home"
	CategoryEducation  ObjectiveCategory = "education"
	CategoryEmergency  ObjectiveCategory = "emergency"
	CategoryHealth     ObjectiveCategory = "health"
	CategoryTechnology ObjectiveCategory = "technology"
	CategoryEvent      ObjectiveCategory = "event"
	CategoryOther      ObjectiveCategory = "other"
)

// MinObjectiveTargetCents is the smallest allowed target amount (1000 units).
const MinObjectiveTargetCents int64 = 1000 * 100

// MaxActiveObjectives is the per-owner cap on objectives in the active state.
const MaxActiveObjectives = 5

type (
	// Transaction is a single recorded cash movement owned by one user.
	Transaction struct {
		ID           string
		OwnerID      string
		Kind         TransactionKind
		Amount       Money
		Category     string
		Description  string
		Counterparty string
		OccurredOn   time.Time
		Payment      PaymentMethod
		Tags         []string
		Recurring    bool
		Recurrence   RecurrencePeriod
		Origin       Origin
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}

	// Objective is a savings goal with a target amount and a deadline.
	Objective struct {
		ID        string
		OwnerID   string
		Title     string
		Target    Money
		Current   Money
		StartDate time.Time
		Deadline  time.Time
		Category  ObjectiveCategory
		Frequency SavingsFrequency
		Priority  Priority
		Note      string
		Status    ObjectiveStatus
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Notification is a persisted rule-engine alert for one user.
	Notification struct {
		ID        string
		OwnerID   string
		Message   string
		Category  NotificationCategory
		Read      bool
		CreatedAt time.Time
	}

	// RecurringSource is a profile-declared recurring income entry. The
	// importer materializes one income transaction per source, keyed by
	// SourceKey.
	RecurringSource struct {
		ID        string
		OwnerID   string
		SourceKey string
		Label     string
		Amount    Money
		Frequency string
		CreatedAt time.Time
	}

	// Preferences holds per-owner notification settings. The Channels blob
	// is replaced wholesale on update, never merged.
	Preferences struct {
		OwnerID       string
		NotifyEnabled bool
		Channels      []string
		UpdatedAt     time.Time
	}
)

// NotificationCategory tags a notification for rendering.
type NotificationCategory string

const (
	NotifyWarning NotificationCategory = "warning"
	NotifySuccess NotificationCategory = "success"
	NotifyInfo    NotificationCategory = "info"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid transaction kind")
	ErrEmptyCategory     = errors.New("empty category")
	ErrInvalidPayment    = errors.New("invalid payment method")
	ErrInvalidRecurrence = errors.New("invalid recurrence period")
	ErrEmptyTitle        = errors.New("empty title")
	ErrTargetTooSmall    = errors.New("target amount below minimum")
	ErrInvalidCategory   = errors.New("invalid objective category")
	ErrInvalidFrequency  = errors.New("invalid savings frequency")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidStatus     = errors.New("invalid objective status")
	ErrInvalidDeadline   = errors.New("deadline must be after start date")
	ErrTooManyObjectives = errors.New("active objective limit reached")

	// ErrNotFound deliberately covers both a missing record and a record
	// owned by someone else, so callers cannot probe foreign ownership.
	ErrNotFound = errors.New("not found or not authorized")
)

// Valid reports whether k is a recognized transaction kind.
func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

// Valid reports whether p is a recognized payment method.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentMobileMoney, PaymentTransfer, PaymentCheque:
		return true
	}
	return false
}

// Valid reports whether r is a recognized recurrence period.
func (r RecurrencePeriod) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	}
	return false
}

// Valid reports whether c is one of the closed objective categories.
func (c ObjectiveCategory) Valid() bool {
	switch c {
	case CategoryTravel, CategoryVehicle, CategoryHome, CategoryEducation,
		CategoryEmergency, CategoryHealth, CategoryTechnology, CategoryEvent,
		CategoryOther:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Payment != "" && !t.Payment.Valid() {
		return ErrInvalidPayment
	}
	if !t.Recurrence.Valid() {
		return ErrInvalidRecurrence
	}
	// A non-recurring transaction must not carry a period.
	if !t.Recurring && t.Recurrence != RecurrenceNone {
		return ErrInvalidRecurrence
	}
	if t.OccurredOn.IsZero() {
		return errors.New("occurrence date cannot be zero")
	}
	return nil
}

func (o Objective) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return ErrEmptyTitle
	}
	if o.Target.Cents < MinObjectiveTargetCents {
		return ErrTargetTooSmall
	}
	if o.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	if !o.Category.Valid() {
		return ErrInvalidCategory
	}
	switch o.Frequency {
	case SavingsDaily, SavingsWeekly, SavingsMonthly:
	default:
		return ErrInvalidFrequency
	}
	switch o.Priority {
	case PriorityLow, PriorityNormal, PriorityHigh:
	default:
		return ErrInvalidPriority
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	if !o.Deadline.IsZero() && !o.StartDate.IsZero() && !o.Deadline.After(o.StartDate) {
		return ErrInvalidDeadline
	}
	return nil
}

// ProgressPercent returns the completion percentage, half-up rounded and
// capped at 100. A non-positive target is treated as fully funded; the
// upstream validation keeps that case out of storage, this is a guard only.
func (o Objective) ProgressPercent() int {
	if o.Target.Cents <= 0 {
		return 100
	}
	if o.Current.Cents <= 0 {
		return 0
	}
	pct := (o.Current.Cents*100 + o.Target.Cents/2) / o.Target.Cents
	if pct > 100 {
		return 100
	}
	return int(pct)
}
