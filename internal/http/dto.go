package http

import (
	"errors"
	"time"

	"fintrack/internal/core"
)

// transactionRequest is the write shape for transactions. Amount may be given
// either in cents or as a decimal string; cents win when both are present.
type transactionRequest struct {
	Kind         string   `json:"kind"`
	AmountCents  int64    `json:"amount_cents"`
	Amount       string   `json:"amount,omitempty"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Counterparty string   `json:"counterparty"`
	OccurredOn   string   `json:"occurred_on"`
	Payment      string   `json:"payment_method"`
	Tags         []string `json:"tags"`
	Recurring    bool     `json:"recurring"`
	Recurrence   string   `json:"recurrence"`
}

func (req transactionRequest) toDomain(ownerID string) (core.Transaction, error) {
	cents := req.AmountCents
	if cents == 0 && req.Amount != "" {
		parsed, err := core.ParseDecimalToCents(req.Amount)
		if err != nil {
			return core.Transaction{}, core.ErrInvalidAmount
		}
		cents = parsed
	}

	occurredOn, err := parseDate(req.OccurredOn)
	if err != nil {
		return core.Transaction{}, errors.New("occurred_on must be a YYYY-MM-DD date")
	}

	return core.Transaction{
		OwnerID:      ownerID,
		Kind:         core.TransactionKind(req.Kind),
		Amount:       core.Money{Cents: cents},
		Category:     sanitizeInput(req.Category),
		Description:  sanitizeInput(req.Description),
		Counterparty: sanitizeInput(req.Counterparty),
		OccurredOn:   occurredOn,
		Payment:      core.PaymentMethod(req.Payment),
		Tags:         req.Tags,
		Recurring:    req.Recurring,
		Recurrence:   core.RecurrencePeriod(req.Recurrence),
	}, nil
}

type transactionResponse struct {
	ID           string   `json:"id"`
	Kind         string   `json:"kind"`
	AmountCents  int64    `json:"amount_cents"`
	Category     string   `json:"category"`
	Description  string   `json:"description,omitempty"`
	Counterparty string   `json:"counterparty,omitempty"`
	OccurredOn   string   `json:"occurred_on"`
	Payment      string   `json:"payment_method,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Recurring    bool     `json:"recurring"`
	Recurrence   string   `json:"recurrence"`
	Origin       string   `json:"origin"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		Kind:         string(tx.Kind),
		AmountCents:  tx.Amount.Cents,
		Category:     tx.Category,
		Description:  tx.Description,
		Counterparty: tx.Counterparty,
		OccurredOn:   tx.OccurredOn.UTC().Format(time.DateOnly),
		Payment:      string(tx.Payment),
		Tags:         tx.Tags,
		Recurring:    tx.Recurring,
		Recurrence:   string(tx.Recurrence),
		Origin:       string(tx.Origin),
		CreatedAt:    tx.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    tx.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toTransactionList(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

type objectiveRequest struct {
	Title       string `json:"title"`
	TargetCents int64  `json:"target_cents"`
	StartDate   string `json:"start_date,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	Category    string `json:"category"`
	Frequency   string `json:"frequency"`
	Priority    string `json:"priority"`
	Note        string `json:"note"`
	Status      string `json:"status,omitempty"`
}

func (req objectiveRequest) toDomain(ownerID string) (core.Objective, error) {
	o := core.Objective{
		OwnerID:   ownerID,
		Title:     sanitizeInput(req.Title),
		Target:    core.Money{Cents: req.TargetCents},
		Category:  core.ObjectiveCategory(req.Category),
		Frequency: core.SavingsFrequency(req.Frequency),
		Priority:  core.Priority(req.Priority),
		Note:      sanitizeInput(req.Note),
		Status:    core.ObjectiveStatus(req.Status),
	}

	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			return core.Objective{}, errors.New("start_date must be a YYYY-MM-DD date")
		}
		o.StartDate = start
	}
	if req.Deadline != "" {
		deadline, err := parseDate(req.Deadline)
		if err != nil {
			return core.Objective{}, errors.New("deadline must be a YYYY-MM-DD date")
		}
		o.Deadline = deadline
	}

	return o, nil
}

type objectiveResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	TargetCents     int64  `json:"target_cents"`
	CurrentCents    int64  `json:"current_cents"`
	ProgressPercent int    `json:"progress_percent"`
	StartDate       string `json:"start_date"`
	Deadline        string `json:"deadline,omitempty"`
	Category        string `json:"category"`
	Frequency       string `json:"frequency"`
	Priority        string `json:"priority"`
	Note            string `json:"note,omitempty"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

func toObjectiveResponse(o core.Objective) objectiveResponse {
	resp := objectiveResponse{
		ID:              o.ID,
		Title:           o.Title,
		TargetCents:     o.Target.Cents,
		CurrentCents:    o.Current.Cents,
		ProgressPercent: o.ProgressPercent(),
		StartDate:       o.StartDate.UTC().Format(time.DateOnly),
		Category:        string(o.Category),
		Frequency:       string(o.Frequency),
		Priority:        string(o.Priority),
		Note:            o.Note,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !o.Deadline.IsZero() {
		resp.Deadline = o.Deadline.UTC().Format(time.DateOnly)
	}
	return resp
}

func toObjectiveList(objectives []core.Objective) []objectiveResponse {
	out := make([]objectiveResponse, 0, len(objectives))
	for _, o := range objectives {
		out = append(out, toObjectiveResponse(o))
	}
	return out
}

type objectiveProgressResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Percent      int    `json:"percent"`
	TargetCents  int64  `json:"target_cents"`
	CurrentCents int64  `json:"current_cents"`
	Deadline     string `json:"deadline,omitempty"`
}

type dashboardResponse struct {
	TotalIncomeCents  int64                       `json:"total_income_cents"`
	TotalExpenseCents int64                       `json:"total_expense_cents"`
	SavingsCents      int64                       `json:"savings_cents"`
	ByCategory        map[string]int64            `json:"by_category"`
	Objectives        []objectiveProgressResponse `json:"objectives"`
	Messages          []string                    `json:"messages"`
}

func toDashboardResponse(snap core.DashboardSnapshot) dashboardResponse {
	byCategory := make(map[string]int64, len(snap.ByCategory))
	for category, amount := range snap.ByCategory {
		byCategory[category] = amount.Cents
	}

	objectives := make([]objectiveProgressResponse, 0, len(snap.Objectives))
	for _, p := range snap.Objectives {
		resp := objectiveProgressResponse{
			ID:           p.ID,
			Title:        p.Title,
			Percent:      p.Percent,
			TargetCents:  p.Target.Cents,
			CurrentCents: p.Current.Cents,
		}
		if !p.Deadline.IsZero() {
			resp.Deadline = p.Deadline.UTC().Format(time.DateOnly)
		}
		objectives = append(objectives, resp)
	}

	messages := snap.Messages
	if messages == nil {
		messages = []string{}
	}

	return dashboardResponse{
		TotalIncomeCents:  snap.TotalIncome.Cents,
		TotalExpenseCents: snap.TotalExpense.Cents,
		SavingsCents:      snap.Savings.Cents,
		ByCategory:        byCategory,
		Objectives:        objectives,
		Messages:          messages,
	}
}

type notificationResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Category  string `json:"category"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func toNotificationList(notifications []core.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			Category:  string(n.Category),
			Read:      n.Read,
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

type preferencesPayload struct {
	NotifyEnabled bool     `json:"notify_enabled"`
	Channels      []string `json:"channels"`
}

type recurringSourceRequest struct {
	SourceKey   string `json:"source_key"`
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
	Frequency   string `json:"frequency"`
}

type recurringSourceResponse struct {
	ID          string `json:"id"`
	SourceKey   string `json:"source_key"`
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
	Frequency   string `json:"frequency"`
	CreatedAt   string `json:"created_at"`
}

func toRecurringSourceList(sources []core.RecurringSource) []recurringSourceResponse {
	out := make([]recurringSourceResponse, 0, len(sources))
	for _, s := range sources {
		out = append(out, recurringSourceResponse{
			ID:          s.ID,
			SourceKey:   s.SourceKey,
			Label:       s.Label,
			AmountCents: s.Amount.Cents,
			Frequency:   s.Frequency,
			CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
