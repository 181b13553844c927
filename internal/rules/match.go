package rules

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Suggestion enum constants
const (
	SuggestAddToExisting = "add_to_existing"
	SuggestCreateNew     = "create_new"
)

// MatchThreshold is the minimum score for suggesting add_to_existing.
const MatchThreshold = 0.5

// BoxSnapshot is the slice of a pending box the matcher scores against.
type BoxSnapshot struct {
	BoxID          uuid.UUID       `json:"box_id"`
	BoxType        string          `json:"box_type"`
	Status         string          `json:"status"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DocumentDate   *time.Time      `json:"document_date"`
	ContactName    string          `json:"contact_name"`
	TaxID          string          `json:"tax_id"`
	DocumentNumber string          `json:"document_number"`
}

// Match is one scored candidate box.
type Match struct {
	BoxID   uuid.UUID `json:"box_id"`
	Score   float64   `json:"score"`
	Reasons []string  `json:"reasons"`
}

// MatchResult ranks candidate boxes and suggests whether the incoming document
// belongs to one of them. Advisory only; the caller makes the final choice.
type MatchResult struct {
	Matches    []Match `json:"matches"`
	Suggestion string  `json:"suggestion"`
	Reason     string  `json:"reason"`
}

// FindMatches scores a newly aggregated document against open boxes of the same
// type. No candidate above the threshold means suggest create_new.
func FindMatches(rec AggregatedRecord, boxType string, candidates []BoxSnapshot) MatchResult {
	docDate := parseRecordDate(rec)

	var matches []Match
	for _, cand := range candidates {
		if cand.BoxType != boxType || IsTerminalStatus(cand.Status) {
			continue
		}
		if m, ok := scoreCandidate(rec, docDate, cand); ok {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	result := MatchResult{Matches: matches, Suggestion: SuggestCreateNew, Reason: "no open box matches this document"}
	if len(matches) > 0 && matches[0].Score >= MatchThreshold {
		result.Suggestion = SuggestAddToExisting
		result.Reason = strings.Join(matches[0].Reasons, "; ")
	}
	return result
}

func scoreCandidate(rec AggregatedRecord, docDate *time.Time, cand BoxSnapshot) (Match, bool) {
	m := Match{BoxID: cand.BoxID}

	if rec.Amount.Present && cand.TotalAmount.GreaterThan(decimal.Zero) {
		if rec.Amount.Value.Sub(cand.TotalAmount).Abs().LessThan(NumericTolerance) {
			m.Score += 0.5
			m.Reasons = append(m.Reasons, fmt.Sprintf("amount matches %s", cand.TotalAmount.StringFixed(2)))
		}
	}

	if docDate != nil && cand.DocumentDate != nil {
		days := docDate.Sub(*cand.DocumentDate).Hours() / 24
		if days < 0 {
			days = -days
		}
		switch {
		case days < 1:
			m.Score += 0.2
			m.Reasons = append(m.Reasons, "same document date")
		case days <= 3:
			m.Score += 0.1
			m.Reasons = append(m.Reasons, "document date within 3 days")
		}
	}

	if rec.TaxID.Present && cand.TaxID != "" &&
		strings.EqualFold(strings.TrimSpace(rec.TaxID.Value), strings.TrimSpace(cand.TaxID)) {
		m.Score += 0.3
		m.Reasons = append(m.Reasons, "tax id matches")
	} else if rec.ContactName.Present && cand.ContactName != "" &&
		normalizeString(rec.ContactName.Value) == normalizeString(cand.ContactName) {
		m.Score += 0.2
		m.Reasons = append(m.Reasons, fmt.Sprintf("counterpart %q matches", cand.ContactName))
	}

	return m, m.Score > 0
}

func parseRecordDate(rec AggregatedRecord) *time.Time {
	if !rec.DocumentDate.Present {
		return nil
	}
	t, err := time.Parse("2006-01-02", rec.DocumentDate.Value)
	if err != nil {
		return nil
	}
	return &t
}

// PendingStatuses lists the box statuses eligible for matching.
func PendingStatuses() []string {
	return []string{model.BoxStatusDraft, model.BoxStatusPending, model.BoxStatusNeedDocs}
}
