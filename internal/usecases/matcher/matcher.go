package matcher

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mufasadev/ramp-reconciler/internal/domain/models"
)

// DepositSuccess is the exchange literal for a credited deposit. Compared case-sensitively.
const DepositSuccess = "success"

const (
	ReasonCoin   = "coin"
	ReasonSize   = "size"
	ReasonTxID   = "txid"
	ReasonStatus = "status"
)

var (
	LenientTolerance = decimal.RequireFromString("0.01")
	StrictTolerance  = decimal.RequireFromString("0.000001")
)

// Expectation is the deposit a user claims to have made.
type Expectation struct {
	Coin string
	Size decimal.Decimal
	TxID string
}

// Mismatch lists the conditions a single record failed.
type Mismatch struct {
	Record  models.DepositRecord `json:"record"`
	Reasons []string             `json:"reasons"`
}

type Matcher struct {
	Tolerance decimal.Decimal
}

func New(tolerance decimal.Decimal) *Matcher {
	return &Matcher{Tolerance: tolerance.Abs()}
}

func NewLenient() *Matcher {
	return New(LenientTolerance)
}

func NewStrict() *Matcher {
	return New(StrictTolerance)
}

// Match returns the earliest deposit satisfying coin, size, txid and status.
// The input slice is left untouched.
func (m *Matcher) Match(deposits []models.DepositRecord, want Expectation) (*models.DepositRecord, bool) {
	for _, d := range byCreation(deposits) {
		if len(m.unmet(d, want)) == 0 {
			found := d
			return &found, true
		}
	}
	return nil, false
}

// Explain reports, in the same order Match scans, why each deposit was rejected.
// Records that match appear with no reasons.
func (m *Matcher) Explain(deposits []models.DepositRecord, want Expectation) []Mismatch {
	sorted := byCreation(deposits)
	out := make([]Mismatch, 0, len(sorted))
	for _, d := range sorted {
		out = append(out, Mismatch{Record: d, Reasons: m.unmet(d, want)})
	}
	return out
}

func (m *Matcher) unmet(d models.DepositRecord, want Expectation) []string {
	var reasons []string
	if !coinMatches(d.Coin, want.Coin) {
		reasons = append(reasons, ReasonCoin)
	}
	if !m.sizeMatches(d.Size, want.Size) {
		reasons = append(reasons, ReasonSize)
	}
	if !txidMatches(d, want.TxID) {
		reasons = append(reasons, ReasonTxID)
	}
	if d.Status != DepositSuccess {
		reasons = append(reasons, ReasonStatus)
	}
	return reasons
}

// coinMatches tolerates chain suffixes such as USDT-TRC20.
func coinMatches(got, want string) bool {
	want = strings.ToUpper(strings.TrimSpace(want))
	if want == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(got), want)
}

func (m *Matcher) sizeMatches(raw string, want decimal.Decimal) bool {
	got, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return got.Sub(want).Abs().LessThan(m.Tolerance)
}

// txidMatches checks both tradeId and orderId; the exchange uses either depending on deposit type.
func txidMatches(d models.DepositRecord, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return false
	}
	return strings.EqualFold(d.TradeID, want) || strings.EqualFold(d.OrderID, want)
}

func byCreation(deposits []models.DepositRecord) []models.DepositRecord {
	sorted := make([]models.DepositRecord, len(deposits))
	copy(sorted, deposits)

	sort.SliceStable(sorted, func(i, j int) bool {
		ti, okI := sorted[i].CreatedAt()
		tj, okJ := sorted[j].CreatedAt()
		switch {
		case okI && okJ:
			return ti.Before(tj)
		case okI:
			return true
		default:
			return false
		}
	})
	return sorted
}
