package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"sidopi/internal/model"
	"sidopi/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type RecommendationOptions struct {
	IncludeAlternatives bool
	MaxAlternatives     int // capped at 10
	RiskTolerance       string
}

// RecommendationCandidate is one scored medicine for the submission's pest
// complaint. Quantity and cost are computed from the planner; stock and
// expiry reflect the moment of the query and are not a reservation. Risk is
// assessed against the requesting item's quantity.
type RecommendationCandidate struct {
	MedicineID      string          `json:"medicine_id"`
	MedicineCode    string          `json:"medicine_code"`
	MedicineName    string          `json:"medicine_name"`
	Category        string          `json:"category"`
	Unit            string          `json:"unit"`
	MatchScore      float64         `json:"match_score"`
	PlannedQuantity string          `json:"planned_quantity"`
	EstimatedCost   string          `json:"estimated_cost"`
	AvailableStock  string          `json:"available_stock"`
	StockSufficient bool            `json:"stock_sufficient"`
	EarliestExpiry  *string         `json:"earliest_expiry,omitempty"`
	MatchedPests    []string        `json:"matched_pests"`
	Risk            *RiskAssessment `json:"risk,omitempty"`

	// retained for ranking and per-item risk
	cost         decimal.Decimal
	stock        decimal.Decimal
	daysToExpiry int
}

// ItemRecommendation pairs one submission item with its ranked choices
type ItemRecommendation struct {
	ItemID            string                    `json:"item_id"`
	MedicineID        string                    `json:"medicine_id"` // the medicine the officer asked for
	RequestedQuantity string                    `json:"requested_quantity"`
	Optimal           *RecommendationCandidate  `json:"optimal"`
	Alternatives      []RecommendationCandidate `json:"alternatives,omitempty"`
	Warnings          []string                  `json:"warnings,omitempty"`
}

type RecommendationResponse struct {
	SubmissionID     string               `json:"submission_id"`
	SubmissionNumber string               `json:"submission_number"`
	PestTypes        []string             `json:"pest_types"`
	AffectedArea     float64              `json:"affected_area"`
	Items            []ItemRecommendation `json:"items"`
}

// --- Interface ---

// RecommendationService scores the active medicine pool against a
// submission's reported pests and plans quantities for the best matches,
// answering per submission item. It is read-only: recommendations never
// touch stock or the submission.
type RecommendationService interface {
	GetRecommendations(ctx context.Context, submissionID string, opts RecommendationOptions) (*RecommendationResponse, error)
}

type recommendationService struct {
	submissionRepo repository.SubmissionRepository
	medicineRepo   repository.MedicineRepository
	stockRepo      repository.StockRepository
}

func NewRecommendationService(
	submissionRepo repository.SubmissionRepository,
	medicineRepo repository.MedicineRepository,
	stockRepo repository.StockRepository,
) RecommendationService {
	return &recommendationService{
		submissionRepo: submissionRepo,
		medicineRepo:   medicineRepo,
		stockRepo:      stockRepo,
	}
}

// --- Implementation ---

func (s *recommendationService) GetRecommendations(ctx context.Context, submissionID string, opts RecommendationOptions) (*RecommendationResponse, error) {
	id, err := uuid.Parse(submissionID)
	if err != nil {
		return nil, fmt.Errorf("invalid submission id: %w", err)
	}

	submission, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSubmissionNotFound, submissionID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	pool, err := s.medicineRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicine pool: %w", err)
	}

	ranked, err := s.rankCandidates(ctx, submission, pool)
	if err != nil {
		return nil, err
	}

	maxAlternatives := opts.MaxAlternatives
	if maxAlternatives <= 0 || maxAlternatives > 10 {
		maxAlternatives = 10
	}

	response := &RecommendationResponse{
		SubmissionID:     submission.ID.String(),
		SubmissionNumber: submission.SubmissionNumber,
		PestTypes:        submission.PestTypes,
		AffectedArea:     submission.AffectedArea,
		Items:            make([]ItemRecommendation, 0, len(submission.Items)),
	}

	// The candidate ranking is shared — it depends on the reported pests and
	// affected area — but risk is per item: each item's requested quantity is
	// weighed against the candidate's stock.
	for i := range submission.Items {
		item := &submission.Items[i]
		rec := ItemRecommendation{
			ItemID:            item.ID.String(),
			MedicineID:        item.MedicineID.String(),
			RequestedQuantity: item.RequestedQuantity.StringFixed(2),
		}

		if len(ranked) == 0 {
			rec.Warnings = append(rec.Warnings, "no active medicine matches the reported pests")
			response.Items = append(response.Items, rec)
			continue
		}

		choices := make([]RecommendationCandidate, len(ranked))
		copy(choices, ranked)
		for j := range choices {
			risk := AssessRisk(RiskInputs{
				RequestedQuantity: item.RequestedQuantity,
				AvailableStock:    choices[j].stock,
				DaysToExpiry:      choices[j].daysToExpiry,
				MatchScore:        choices[j].MatchScore,
			})
			choices[j].Risk = &risk
		}

		rec.Optimal = &choices[0]

		if opts.IncludeAlternatives && len(choices) > 1 {
			rest := choices[1:]
			if len(rest) > maxAlternatives {
				rest = rest[:maxAlternatives]
			}
			rec.Alternatives = rest
		}

		// A cautious caller gets an explicit flag when even the best option
		// is high risk
		if opts.RiskTolerance == RiskLow && rec.Optimal.Risk.OverallRisk == RiskHigh {
			rec.Warnings = append(rec.Warnings, WarnHighRiskChoice)
		}

		response.Items = append(response.Items, rec)
	}

	return response, nil
}

// rankCandidates scores the pool against the submission's pests and sorts by
// match score descending, cost ascending as the tie breaker. Risk is left
// unset; it is item-specific.
func (s *recommendationService) rankCandidates(ctx context.Context, submission *model.Submission, pool []model.Medicine) ([]RecommendationCandidate, error) {
	candidates := make([]RecommendationCandidate, 0, len(pool))
	for i := range pool {
		medicine := &pool[i]
		matched := matchedPests(medicine.TargetPests, submission.PestTypes)
		if len(matched) == 0 {
			continue
		}

		score := MatchScore(medicine.TargetPests, submission.PestTypes, medicine.Category)
		if score <= 0 {
			continue
		}

		quantity, planErr := PlanQuantity(submission.AffectedArea, medicine.Category, submission.PestTypes, medicine.Unit)
		if planErr != nil {
			return nil, planErr
		}

		stock, stockErr := s.stockRepo.TotalStock(ctx, medicine.ID)
		if stockErr != nil {
			return nil, fmt.Errorf("failed to read stock: %w", stockErr)
		}

		expiry, expiryErr := s.stockRepo.EarliestExpiry(ctx, medicine.ID)
		if expiryErr != nil {
			return nil, fmt.Errorf("failed to read expiry: %w", expiryErr)
		}

		cost := medicine.PricePerUnit.Mul(quantity)
		candidate := RecommendationCandidate{
			MedicineID:      medicine.ID.String(),
			MedicineCode:    medicine.Code,
			MedicineName:    medicine.Name,
			Category:        medicine.Category,
			Unit:            medicine.Unit,
			MatchScore:      score,
			PlannedQuantity: quantity.StringFixed(2),
			EstimatedCost:   cost.StringFixed(2),
			AvailableStock:  stock.StringFixed(2),
			StockSufficient: stock.GreaterThanOrEqual(quantity),
			MatchedPests:    matched,
			cost:            cost,
			stock:           stock,
		}
		if expiry != nil {
			formatted := expiry.Format("2006-01-02")
			candidate.EarliestExpiry = &formatted
			candidate.daysToExpiry = int(time.Until(*expiry).Hours() / 24)
		}

		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].MatchScore != candidates[j].MatchScore {
			return candidates[i].MatchScore > candidates[j].MatchScore
		}
		return candidates[i].cost.LessThan(candidates[j].cost)
	})

	return candidates, nil
}

// matchedPests returns the reported pests present in the medicine's declared
// target list, preserving the reported order
func matchedPests(targetPests, requestedPests []string) []string {
	targets := make(map[string]bool, len(targetPests))
	for _, p := range targetPests {
		targets[normalizePest(p)] = true
	}

	var matched []string
	for _, p := range requestedPests {
		if targets[normalizePest(p)] {
			matched = append(matched, p)
		}
	}
	return matched
}
