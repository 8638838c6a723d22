// Package matching ranks donor search results against the typed query.
package matching

import (
	"context"
	"math"
	"sort"
	"strings"

	"donor-batch-ledger/internal/models"
	"donor-batch-ledger/internal/repository"
)

type Candidate struct {
	Donor models.Donor `json:"donor"`
	Score float64      `json:"score"`
}

// Search finds donors whose name or company contains query and orders
// them best match first.
func Search(ctx context.Context, donors repository.DonorRepo, query string) ([]Candidate, error) {
	found, err := donors.FindByName(ctx, query)
	if err != nil {
		return nil, err
	}
	return Rank(query, found), nil
}

// Rank scores each donor by how many query words its name holds. Ties keep
// the repository order.
func Rank(query string, donors []models.Donor) []Candidate {
	candidates := make([]Candidate, 0, len(donors))
	for _, d := range donors {
		score := computeNameSimilarity(query, nameOf(&d))
		if len(donors) > 1 && score < 100 {
			score *= 0.8
		}
		candidates = append(candidates, Candidate{Donor: d, Score: math.Round(score*10) / 10})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

func nameOf(d *models.Donor) string {
	return strings.Join([]string{models.Deref(d.FirstName), models.Deref(d.LastName), models.Deref(d.Company)}, " ")
}

// word overlap, with a prefix counting half
func computeNameSimilarity(query, name string) float64 {
	q := strings.Fields(normalizeName(query))
	n := strings.Fields(normalizeName(name))
	if len(q) == 0 {
		return 0
	}
	var matches float64
	for _, w1 := range q {
		best := 0.0
		for _, w2 := range n {
			switch {
			case w1 == w2:
				best = 1
			case strings.HasPrefix(w2, w1) && best < 0.5:
				best = 0.5
			}
		}
		matches += best
	}
	return matches / float64(len(q)) * 100
}

func normalizeName(name string) string {
	n := strings.ToUpper(name)
	n = strings.ReplaceAll(n, ".", "")
	n = strings.ReplaceAll(n, ",", "")
	return n
}
