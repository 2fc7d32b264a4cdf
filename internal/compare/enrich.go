package compare

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

// QuipRequest describes one disagreement to a quip generator. Ratings use
// the five-star display scale.
type QuipRequest struct {
	MovieTitle  string `json:"movieTitle"`
	User1Rating string `json:"user1Rating"`
	User2Rating string `json:"user2Rating"`
}

// Quip is the pair of lines generated for one disagreement.
type Quip struct {
	MovieTitle    string `json:"movieTitle,omitempty"`
	User1Response string `json:"user1Response"`
	User2Response string `json:"user2Response"`
}

// Generator produces quips in request order.
type Generator interface {
	Generate(ctx context.Context, requests []QuipRequest) ([]Quip, error)
}

// EnrichReport describes what happened during an Enrich call.
type EnrichReport struct {
	Requested int
	Received  int
	Attached  int
	Err       error
}

// Mismatch reports a response whose length differs from the request.
func (r EnrichReport) Mismatch() bool {
	return r.Err == nil && r.Requested > 0 && r.Requested != r.Received
}

// BuildRequests renders disagreements in list order.
func BuildRequests(ds []domain.Disagreement) []QuipRequest {
	out := make([]QuipRequest, len(ds))
	for i, d := range ds {
		out[i] = QuipRequest{
			MovieTitle:  d.Title,
			User1Rating: d.User1Rating.Stars(),
			User2Rating: d.User2Rating.Stars(),
		}
	}
	return out
}

// Enrich asks gen for quips and attaches them positionally. Generator
// failures leave every message nil; the returned list is always usable.
// The input slice is not modified.
func Enrich(ctx context.Context, ds []domain.Disagreement, gen Generator) ([]domain.Disagreement, EnrichReport) {
	out := make([]domain.Disagreement, len(ds))
	copy(out, ds)

	report := EnrichReport{Requested: len(ds)}
	if len(ds) == 0 || gen == nil {
		return out, report
	}

	logger := zerolog.Ctx(ctx)
	quips, err := gen.Generate(ctx, BuildRequests(ds))
	if err != nil {
		report.Err = err
		logger.Warn().Err(err).Int("requested", len(ds)).Msg("quip generation failed")
		return out, report
	}
	report.Received = len(quips)
	if report.Mismatch() {
		logger.Warn().
			Int("requested", report.Requested).
			Int("received", report.Received).
			Msg("quip count mismatch")
	}

	for i := 0; i < len(out) && i < len(quips); i++ {
		out[i].User1Message = domain.StringPtr(quips[i].User1Response)
		out[i].User2Message = domain.StringPtr(quips[i].User2Response)
		if out[i].User1Message != nil || out[i].User2Message != nil {
			report.Attached++
		}
	}
	return out, report
}
