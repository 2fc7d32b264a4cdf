package compare

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

type stubGenerator struct {
	quips []Quip
	err   error
	got   []QuipRequest
	calls int
}

func (s *stubGenerator) Generate(_ context.Context, reqs []QuipRequest) ([]Quip, error) {
	s.calls++
	s.got = reqs
	return s.quips, s.err
}

func sampleDisagreements() []domain.Disagreement {
	return []domain.Disagreement{
		{FilmID: "a", Title: "Alpha", User1Rating: domain.NumericValue(9), User2Rating: domain.NumericValue(2), RatingDifference: 7},
		{FilmID: "b", Title: "Beta", User1Rating: domain.LikedValue(), User2Rating: domain.NumericValue(3), RatingDifference: 7},
		{FilmID: "c", Title: "Gamma", User1Rating: domain.NumericValue(1), User2Rating: domain.NumericValue(5), RatingDifference: 4},
	}
}

func TestBuildRequests(t *testing.T) {
	got := BuildRequests(sampleDisagreements())
	want := []QuipRequest{
		{MovieTitle: "Alpha", User1Rating: "4.5", User2Rating: "1.0"},
		{MovieTitle: "Beta", User1Rating: "5.0", User2Rating: "1.5"},
		{MovieTitle: "Gamma", User1Rating: "0.5", User2Rating: "2.5"},
	}
	require.Equal(t, want, got)
}

func TestEnrichAttachesPositionally(t *testing.T) {
	gen := &stubGenerator{quips: []Quip{
		{User1Response: "a1", User2Response: "a2"},
		{User1Response: "b1", User2Response: "b2"},
		{User1Response: "c1", User2Response: "c2"},
	}}
	in := sampleDisagreements()
	out, report := Enrich(context.Background(), in, gen)

	require.Equal(t, 1, gen.calls)
	require.Equal(t, 3, report.Attached)
	require.False(t, report.Mismatch())
	require.Equal(t, "b1", *out[1].User1Message)
	require.Equal(t, "c2", *out[2].User2Message)
	require.Nil(t, in[0].User1Message, "input must not be modified")
}

func TestEnrichShortResponse(t *testing.T) {
	gen := &stubGenerator{quips: []Quip{
		{User1Response: "a1", User2Response: "a2"},
		{User1Response: "b1", User2Response: "b2"},
	}}
	out, report := Enrich(context.Background(), sampleDisagreements(), gen)

	require.True(t, report.Mismatch())
	require.Equal(t, 2, report.Received)
	require.NotNil(t, out[0].User1Message)
	require.NotNil(t, out[1].User2Message)
	require.Nil(t, out[2].User1Message)
	require.Nil(t, out[2].User2Message)
}

func TestEnrichFailureLeavesMessagesNil(t *testing.T) {
	boom := errors.New("upstream down")
	out, report := Enrich(context.Background(), sampleDisagreements(), &stubGenerator{err: boom})

	require.ErrorIs(t, report.Err, boom)
	require.Len(t, out, 3)
	for _, d := range out {
		require.Nil(t, d.User1Message)
		require.Nil(t, d.User2Message)
	}
}

func TestEnrichSkipsEmptyAndNil(t *testing.T) {
	gen := &stubGenerator{}
	out, _ := Enrich(context.Background(), nil, gen)
	require.Empty(t, out)
	require.Zero(t, gen.calls)

	out, report := Enrich(context.Background(), sampleDisagreements(), nil)
	require.Len(t, out, 3)
	require.Zero(t, report.Received)
}
