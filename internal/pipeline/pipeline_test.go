package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-tracker/constants"
	"listing-tracker/internal/assemble"
	"listing-tracker/internal/common"
	"listing-tracker/internal/entity"
)

type fakeFetcher struct {
	markdown string
	err      error
	gotURL   string
}

func (f *fakeFetcher) ScrapeMarkdown(_ context.Context, url string) (string, error) {
	f.gotURL = url
	return f.markdown, f.err
}

type fakeExtractor struct {
	fields  entity.ExtractedFields
	err     error
	gotText string
}

func (f *fakeExtractor) Extract(_ context.Context, text string) (entity.ExtractedFields, error) {
	f.gotText = text
	return f.fields, f.err
}

type fakeListingStore struct {
	created []*entity.Listing
	err     error
}

func (s *fakeListingStore) Create(_ context.Context, l *entity.Listing) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, l)
	return nil
}

func (s *fakeListingStore) GetByID(context.Context, uuid.UUID) (*entity.Listing, error) {
	return nil, common.ErrNotFound
}

func (s *fakeListingStore) List(context.Context) ([]*entity.Listing, error) { return nil, nil }

func (s *fakeListingStore) Update(context.Context, *entity.Listing) error { return nil }

func (s *fakeListingStore) Delete(context.Context, uuid.UUID) error { return nil }

func strptr(s string) *string { return &s }

type stageRecord struct {
	status  constants.ItemStatus
	message string
}

func TestRun_HappyPath(t *testing.T) {
	fetcher := &fakeFetcher{markdown: "# 10 Palm Ln, Chandler, AZ 85225\n\n$350,000 listed"}
	extractor := &fakeExtractor{fields: entity.ExtractedFields{
		Price:   strptr("$350,000"),
		Address: strptr("10 Palm Ln, Chandler, AZ 85225"),
	}}
	store := &fakeListingStore{}
	p := New(nil, fetcher, nil, extractor, store, assemble.Config{})

	var stages []stageRecord
	listing, err := p.Run(context.Background(), "https://example.com/10-palm-ln", func(s constants.ItemStatus, m string) {
		stages = append(stages, stageRecord{s, m})
	})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Same(t, listing, store.created[0])
	assert.Equal(t, "https://example.com/10-palm-ln", listing.URL)
	assert.Equal(t, 350000.0, listing.PriceValue)
	assert.Regexp(t, `^REF-[A-Z0-9]{5}$`, listing.DisplayID)

	assert.Equal(t, "https://example.com/10-palm-ln", fetcher.gotURL)
	assert.NotEmpty(t, extractor.gotText)

	require.Len(t, stages, 3)
	assert.Equal(t, constants.ItemStatusScraping, stages[0].status)
	assert.Equal(t, constants.ItemStatusParsing, stages[1].status)
	assert.Equal(t, constants.ItemStatusSaving, stages[2].status)
}

func TestRun_FetchFailureStopsEarly(t *testing.T) {
	fetcher := &fakeFetcher{err: common.ErrFetchFailure}
	extractor := &fakeExtractor{}
	store := &fakeListingStore{}
	p := New(nil, fetcher, nil, extractor, store, assemble.Config{})

	var stages []stageRecord
	_, err := p.Run(context.Background(), "https://example.com/down", func(s constants.ItemStatus, m string) {
		stages = append(stages, stageRecord{s, m})
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFetchFailure)

	assert.Empty(t, extractor.gotText, "extractor must not run after a fetch failure")
	assert.Empty(t, store.created)
	require.Len(t, stages, 1)
	assert.Equal(t, constants.ItemStatusScraping, stages[0].status)
}

func TestRun_ExtractionExhaustedPropagates(t *testing.T) {
	fetcher := &fakeFetcher{markdown: "nothing useful here, just boilerplate text about cookies"}
	extractor := &fakeExtractor{err: common.ErrExtractionExhausted}
	store := &fakeListingStore{}
	p := New(nil, fetcher, nil, extractor, store, assemble.Config{})

	_, err := p.Run(context.Background(), "https://example.com/empty", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionExhausted)
	assert.Empty(t, store.created)
}

func TestRun_SaveFailureWrapped(t *testing.T) {
	fetcher := &fakeFetcher{markdown: "# 1 Oak St, Gilbert, AZ 85296\n$275,000"}
	extractor := &fakeExtractor{fields: entity.ExtractedFields{Price: strptr("$275,000")}}
	store := &fakeListingStore{err: errors.New("connection reset")}
	p := New(nil, fetcher, nil, extractor, store, assemble.Config{})

	_, err := p.Run(context.Background(), "https://example.com/1-oak-st", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save listing")
}

func TestRun_NilStageCallback(t *testing.T) {
	fetcher := &fakeFetcher{markdown: "# 2 Ash Dr, Tempe, AZ 85281\n$199,000"}
	extractor := &fakeExtractor{fields: entity.ExtractedFields{Price: strptr("$199,000")}}
	store := &fakeListingStore{}
	p := New(nil, fetcher, nil, extractor, store, assemble.Config{})

	_, err := p.Run(context.Background(), "https://example.com/2-ash-dr", nil)
	require.NoError(t, err)
	require.Len(t, store.created, 1)
}
