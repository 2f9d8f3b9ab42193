package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	"github.com/noah-isme/qldt-dashboard/internal/upstream"
	appErrors "github.com/noah-isme/qldt-dashboard/pkg/errors"
)

type fakeSectionsAPI struct {
	raw   string
	err   error
	calls int
}

func (f *fakeSectionsAPI) Sections(context.Context, string) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(f.raw), nil
}

func TestSectionServiceSearchLoadsCatalogOnce(t *testing.T) {
	api := &fakeSectionsAPI{raw: sectionsFixture}
	svc := NewSectionService(api, nil, nil, SearchOptions{})
	ws := testWorkspace("a")

	result, err := svc.Search(context.Background(), ws, "tri101")
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalHits)

	_, err = svc.Search(context.Background(), ws, "mkt")
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls)
}

func TestSectionServiceSearchValidatesBeforeFetching(t *testing.T) {
	api := &fakeSectionsAPI{raw: sectionsFixture}
	svc := NewSectionService(api, nil, nil, SearchOptions{})

	_, err := svc.Search(context.Background(), testWorkspace("a"), " ab ")

	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Zero(t, api.calls)
}

func TestSectionServiceSearchMarksCartedSections(t *testing.T) {
	svc := NewSectionService(&fakeSectionsAPI{raw: sectionsFixture}, nil, nil, SearchOptions{})
	ws := testWorkspace("a")

	_, err := svc.AddToCart(context.Background(), ws, models.CartAddRequest{SectionID: "102"})
	require.NoError(t, err)

	result, err := svc.Search(context.Background(), ws, "TRI101")
	require.NoError(t, err)
	hits := result.Groups[0].Courses[0].Sections
	require.Len(t, hits, 2)
	assert.False(t, hits[0].InCart)
	assert.True(t, hits[1].InCart)
}

func TestSectionServiceAddToCart(t *testing.T) {
	svc := NewSectionService(&fakeSectionsAPI{raw: sectionsFixture}, nil, nil, SearchOptions{})
	ws := testWorkspace("a")

	cart, err := svc.AddToCart(context.Background(), ws, models.CartAddRequest{SectionID: "101"})
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, "TRI101 - Triết học (Nhóm 01)", cart[0].Label)
	assert.JSONEq(t, `101`, string(cart[0].RawID))

	cart, err = svc.AddToCart(context.Background(), ws, models.CartAddRequest{SectionID: "101", Label: "again"})
	require.NoError(t, err)
	require.Len(t, cart, 1, "duplicates are ignored")
	assert.Equal(t, "TRI101 - Triết học (Nhóm 01)", cart[0].Label)

	cart, err = svc.AddToCart(context.Background(), ws, models.CartAddRequest{SectionID: "301", Label: "Tự đặt"})
	require.NoError(t, err)
	assert.Equal(t, "Tự đặt", cart[1].Label)
}

func TestSectionServiceAddToCartErrors(t *testing.T) {
	svc := NewSectionService(&fakeSectionsAPI{raw: sectionsFixture}, nil, nil, SearchOptions{})
	ws := testWorkspace("a")

	_, err := svc.AddToCart(context.Background(), ws, models.CartAddRequest{SectionID: "  "})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.AddToCart(context.Background(), ws, models.CartAddRequest{SectionID: "999"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, svc.Cart(ws))
}

func TestSectionServiceRemoveFromCart(t *testing.T) {
	svc := NewSectionService(&fakeSectionsAPI{raw: sectionsFixture}, nil, nil, SearchOptions{})
	ws := testWorkspace("a")
	_, err := svc.AddToCart(context.Background(), ws, models.CartAddRequest{SectionID: "201"})
	require.NoError(t, err)

	cart, err := svc.RemoveFromCart(ws, "201")
	require.NoError(t, err)
	assert.Empty(t, cart)

	_, err = svc.RemoveFromCart(ws, "201")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSectionServiceRefreshErrors(t *testing.T) {
	ws := testWorkspace("a")

	_, err := NewSectionService(&fakeSectionsAPI{err: &upstream.TransportError{Endpoint: upstream.EndpointSections, StatusCode: 401}}, nil, nil, SearchOptions{}).Refresh(context.Background(), ws)
	assert.ErrorIs(t, err, appErrors.ErrTransport)

	_, err = NewSectionService(&fakeSectionsAPI{raw: "<html>"}, nil, nil, SearchOptions{}).Refresh(context.Background(), ws)
	assert.ErrorIs(t, err, appErrors.ErrMalformedPayload)
	assert.Nil(t, ws.Sections())
}
