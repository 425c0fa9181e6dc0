package storefront

import (
	"context"
	"testing"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestShopPageService_GetList(t *testing.T) {
	tc := shared.TranslationContext{ShopID: 2, FallbackID: 1}
	reader := new(MockPageReader)
	reader.On("GetList", mock.Anything, []int{3, 2, 5}, tc).Return(map[int]*shop.Page{
		2: {ID: 2, Title: "Imprint"},
		3: {ID: 3, Title: "Terms", ShopIDs: []int{1, 2}},
		5: {ID: 5, Title: "Only in shop 1", ShopIDs: []int{1}},
	}, nil)
	svc := NewShopPageService(reader)

	pages, err := svc.GetList(context.Background(), []int{3, 2, 3, 5}, tc)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Contains(t, pages, 2)
	assert.Contains(t, pages, 3)

	ordered, err := svc.Ordered(context.Background(), []int{3, 2, 3, 5}, tc)
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, "Terms", ordered[0].Title)
	assert.Equal(t, "Imprint", ordered[1].Title)
}
