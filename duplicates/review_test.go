package duplicates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aqlanhadi/sbtax/duplicates"
	mock_duplicates "github.com/aqlanhadi/sbtax/duplicates/mocks"
	"github.com/aqlanhadi/sbtax/logging"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ledger() []duplicates.Transaction {
	day := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("-15.99")
	return []duplicates.Transaction{
		{ID: 10, Date: day, Description: "NETFLIX.COM", Amount: amount, AccountNumber: "1"},
		{ID: 11, Date: day, Description: "NETFLIX.COM", Amount: amount, AccountNumber: "2"},
		{ID: 12, Date: day, Description: "NETFLIX", Amount: amount, AccountNumber: "3"},
	}
}

func TestService_Candidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_duplicates.NewMockStore(ctrl)
	store.EXPECT().ActiveTransactions(gomock.Any()).Return(ledger(), nil)
	store.EXPECT().DismissedPairs(gomock.Any()).Return([]duplicates.Pair{{A: 12, B: 10}}, nil)

	svc := duplicates.NewService(store, logging.Discard())
	matches, err := svc.Candidates(context.Background())

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, duplicates.NewPair(10, 11), matches[0].Pair())
	assert.Equal(t, duplicates.ScoreExact, matches[0].Score)
	assert.Equal(t, duplicates.NewPair(11, 12), matches[1].Pair())
	assert.Equal(t, duplicates.ScorePartial, matches[1].Score)
}

func TestService_AutoAccept(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_duplicates.NewMockStore(ctrl)
	store.EXPECT().ActiveTransactions(gomock.Any()).Return(ledger(), nil)
	store.EXPECT().DismissedPairs(gomock.Any()).Return(nil, nil)
	store.EXPECT().MarkDuplicate(gomock.Any(), int64(11), int64(10)).Return(nil)

	svc := duplicates.NewService(store, logging.Discard())
	accepted, review, err := svc.AutoAccept(context.Background())

	require.NoError(t, err)
	require.Len(t, accepted, 1)
	// 10/12 is partial across accounts, 11/12 involves a row already marked.
	require.Len(t, review, 1)
	assert.Equal(t, duplicates.NewPair(10, 12), review[0].Pair())
}

func TestService_AutoAcceptStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("connection reset")

	t.Run("load fails", func(t *testing.T) {
		store := mock_duplicates.NewMockStore(ctrl)
		store.EXPECT().ActiveTransactions(gomock.Any()).Return(nil, boom)

		_, _, err := duplicates.NewService(store, logging.Discard()).AutoAccept(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("dismissed pairs fail", func(t *testing.T) {
		store := mock_duplicates.NewMockStore(ctrl)
		store.EXPECT().ActiveTransactions(gomock.Any()).Return(ledger(), nil)
		store.EXPECT().DismissedPairs(gomock.Any()).Return(nil, boom)

		_, err := duplicates.NewService(store, logging.Discard()).Candidates(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("mark fails", func(t *testing.T) {
		store := mock_duplicates.NewMockStore(ctrl)
		store.EXPECT().ActiveTransactions(gomock.Any()).Return(ledger(), nil)
		store.EXPECT().DismissedPairs(gomock.Any()).Return(nil, nil)
		store.EXPECT().MarkDuplicate(gomock.Any(), int64(11), int64(10)).Return(boom)

		_, _, err := duplicates.NewService(store, logging.Discard()).AutoAccept(context.Background())
		assert.ErrorIs(t, err, boom)
	})
}

func TestService_ConfirmAndDismiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_duplicates.NewMockStore(ctrl)
	store.EXPECT().MarkDuplicate(gomock.Any(), int64(12), int64(10)).Return(nil)
	store.EXPECT().DismissPair(gomock.Any(), duplicates.Pair{A: 10, B: 12}).Return(nil)

	svc := duplicates.NewService(store, nil)
	ctx := context.Background()

	assert.NoError(t, svc.Confirm(ctx, 12, 10))
	assert.NoError(t, svc.Dismiss(ctx, 12, 10))
	assert.ErrorIs(t, svc.Confirm(ctx, 10, 10), duplicates.ErrSamePair)
	assert.ErrorIs(t, svc.Dismiss(ctx, 10, 10), duplicates.ErrSamePair)
}
