package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionPatch_Assignments(t *testing.T) {
	groceries := "cat_groceries"

	tests := []struct {
		name  string
		patch TransactionPatch
		want  []Assignment
	}{
		{
			name:  "empty patch",
			patch: TransactionPatch{},
			want:  nil,
		},
		{
			name:  "amount only",
			patch: TransactionPatch{AmountCents: Set(int64(1250))},
			want:  []Assignment{{Column: "amount", Value: int64(1250)}},
		},
		{
			name:  "zero amount is still written",
			patch: TransactionPatch{AmountCents: Set(int64(0))},
			want:  []Assignment{{Column: "amount", Value: int64(0)}},
		},
		{
			name:  "clear category writes null",
			patch: TransactionPatch{CategoryID: Set[*string](nil)},
			want:  []Assignment{{Column: "category_id", Value: nil}},
		},
		{
			name: "columns come out in fixed order",
			patch: TransactionPatch{
				Note:       Set(StringPtr("lunch")),
				Date:       Set("2024-05-02"),
				CategoryID: Set(&groceries),
				AccountID:  Set("acc_cash"),
			},
			want: []Assignment{
				{Column: "account_id", Value: "acc_cash"},
				{Column: "category_id", Value: "cat_groceries"},
				{Column: "date", Value: "2024-05-02"},
				{Column: "note", Value: "lunch"},
			},
		},
		{
			name: "every column",
			patch: TransactionPatch{
				AccountID:   Set("acc_1"),
				CategoryID:  Set(&groceries),
				AmountCents: Set(int64(-5)),
				Currency:    Set("EUR"),
				Date:        Set("2024-01-01"),
				Payee:       Set[*string](nil),
				Note:        Set(StringPtr("n")),
			},
			want: []Assignment{
				{Column: "account_id", Value: "acc_1"},
				{Column: "category_id", Value: "cat_groceries"},
				{Column: "amount", Value: int64(-5)},
				{Column: "currency", Value: "EUR"},
				{Column: "date", Value: "2024-01-01"},
				{Column: "payee", Value: nil},
				{Column: "note", Value: "n"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.patch.Assignments()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want) == 0, tt.patch.IsEmpty())
		})
	}
}

func TestCategoryType_Valid(t *testing.T) {
	assert.True(t, CategoryTypeExpense.Valid())
	assert.True(t, CategoryTypeIncome.Valid())
	assert.False(t, CategoryType("system").Valid())
	assert.False(t, CategoryType("").Valid())
}

func TestStringPtr(t *testing.T) {
	assert.Nil(t, StringPtr(""))
	p := StringPtr("x")
	if assert.NotNil(t, p) {
		assert.Equal(t, "x", *p)
	}
}

func TestTransaction_IsUncategorized(t *testing.T) {
	assert.True(t, Transaction{}.IsUncategorized())
	assert.False(t, Transaction{CategoryID: StringPtr("cat_misc")}.IsUncategorized())
}
