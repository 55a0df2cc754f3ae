package ofx

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/Veraticus/pennywise/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
<MEMO>Weekly groceries
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>PURCHASE
<MEMO>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

var importOpts = ImportOptions{AccountID: "acc_checking", Currency: "USD"}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
			expectedError: false,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
			expectedError: false,
		},
		{
			name:          "leading blank lines",
			ofxData:       "\n\n  " + sampleBankOFX,
			expectedCount: 3,
			expectedError: false,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedCount: 0,
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedCount: 0,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			reader := strings.NewReader(tt.ofxData)

			transactions, err := parser.ParseFile(context.Background(), reader, importOpts)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, transactions, tt.expectedCount)
			}
		})
	}
}

func TestParseFile_RequiresAccount(t *testing.T) {
	_, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleBankOFX), ImportOptions{})
	assert.ErrorIs(t, err, ErrMissingAccount)
}

func TestParseFile_DefaultsCurrency(t *testing.T) {
	txns, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleBankOFX),
		ImportOptions{AccountID: "acc_cash"})
	require.NoError(t, err)
	for _, txn := range txns {
		assert.Equal(t, "USD", txn.Currency)
		assert.Equal(t, "acc_cash", txn.AccountID)
	}
}

func TestParseFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseFile(ctx, strings.NewReader(sampleBankOFX), importOpts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseBankTransactions(t *testing.T) {
	parser := NewParser()
	reader := strings.NewReader(sampleBankOFX)

	transactions, err := parser.ParseFile(context.Background(), reader, importOpts)
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	assert.Equal(t, model.NewTransaction{
		AccountID:   "acc_checking",
		AmountCents: 2550,
		Currency:    "USD",
		Date:        "2024-01-15",
		Payee:       model.StringPtr("STARBUCKS STORE #1234"),
	}, transactions[0])

	tx2 := transactions[1]
	assert.Equal(t, "2024-01-20", tx2.Date)
	assert.Equal(t, "Whole Foods Market", *tx2.Payee)
	assert.Equal(t, "Weekly groceries", *tx2.Note)
	assert.Equal(t, int64(12500), tx2.AmountCents)

	tx3 := transactions[2]
	assert.Equal(t, "CHECK #1234", *tx3.Payee)
	assert.Equal(t, "Check 1234", *tx3.Note)
	assert.Equal(t, int64(50000), tx3.AmountCents)
	assert.Nil(t, tx3.CategoryID)
}

func TestParseCreditCardTransactions(t *testing.T) {
	parser := NewParser()
	reader := strings.NewReader(sampleCreditCardOFX)

	transactions, err := parser.ParseFile(context.Background(), reader, importOpts)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	// Generic NAME falls back to MEMO for the payee.
	tx1 := transactions[0]
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", *tx1.Payee)
	assert.Nil(t, tx1.Note)
	assert.Equal(t, int64(4599), tx1.AmountCents)
	assert.Equal(t, "2024-01-10", tx1.Date)

	tx2 := transactions[1]
	assert.Equal(t, "NETFLIX.COM", *tx2.Payee)
	assert.Equal(t, int64(1500), tx2.AmountCents)
}

func TestExtractMerchantName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "remove POS prefix",
			input:    "POS PURCHASE STARBUCKS",
			expected: "STARBUCKS",
		},
		{
			name:     "remove DEBIT CARD prefix",
			input:    "DEBIT CARD PURCHASE WHOLE FOODS",
			expected: "WHOLE FOODS",
		},
		{
			name:     "remove leading date",
			input:    "01/15 CORNER DELI",
			expected: "CORNER DELI",
		},
		{
			name:     "keep clean name",
			input:    "NETFLIX.COM",
			expected: "NETFLIX.COM",
		},
		{
			name:     "trim whitespace",
			input:    "  AMAZON.COM  ",
			expected: "AMAZON.COM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.input),
			}
			result := parser.extractMerchantName(tx)
			assert.Equal(t, tt.expected, result)
		})
	}

	t.Run("payee wins", func(t *testing.T) {
		tx := ofxgo.Transaction{
			Name:  "DEBIT",
			Memo:  "something",
			Payee: &ofxgo.Payee{Name: " Blue Bottle "},
		}
		assert.Equal(t, "Blue Bottle", parser.extractMerchantName(tx))
	})
}

func TestRatToCents(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"-25.50", 2550},
		{"125", 12500},
		{"0.01", 1},
		{"-0.005", 1},
		{"0.004", 0},
		{"1234567.899", 123456790},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, ok := new(big.Rat).SetString(tt.input)
			require.True(t, ok)
			got, err := ratToCents(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	huge, _ := new(big.Rat).SetString("1e30")
	_, err := ratToCents(huge)
	assert.Error(t, err)
}

func TestGetAccounts(t *testing.T) {
	parser := NewParser()

	reader := strings.NewReader(sampleBankOFX)
	accounts, err := parser.GetAccounts(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, accounts)

	reader = strings.NewReader(sampleCreditCardOFX)
	accounts, err = parser.GetAccounts(context.Background(), reader)
	require.NoError(t, err)
	assert.Equal(t, []string{"4111111111111111"}, accounts)
}
