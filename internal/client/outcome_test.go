package client

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/AlexZinkM/narwallet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeOutcome(t *testing.T, js string) *FinalExecutionOutcome {
	t.Helper()
	var o FinalExecutionOutcome
	require.NoError(t, json.Unmarshal([]byte(js), &o))
	return &o
}

func TestInterpretFailure(t *testing.T) {
	o := decodeOutcome(t, `{"status":{"Failure":{"ActionError":{"kind":{"FunctionCallError":{"ExecutionError":"boom"}}}}},
		"transaction_outcome":{"id":"t","outcome":{"logs":[],"status":"Unknown"}},"receipts_outcome":[]}`)

	_, err := InterpretOutcome(o)
	require.Error(t, err)
	assert.True(t, model.IsLedgerExecutionError(err))
	assert.Contains(t, err.Error(), "FunctionCallError")
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, "Transaction failed.\nActionError: kind: FunctionCallError: ExecutionError: boom", err.Error())
}

func TestInterpretFalseAggregatesReceipts(t *testing.T) {
	o := decodeOutcome(t, `{"status":{"SuccessValue":"`+base64.StdEncoding.EncodeToString([]byte("false"))+`"},
		"transaction_outcome":{"id":"t","outcome":{"logs":[],"status":{"SuccessReceiptId":"r1"}}},
		"receipts_outcome":[
			{"id":"r1","outcome":{"logs":["insufficient balance"],"status":{"SuccessValue":""}}},
			{"id":"r2","outcome":{"logs":["refund"],"status":{"Failure":{"ActionError":{"index":0,"kind":{"AccountDoesNotExist":{"account_id":"x.near"}}}}}}}
		]}`)

	_, err := InterpretOutcome(o)
	require.Error(t, err)

	var execErr *model.LedgerExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, []string{
		"Transaction failed.",
		"insufficient balance",
		"refund",
		"ActionError: (index: 0, kind: AccountDoesNotExist: account_id: x.near)",
	}, execErr.Lines)
}

func TestInterpretSuccessValue(t *testing.T) {
	value := base64.StdEncoding.EncodeToString([]byte(`{"ok":true}`))
	o := decodeOutcome(t, `{"status":{"SuccessValue":"`+value+`"},"receipts_outcome":[]}`)

	text, err := InterpretOutcome(o)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	// "true" is a genuine result, only "false" is a rejection
	o = decodeOutcome(t, `{"status":{"SuccessValue":"`+base64.StdEncoding.EncodeToString([]byte("true"))+`"}}`)
	text, err = InterpretOutcome(o)
	require.NoError(t, err)
	assert.Equal(t, "true", text)
}

func TestInterpretMalformed(t *testing.T) {
	o := decodeOutcome(t, `{"status":{"SuccessValue":"***"}}`)
	_, err := InterpretOutcome(o)
	assert.True(t, model.IsProtocolError(err))

	o = decodeOutcome(t, `{"status":"Started"}`)
	_, err = InterpretOutcome(o)
	assert.True(t, model.IsProtocolError(err))

	var bad FinalExecutionOutcome
	assert.Error(t, json.Unmarshal([]byte(`{"status":{"Whatever":1}}`), &bad))
}

func TestFormatFailure(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{
			raw:  `{"InvalidTxError":{"InvalidNonce":{"ak_nonce":5,"tx_nonce":5}}}`,
			want: "InvalidTxError: InvalidNonce: (ak_nonce: 5, tx_nonce: 5)",
		},
		{
			raw:  `{"InvalidTxError":"Expired"}`,
			want: "InvalidTxError: Expired",
		},
		{
			raw:  `{"ActionError":{"index":null,"kind":{"DeleteKeyDoesNotExist":{}}}}`,
			want: "ActionError: (index: null, kind: DeleteKeyDoesNotExist)",
		},
		{
			raw:  `{"Err":{"codes":[1,2],"fatal":true}}`,
			want: "Err: (codes: [1, 2], fatal: true)",
		},
		{
			raw:  `"plain"`,
			want: "plain",
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatFailure(json.RawMessage(tc.raw)), tc.raw)
	}

	assert.Contains(t, FormatFailure(json.RawMessage(`{`)), "internal error parsing result outcome")
}

func TestParseFailureTree(t *testing.T) {
	node, err := ParseFailure(json.RawMessage(`{"ActionError":{"index":1,"kind":{"FunctionCallError":{"ExecutionError":"boom"}}}}`))
	require.NoError(t, err)

	assert.Equal(t, FailureVariant, node.Kind)
	assert.Equal(t, "ActionError", node.Name)
	require.Len(t, node.Children, 1)

	fields := node.Children[0]
	assert.Equal(t, FailureStruct, fields.Kind)
	require.Len(t, fields.Children, 2)
	assert.Equal(t, "index", fields.Children[0].Name)
	assert.Equal(t, "1", fields.Children[0].Children[0].Value)
	assert.Equal(t, "kind", fields.Children[1].Name)
}
