package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AlexZinkM/narwallet/internal/metrics"
	"github.com/AlexZinkM/narwallet/internal/model"
	"github.com/AlexZinkM/narwallet/internal/tx"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// FinalExecutionOutcome is the broadcast_tx_commit result
type FinalExecutionOutcome struct {
	Status             ExecutionStatus          `json:"status"`
	TransactionOutcome ExecutionOutcomeWithID   `json:"transaction_outcome"`
	ReceiptsOutcome    []ExecutionOutcomeWithID `json:"receipts_outcome"`
}

// ExecutionOutcomeWithID is the outcome of the transaction or of one receipt
type ExecutionOutcomeWithID struct {
	ID        string           `json:"id"`
	BlockHash string           `json:"block_hash"`
	Outcome   ExecutionOutcome `json:"outcome"`
}

// ExecutionOutcome holds the logs and status of one execution step
type ExecutionOutcome struct {
	Logs        []string        `json:"logs"`
	ReceiptIDs  []string        `json:"receipt_ids"`
	GasBurnt    uint64          `json:"gas_burnt"`
	TokensBurnt string          `json:"tokens_burnt"`
	ExecutorID  string          `json:"executor_id"`
	Status      ExecutionStatus `json:"status"`
}

// ExecutionStatus is one of SuccessValue, SuccessReceiptId, Failure or a
// bare state name such as "Unknown"
type ExecutionStatus struct {
	SuccessValue     *string
	SuccessReceiptID *string
	Failure          json.RawMessage
	State            string
}

func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	var state string
	if err := json.Unmarshal(data, &state); err == nil {
		*s = ExecutionStatus{State: state}
		return nil
	}

	var v struct {
		SuccessValue     *string         `json:"SuccessValue"`
		SuccessReceiptID *string         `json:"SuccessReceiptId"`
		Failure          json.RawMessage `json:"Failure"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "failed to decode execution status")
	}
	*s = ExecutionStatus{
		SuccessValue:     v.SuccessValue,
		SuccessReceiptID: v.SuccessReceiptID,
		Failure:          v.Failure,
	}
	if s.IsFailure() {
		return nil
	}
	if s.SuccessValue == nil && s.SuccessReceiptID == nil {
		return errors.Errorf("unknown execution status %s", data)
	}
	return nil
}

// IsFailure reports whether the status carries a structured failure
func (s *ExecutionStatus) IsFailure() bool {
	return len(s.Failure) > 0 && !bytes.Equal(s.Failure, []byte("null"))
}

// Submit broadcasts a signed transaction and waits for its final outcome.
// It is never retried: resubmitting needs a new nonce.
func (c *NearClient) Submit(ctx context.Context, signed *tx.SignedTransaction) (*FinalExecutionOutcome, error) {
	encoded, err := signed.Base64()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var outcome FinalExecutionOutcome
	if err := c.call(ctx, &outcome, "broadcast_tx_commit", []interface{}{encoded}); err != nil {
		metrics.TransactionsSubmitted.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}

	log.Info().
		Str("signer", signed.Transaction.SignerID).
		Str("receiver", signed.Transaction.ReceiverID).
		Str("tx_hash", outcome.TransactionOutcome.ID).
		Dur("took", time.Since(start)).
		Msg("Transaction committed")
	return &outcome, nil
}

// InterpretOutcome turns a final outcome into the method's return text or a
// LedgerExecutionError. A success value of "false" is a contract-level
// rejection and is explained from the receipt logs and failures.
func InterpretOutcome(outcome *FinalExecutionOutcome) (string, error) {
	status := outcome.Status

	if status.IsFailure() {
		metrics.TransactionsSubmitted.WithLabelValues(metrics.ResultFailed).Inc()
		return "", model.NewLedgerExecutionError(FormatFailure(status.Failure))
	}

	if status.SuccessValue != nil {
		decoded, err := base64.StdEncoding.DecodeString(*status.SuccessValue)
		if err != nil {
			return "", &model.ProtocolError{Op: "broadcast_tx_commit", Err: errors.Wrap(err, "invalid success value")}
		}
		if !utf8.Valid(decoded) {
			return "", &model.ProtocolError{Op: "broadcast_tx_commit", Err: errors.New("success value is not valid UTF-8")}
		}
		text := string(decoded)
		if text == "false" {
			metrics.TransactionsSubmitted.WithLabelValues(metrics.ResultFailed).Inc()
			return "", model.NewLedgerExecutionError(receiptDetails(outcome)...)
		}
		metrics.TransactionsSubmitted.WithLabelValues(metrics.ResultOK).Inc()
		return text, nil
	}

	if status.SuccessReceiptID != nil {
		metrics.TransactionsSubmitted.WithLabelValues(metrics.ResultOK).Inc()
		return "", nil
	}

	return "", &model.ProtocolError{
		Op:  "broadcast_tx_commit",
		Err: errors.Errorf("transaction status %q is not final", status.State),
	}
}

// receiptDetails collects every log line and every receipt failure in receipt order
func receiptDetails(outcome *FinalExecutionOutcome) []string {
	var lines []string
	for _, ro := range outcome.ReceiptsOutcome {
		lines = append(lines, ro.Outcome.Logs...)
		if ro.Outcome.Status.IsFailure() {
			lines = append(lines, FormatFailure(ro.Outcome.Status.Failure))
		}
	}
	return lines
}

// FailureKind tags a node of a decoded failure tree
type FailureKind int

const (
	FailureScalar  FailureKind = iota // string, number, bool or null
	FailureVariant                    // {"Name": payload}
	FailureStruct                     // object with several fields
	FailureList                       // array
)

// FailureNode is one node of a remote failure such as
// {"ActionError":{"index":0,"kind":{"FunctionCallError":{...}}}}.
// Variant nodes have Name and at most one child, struct fields are
// variant nodes named after the field.
type FailureNode struct {
	Kind     FailureKind
	Name     string
	Value    string
	Children []*FailureNode
}

// ParseFailure decodes raw failure JSON into a FailureNode tree
func ParseFailure(raw json.RawMessage) (*FailureNode, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "failed to decode failure")
	}
	return buildFailureNode(v), nil
}

func buildFailureNode(v interface{}) *FailureNode {
	switch t := v.(type) {
	case map[string]interface{}:
		names := make([]string, 0, len(t))
		for k := range t {
			names = append(names, k)
		}
		sort.Strings(names)

		if len(names) == 1 {
			return variantNode(names[0], t[names[0]])
		}
		node := &FailureNode{Kind: FailureStruct}
		for _, k := range names {
			node.Children = append(node.Children, variantNode(k, t[k]))
		}
		return node
	case []interface{}:
		node := &FailureNode{Kind: FailureList}
		for _, item := range t {
			node.Children = append(node.Children, buildFailureNode(item))
		}
		return node
	case nil:
		return &FailureNode{Kind: FailureScalar, Value: "null"}
	case string:
		return &FailureNode{Kind: FailureScalar, Value: t}
	case json.Number:
		return &FailureNode{Kind: FailureScalar, Value: t.String()}
	case bool:
		if t {
			return &FailureNode{Kind: FailureScalar, Value: "true"}
		}
		return &FailureNode{Kind: FailureScalar, Value: "false"}
	}
	return &FailureNode{Kind: FailureScalar}
}

func variantNode(name string, payload interface{}) *FailureNode {
	node := &FailureNode{Kind: FailureVariant, Name: name}
	switch p := payload.(type) {
	case map[string]interface{}:
		if len(p) > 0 {
			node.Children = []*FailureNode{buildFailureNode(p)}
		}
	default:
		node.Children = []*FailureNode{buildFailureNode(p)}
	}
	return node
}

// String renders the tree on one line, e.g.
// "ActionError: (index: 0, kind: FunctionCallError: ExecutionError: boom)"
func (n *FailureNode) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *FailureNode) write(sb *strings.Builder) {
	switch n.Kind {
	case FailureScalar:
		sb.WriteString(n.Value)
	case FailureVariant:
		sb.WriteString(n.Name)
		if len(n.Children) > 0 {
			sb.WriteString(": ")
			n.Children[0].write(sb)
		}
	case FailureStruct, FailureList:
		open, closing := "(", ")"
		if n.Kind == FailureList {
			open, closing = "[", "]"
		}
		sb.WriteString(open)
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			c.write(sb)
		}
		sb.WriteString(closing)
	}
}

// FormatFailure flattens raw failure JSON into one readable line
func FormatFailure(raw json.RawMessage) string {
	node, err := ParseFailure(raw)
	if err != nil {
		return "internal error parsing result outcome: " + string(raw)
	}
	return node.String()
}
