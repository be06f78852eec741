package client

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/AlexZinkM/narwallet/internal/keys"
	"github.com/AlexZinkM/narwallet/internal/model"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// ErrNoResult is returned by View when the contract returned nothing or null
var ErrNoResult = errors.New("no result")

// AccessKeyInfo is the node's view of one access key
type AccessKeyInfo struct {
	Nonce       uint64              `json:"nonce"`
	Permission  AccessKeyPermission `json:"permission"`
	BlockHash   string              `json:"block_hash"`
	BlockHeight uint64              `json:"block_height"`
}

// AccessKeyPermission is either "FullAccess" or a FunctionCall restriction
type AccessKeyPermission struct {
	FullAccess   bool
	FunctionCall *FunctionCallPermission
}

// FunctionCallPermission restricts a key to calls on one receiver
type FunctionCallPermission struct {
	Allowance   *string  `json:"allowance"`
	ReceiverID  string   `json:"receiver_id"`
	MethodNames []string `json:"method_names"`
}

func (p *AccessKeyPermission) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name != "FullAccess" {
			return errors.Errorf("unknown access key permission %q", name)
		}
		*p = AccessKeyPermission{FullAccess: true}
		return nil
	}

	var variant struct {
		FunctionCall *FunctionCallPermission `json:"FunctionCall"`
	}
	if err := json.Unmarshal(data, &variant); err != nil {
		return errors.Wrap(err, "failed to decode access key permission")
	}
	if variant.FunctionCall == nil {
		return errors.Errorf("unknown access key permission %s", data)
	}
	*p = AccessKeyPermission{FunctionCall: variant.FunctionCall}
	return nil
}

// BlockHashBytes decodes the base58 block hash the transaction must reference
func (a *AccessKeyInfo) BlockHashBytes() ([32]byte, error) {
	var out [32]byte
	raw, err := base58.Decode(a.BlockHash)
	if err != nil {
		return out, errors.Wrap(err, "invalid block hash")
	}
	if len(raw) != len(out) {
		return out, errors.Errorf("invalid block hash length %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// AccountState is the result of an account/<id> query
type AccountState struct {
	Amount        string `json:"amount"`
	Locked        string `json:"locked"`
	CodeHash      string `json:"code_hash"`
	StorageUsage  uint64 `json:"storage_usage"`
	StoragePaidAt uint64 `json:"storage_paid_at"`
	BlockHeight   uint64 `json:"block_height"`
	BlockHash     string `json:"block_hash"`
}

// byteArray decodes the JSON array of numbers the node uses for raw bytes
type byteArray []byte

func (b *byteArray) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return errors.Errorf("byte value %d out of range", n)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}

// ViewResult is the raw result of a call/<contract>/<method> query
type ViewResult struct {
	Result      byteArray `json:"result"`
	Logs        []string  `json:"logs"`
	BlockHeight uint64    `json:"block_height"`
	BlockHash   string    `json:"block_hash"`
}

// query runs a path-style query. Legacy nodes report some failures inside
// the result as {"error": "..."}, those become ProtocolErrors as well.
func (c *NearClient) query(ctx context.Context, out interface{}, path, data string) error {
	var raw json.RawMessage
	if err := c.callRead(ctx, &raw, "query", []interface{}{path, data}); err != nil {
		return err
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return &model.ProtocolError{Op: "query", Err: errors.New(cleanReason(envelope.Error))}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &model.ProtocolError{Op: "query", Err: errors.Wrapf(err, "failed to decode %s", queryKind(path))}
	}
	return nil
}

func queryKind(path string) string {
	if i := strings.IndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return path
}

// QueryAccessKey gets the nonce and permission of publicKey on accountID
func (c *NearClient) QueryAccessKey(ctx context.Context, accountID string, publicKey keys.PublicKey) (*AccessKeyInfo, error) {
	var info AccessKeyInfo
	if err := c.query(ctx, &info, "access_key/"+accountID+"/"+publicKey.String(), ""); err != nil {
		return nil, errors.Wrap(err, "failed to query access key")
	}
	return &info, nil
}

// QueryAccount gets the balance and storage state of accountID
func (c *NearClient) QueryAccount(ctx context.Context, accountID string) (*AccountState, error) {
	var state AccountState
	if err := c.query(ctx, &state, "account/"+accountID, ""); err != nil {
		return nil, err
	}
	return &state, nil
}

// ViewRaw calls a view method. params are sent as base58 of their JSON form.
func (c *NearClient) ViewRaw(ctx context.Context, contractID, method string, params interface{}) (*ViewResult, error) {
	var encoded string
	if params != nil {
		js, err := json.Marshal(params)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode view params")
		}
		encoded = base58.Encode(js)
	}

	var res ViewResult
	if err := c.query(ctx, &res, "call/"+contractID+"/"+method, encoded); err != nil {
		return nil, err
	}
	return &res, nil
}

// View calls a view method and decodes its JSON result into out.
// An empty or null result yields ErrNoResult.
func (c *NearClient) View(ctx context.Context, contractID, method string, params, out interface{}) error {
	res, err := c.ViewRaw(ctx, contractID, method, params)
	if err != nil {
		return err
	}

	if !utf8.Valid(res.Result) {
		return &model.ProtocolError{Op: method, Err: errors.New("view result is not valid UTF-8")}
	}
	text := strings.TrimSpace(string(res.Result))
	if text == "" || text == "null" {
		return ErrNoResult
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &model.ProtocolError{Op: method, Err: errors.Wrap(err, "failed to decode view result")}
	}
	return nil
}
