package tx

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ActionKind is the borsh enum tag of an action
type ActionKind uint8

const (
	ActionCreateAccount ActionKind = iota
	ActionDeployContract
	ActionFunctionCall
	ActionTransfer
	ActionStake
	ActionAddKey
	ActionDeleteKey
	ActionDeleteAccount
)

func (k ActionKind) String() string {
	switch k {
	case ActionCreateAccount:
		return "CreateAccount"
	case ActionDeployContract:
		return "DeployContract"
	case ActionFunctionCall:
		return "FunctionCall"
	case ActionTransfer:
		return "Transfer"
	case ActionStake:
		return "Stake"
	case ActionAddKey:
		return "AddKey"
	case ActionDeleteKey:
		return "DeleteKey"
	case ActionDeleteAccount:
		return "DeleteAccount"
	}
	return fmt.Sprintf("Action(%d)", uint8(k))
}

// Action is one step of a transaction. The variant payload is encoded after the tag.
type Action interface {
	Kind() ActionKind
	MarshalWithEncoder(enc *bin.Encoder) error
}

// Transfer moves Deposit yocto to the receiver
type Transfer struct {
	Deposit uint256.Int
}

// FunctionCall calls MethodName on the receiver contract
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    uint256.Int
}

// DeleteAccount deletes the signer account, sending what's left to BeneficiaryID
type DeleteAccount struct {
	BeneficiaryID string
}

// NewTransfer creates a Transfer action
func NewTransfer(deposit *uint256.Int) *Transfer {
	return &Transfer{Deposit: *deposit}
}

// NewFunctionCall creates a FunctionCall action
func NewFunctionCall(method string, args []byte, gas uint64, deposit *uint256.Int) *FunctionCall {
	return &FunctionCall{MethodName: method, Args: args, Gas: gas, Deposit: *deposit}
}

// NewDeleteAccount creates a DeleteAccount action
func NewDeleteAccount(beneficiaryID string) *DeleteAccount {
	return &DeleteAccount{BeneficiaryID: beneficiaryID}
}

func (a *Transfer) Kind() ActionKind      { return ActionTransfer }
func (a *FunctionCall) Kind() ActionKind  { return ActionFunctionCall }
func (a *DeleteAccount) Kind() ActionKind { return ActionDeleteAccount }

func (a *Transfer) MarshalWithEncoder(enc *bin.Encoder) error {
	return writeU128(enc, &a.Deposit)
}

func (a *Transfer) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	a.Deposit, err = readU128(dec)
	return err
}

func (a *FunctionCall) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := writeString(enc, a.MethodName); err != nil {
		return err
	}
	if err := writeBytes(enc, a.Args); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.Gas, binary.LittleEndian); err != nil {
		return err
	}
	return writeU128(enc, &a.Deposit)
}

func (a *FunctionCall) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if a.MethodName, err = readString(dec); err != nil {
		return err
	}
	if a.Args, err = readBytes(dec); err != nil {
		return err
	}
	if a.Gas, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	a.Deposit, err = readU128(dec)
	return err
}

func (a *DeleteAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	return writeString(enc, a.BeneficiaryID)
}

func (a *DeleteAccount) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	a.BeneficiaryID, err = readString(dec)
	return err
}

// EncodeAction returns the borsh bytes of a single action (tag + payload)
func EncodeAction(a Action) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeAction(bin.NewBorshEncoder(&buf), a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeAction parses the output of EncodeAction
func DecodeAction(data []byte) (Action, error) {
	dec := bin.NewBorshDecoder(data)
	a, err := decodeAction(dec)
	if err != nil {
		return nil, err
	}
	if dec.Remaining() != 0 {
		return nil, errors.Errorf("%d trailing bytes after action", dec.Remaining())
	}
	return a, nil
}

func encodeAction(enc *bin.Encoder, a Action) error {
	switch a.(type) {
	case *Transfer, *FunctionCall, *DeleteAccount:
	default:
		return errors.Errorf("unsupported action %s", a.Kind())
	}
	if err := enc.WriteUint8(uint8(a.Kind())); err != nil {
		return err
	}
	return a.MarshalWithEncoder(enc)
}

func decodeAction(dec *bin.Decoder) (Action, error) {
	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read action tag")
	}

	switch ActionKind(tag) {
	case ActionTransfer:
		a := new(Transfer)
		return a, a.UnmarshalWithDecoder(dec)
	case ActionFunctionCall:
		a := new(FunctionCall)
		return a, a.UnmarshalWithDecoder(dec)
	case ActionDeleteAccount:
		a := new(DeleteAccount)
		return a, a.UnmarshalWithDecoder(dec)
	}
	return nil, errors.Errorf("unsupported action %s", ActionKind(tag))
}
