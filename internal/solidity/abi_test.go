package solidity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/devstatus/internal/model"
)

const routerABI = `[
  {"type":"constructor","inputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"setProtocolFeeBps","inputs":[{"name":"bps","type":"uint16"}],"outputs":[],"stateMutability":"nonpayable"},
  {"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
  {"type":"function","name":"quote","inputs":[{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
  {"type":"event","name":"FeeApplied","inputs":[{"name":"amount","type":"uint256","indexed":false}],"anonymous":false},
  {"type":"event","name":"FeeApplied","inputs":[{"name":"amount","type":"uint256","indexed":false},{"name":"bps","type":"uint16","indexed":false}],"anonymous":false},
  {"type":"error","name":"FeeTooHigh","inputs":[]}
]`

func TestDecodeABI(t *testing.T) {
	facts, err := DecodeABI(routerABI)
	require.NoError(t, err)

	assert.Len(t, facts.Entries, 7)
	assert.Equal(t, model.ABIEntry{Type: "constructor", StateMutability: "nonpayable"}, facts.Entries[0])
	assert.Equal(t, []string{"FeeApplied"}, facts.Events)
	assert.Equal(t, []string{"quote", "setProtocolFeeBps", "transfer"}, facts.Functions)

	require.Len(t, facts.Signatures, 3)
	assert.Equal(t, model.FunctionSig{Name: "transfer", Signature: "transfer(address,uint256)", Selector: "0xa9059cbb"}, facts.Signatures[2])
	assert.Equal(t, "quote(uint256)", facts.Signatures[0].Signature)
}

func TestDecodeABI_MutabilityFilter(t *testing.T) {
	facts, err := DecodeABI(`[{"type":"function","name":"legacy","constant":true},{"type":"function","name":"ok","stateMutability":"pure"}]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, facts.Functions)
}

func TestDecodeABI_Malformed(t *testing.T) {
	_, err := DecodeABI(`{"not":"a list"}`)
	assert.Error(t, err)

	empty, err := DecodeABI(`[]`)
	require.NoError(t, err)
	assert.NotNil(t, empty.Entries)
	assert.Empty(t, empty.Functions)
}

func TestDecodeMethods(t *testing.T) {
	m, err := DecodeMethods(`{"transfer(address,uint256)":"a9059cbb"}`)
	require.NoError(t, err)
	assert.Equal(t, "a9059cbb", m["transfer(address,uint256)"])

	_, err = DecodeMethods("not json")
	assert.Error(t, err)
}
