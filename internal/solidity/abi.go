package solidity

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/xab-mack/devstatus/internal/model"
)

// callableMutability lists the state mutability tags that count as functions.
var callableMutability = map[string]bool{
	"nonpayable": true,
	"payable":    true,
	"view":       true,
	"pure":       true,
}

type ABIFacts struct {
	Entries    []model.ABIEntry
	Events     []string
	Functions  []string
	Signatures []model.FunctionSig
}

// DecodeABI reads a compiled ABI. Entries keep artifact order; event and
// function names are sorted and deduplicated. Signatures and selectors come
// from go-ethereum's ABI decoder and are left empty when it rejects the
// document even though the entry list decoded.
func DecodeABI(raw string) (ABIFacts, error) {
	var facts ABIFacts
	if err := json.Unmarshal([]byte(raw), &facts.Entries); err != nil {
		return ABIFacts{}, fmt.Errorf("decode abi entries: %w", err)
	}
	if facts.Entries == nil {
		facts.Entries = []model.ABIEntry{}
	}
	var events, functions []string
	for _, e := range facts.Entries {
		switch e.Type {
		case "event":
			events = append(events, e.Name)
		case "function":
			if callableMutability[e.StateMutability] {
				functions = append(functions, e.Name)
			}
		}
	}
	facts.Events = dedupe(sortedCopy(events))
	facts.Functions = dedupe(sortedCopy(functions))

	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return facts, nil
	}
	for _, m := range parsed.Methods {
		if !callableMutability[m.StateMutability] {
			continue
		}
		facts.Signatures = append(facts.Signatures, model.FunctionSig{
			Name:      m.RawName,
			Signature: m.Sig,
			Selector:  hexutil.Encode(m.ID),
		})
	}
	sort.Slice(facts.Signatures, func(i, j int) bool {
		return facts.Signatures[i].Signature < facts.Signatures[j].Signature
	})
	return facts, nil
}

// DecodeMethods reads the `methods` facet: a signature to selector object.
func DecodeMethods(raw string) (map[string]string, error) {
	out := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode methods: %w", err)
	}
	return out, nil
}
