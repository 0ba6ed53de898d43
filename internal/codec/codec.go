// Package codec decodes raw daemon block and transaction payloads into
// structured ingestion records. All functions are pure and deterministic;
// malformed input yields a *DecodeError, never a panic.
package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/ringscope/ringscope-backend/internal/model"
	"github.com/ringscope/ringscope-backend/pkg/safe"
)

// DecodeError reports a malformed or version-unrecognized payload. Callers
// treat it as retryable for the affected transaction only, never as fatal
// for the whole block.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErrf(err error, format string, args ...any) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...), Err: err}
}

type rawTx struct {
	Version        uint64            `json:"version"`
	UnlockTime     uint64            `json:"unlock_time"`
	Vin            []json.RawMessage `json:"vin"`
	Vout           []json.RawMessage `json:"vout"`
	Extra          json.RawMessage   `json:"extra"`
	RctSignatures  json.RawMessage   `json:"rct_signatures"`
	RctsigPrunable json.RawMessage   `json:"rctsig_prunable"`
}

type keyInput struct {
	Key *struct {
		Amount     json.Number `json:"amount"`
		KeyOffsets []uint64    `json:"key_offsets"`
		KeyImage   string      `json:"k_image"`
	} `json:"key"`
	Gen *struct {
		Height uint64 `json:"height"`
	} `json:"gen"`
}

type keyOutput struct {
	Amount json.Number `json:"amount"`
	Target struct {
		Key       string `json:"key"`
		TaggedKey *struct {
			Key     string `json:"key"`
			ViewTag string `json:"view_tag"`
		} `json:"tagged_key"`
	} `json:"target"`
}

type rctSignatures struct {
	Type   int32           `json:"type"`
	TxnFee json.RawMessage `json:"txnFee"`
	OutPk  []string        `json:"outPk"`
}

// BlockBody is the decoded body of a get_block JSON payload: the embedded
// miner transaction plus the ordered hashes of the regular transactions.
type BlockBody struct {
	MinerTx  json.RawMessage
	TxHashes []string
}

// DecodeBlockBody extracts the miner transaction and the ordered tx hash
// list out of a raw block JSON payload.
func DecodeBlockBody(raw []byte) (*BlockBody, error) {
	var body struct {
		MinerTx  json.RawMessage `json:"miner_tx"`
		TxHashes []string        `json:"tx_hashes"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, decodeErrf(err, "block body")
	}

	hashes := make([]string, 0, len(body.TxHashes))
	for _, h := range body.TxHashes {
		if h != "" {
			hashes = append(hashes, h)
		}
	}
	return &BlockBody{MinerTx: body.MinerTx, TxHashes: hashes}, nil
}

// DecodeTransaction maps one raw transaction JSON payload to a decoded
// record. hashHex is the authoritative hash when the payload itself
// carries none (the daemon omits it for transactions embedded in blocks).
func DecodeTransaction(hashHex string, raw []byte) (model.DecodedTx, error) {
	var out model.DecodedTx

	var tx rawTx
	if err := json.Unmarshal(raw, &tx); err != nil {
		return out, decodeErrf(err, "transaction json")
	}
	if tx.Version == 0 || tx.Version > math.MaxInt32 {
		return out, decodeErrf(nil, "unrecognized transaction version %d", tx.Version)
	}

	var envelope struct {
		TxHash   string          `json:"tx_hash"`
		Hash     string          `json:"hash"`
		Size     json.RawMessage `json:"size"`
		BlobSize json.RawMessage `json:"blob_size"`
		Weight   json.RawMessage `json:"weight"`
	}
	// The envelope is optional; failures here never fail the decode.
	_ = json.Unmarshal(raw, &envelope)

	if envelope.TxHash != "" {
		hashHex = envelope.TxHash
	} else if envelope.Hash != "" {
		hashHex = envelope.Hash
	}
	if hashHex == "" {
		return out, decodeErrf(nil, "transaction hash missing")
	}
	hash, err := hex.DecodeString(hashHex)
	if err != nil {
		return out, decodeErrf(err, "transaction hash %q", hashHex)
	}

	size := rawNumber(envelope.Size)
	if size == nil {
		size = rawNumber(envelope.BlobSize)
	}
	if size == nil {
		size = rawNumber(envelope.Weight)
	}
	sizeBytes := int64(len(raw))
	if size != nil {
		sizeBytes = *size
	}

	var rct rctSignatures
	if len(tx.RctSignatures) > 0 {
		if err := json.Unmarshal(tx.RctSignatures, &rct); err != nil {
			return out, decodeErrf(err, "rct signatures")
		}
	}

	inputs, err := decodeInputs(tx.Vin)
	if err != nil {
		return out, err
	}
	outputs, err := decodeOutputs(tx.Vout, rct.OutPk)
	if err != nil {
		return out, err
	}

	proofType, proofBytes := proofInfo(rct.Type, tx.RctsigPrunable)

	extraJSON, err := extraMetadata(tx.Extra)
	if err != nil {
		return out, err
	}

	out = model.DecodedTx{
		Tx: model.Transaction{
			Hash:       hash,
			Fee:        rawNumber(rct.TxnFee),
			SizeBytes:  safe.Int32(sizeBytes),
			Version:    int32(tx.Version),
			UnlockTime: safe.Int64(tx.UnlockTime),
			Extra:      extraJSON,
			RctType:    rct.Type,
			ProofType:  proofType,
			ProofBytes: int32(proofBytes),
			NumInputs:  int32(len(inputs)),
			NumOutputs: int32(len(outputs)),
		},
		Inputs:  inputs,
		Outputs: outputs,
	}
	return out, nil
}

func decodeInputs(vin []json.RawMessage) ([]model.TxInput, error) {
	inputs := make([]model.TxInput, 0, len(vin))
	for i, raw := range vin {
		var in keyInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, decodeErrf(err, "input %d", i)
		}

		// Coinbase inputs carry no key image and no ring.
		if in.Gen != nil {
			inputs = append(inputs, model.TxInput{Idx: int32(i)})
			continue
		}
		if in.Key == nil {
			return nil, decodeErrf(nil, "input %d has neither key nor gen", i)
		}

		keyImage, err := hex.DecodeString(in.Key.KeyImage)
		if err != nil {
			return nil, decodeErrf(err, "input %d key image", i)
		}

		ring := make([]model.RingMember, len(in.Key.KeyOffsets))
		for j, abs := range AbsoluteOffsets(in.Key.KeyOffsets) {
			ring[j] = model.RingMember{RingIndex: int32(j), GlobalIndex: safe.Int64(abs)}
		}

		inputs = append(inputs, model.TxInput{
			Idx:      int32(i),
			KeyImage: keyImage,
			RingSize: int32(len(ring)),
			Ring:     ring,
		})
	}
	return inputs, nil
}

func decodeOutputs(vout []json.RawMessage, outPk []string) ([]model.TxOutput, error) {
	outputs := make([]model.TxOutput, 0, len(vout))
	for i, raw := range vout {
		var out keyOutput
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, decodeErrf(err, "output %d", i)
		}

		keyHex := out.Target.Key
		if out.Target.TaggedKey != nil {
			keyHex = out.Target.TaggedKey.Key
		}
		stealth, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, decodeErrf(err, "output %d stealth key", i)
		}

		var commitment []byte
		if i < len(outPk) {
			commitment, err = hex.DecodeString(outPk[i])
			if err != nil {
				return nil, decodeErrf(err, "output %d commitment", i)
			}
		}

		var amount *int64
		if v, parseErr := out.Amount.Int64(); parseErr == nil && v > 0 {
			amount = &v
		}

		outputs = append(outputs, model.TxOutput{
			IdxInTx:    int32(i),
			Commitment: commitment,
			StealthKey: stealth,
			Amount:     amount,
		})
	}
	return outputs, nil
}

// AbsoluteOffsets converts the wire encoding of ring references (deltas
// against the previous member) to absolute chain-global output indices.
func AbsoluteOffsets(deltas []uint64) []uint64 {
	abs := make([]uint64, len(deltas))
	var sum uint64
	for i, d := range deltas {
		sum += d
		abs[i] = sum
	}
	return abs
}

// proofInfo derives the proof-type discriminator and the byte-size
// contribution of the range proof from the prunable signature data.
func proofInfo(rctType int32, prunable json.RawMessage) (string, int) {
	if len(prunable) == 0 || string(prunable) == "null" {
		return "", 0
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(prunable, &fields); err != nil {
		return "", 0
	}
	for _, key := range []string{"bpp", "bp_plus", "bp"} {
		if v, ok := fields[key]; ok && string(v) != "null" {
			return "CLSAG", len(v)
		}
	}
	if rctType > 0 {
		return "Borromean", 0
	}
	return "", 0
}

// extraMetadata normalizes the tx_extra field to a JSON object embedding
// the raw hex plus the parsed tag summary.
func extraMetadata(extra json.RawMessage) ([]byte, error) {
	hexStr, err := extraHex(extra)
	if err != nil {
		return nil, err
	}
	tags, err := ParseExtra(hexStr)
	if err != nil {
		return nil, err
	}

	doc := struct {
		Extra string     `json:"extra"`
		Tags  []ExtraTag `json:"tags,omitempty"`
	}{Extra: hexStr, Tags: tags}

	buf, err := json.Marshal(doc)
	if err != nil {
		return nil, decodeErrf(err, "extra metadata")
	}
	return buf, nil
}

// extraHex accepts the two daemon encodings of tx_extra, a hex string or
// an array of byte values, and returns the hex form.
func extraHex(extra json.RawMessage) (string, error) {
	if len(extra) == 0 || string(extra) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(extra, &s); err == nil {
		return s, nil
	}
	var bytes []byte
	if err := json.Unmarshal(extra, &bytes); err != nil {
		return "", decodeErrf(err, "extra field")
	}
	return hex.EncodeToString(bytes), nil
}

// rawNumber reads a field the daemon serializes either as a JSON number
// or as a decimal string.
func rawNumber(raw json.RawMessage) *int64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err == nil {
		return &v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if parsed, parseErr := strconv.ParseInt(s, 10, 64); parseErr == nil {
			return &parsed
		}
	}
	return nil
}
