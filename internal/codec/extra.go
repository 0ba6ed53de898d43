package codec

import (
	"encoding/hex"
)

// Tag discriminators of the tx_extra field.
const (
	extraTagPadding       = 0x00
	extraTagPubKey        = 0x01
	extraTagNonce         = 0x02
	extraTagAddlPubKeys   = 0x04
	stealthPubKeyByteSize = 32
)

// ExtraTag is one parsed key/value entry of the free-form tx_extra field.
type ExtraTag struct {
	Kind string `json:"kind"`
	// PubKey holds the hex key for pubkey tags.
	PubKey string `json:"pub_key,omitempty"`
	// Nonce holds the raw payload of nonce tags, hex encoded.
	Nonce string `json:"nonce,omitempty"`
	// Count is the pubkey count for additional-pubkey tags.
	Count int `json:"count,omitempty"`
	// Tag and Size describe entries with an unknown discriminator.
	Tag  uint8 `json:"tag,omitempty"`
	Size int   `json:"size,omitempty"`
}

// ParseExtra parses the hex-encoded tx_extra blob into its tag entries.
// Truncated payloads end the scan without error; the field is free-form
// and wallets routinely emit partial data.
func ParseExtra(hexStr string) ([]ExtraTag, error) {
	if hexStr == "" {
		return nil, nil
	}
	data, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, decodeErrf(err, "tx_extra hex")
	}

	var tags []ExtraTag
	i := 0
	for i < len(data) {
		tag := data[i]
		i++
		switch tag {
		case extraTagPadding:
			// No length byte; padding runs to the end or next tag.
		case extraTagPubKey:
			if i+stealthPubKeyByteSize > len(data) {
				return tags, nil
			}
			tags = append(tags, ExtraTag{
				Kind:   "pub_key",
				PubKey: hex.EncodeToString(data[i : i+stealthPubKeyByteSize]),
			})
			i += stealthPubKeyByteSize
		case extraTagNonce:
			if i >= len(data) {
				return tags, nil
			}
			n := int(data[i])
			i++
			if i+n > len(data) {
				return tags, nil
			}
			tags = append(tags, ExtraTag{
				Kind:  "nonce",
				Nonce: hex.EncodeToString(data[i : i+n]),
			})
			i += n
		case extraTagAddlPubKeys:
			if i >= len(data) {
				return tags, nil
			}
			n := int(data[i])
			i++
			if i+n > len(data) {
				return tags, nil
			}
			tags = append(tags, ExtraTag{
				Kind:  "additional_pub_keys",
				Count: n / stealthPubKeyByteSize,
			})
			i += n
		default:
			if i >= len(data) {
				tags = append(tags, ExtraTag{Kind: "unknown", Tag: tag})
				return tags, nil
			}
			n := int(data[i])
			i++
			if i+n > len(data) {
				return tags, nil
			}
			tags = append(tags, ExtraTag{Kind: "unknown", Tag: tag, Size: n})
			i += n
		}
	}
	return tags, nil
}
