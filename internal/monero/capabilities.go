package monero

import (
	"context"
	"errors"
)

// Capabilities records which optional daemon endpoints are usable.
// Probed once at startup so the pipeline never pays a failed probe
// per batch.
type Capabilities struct {
	HeadersRange bool
}

// ProbeCapabilities issues one cheap call per optional endpoint and
// records whether it succeeded. A daemon error marks the capability
// absent; transport errors propagate so startup fails loudly on an
// unreachable daemon.
func (c *Client) ProbeCapabilities(ctx context.Context) (Capabilities, error) {
	caps := Capabilities{}

	_, err := c.GetBlockHeadersRange(ctx, 0, 0)
	switch {
	case err == nil:
		caps.HeadersRange = true
	case isDaemonRejection(err):
		c.logger.Debugf("daemon lacks get_block_headers_range, falling back to single header calls")
	default:
		return Capabilities{}, err
	}

	return caps, nil
}

func isDaemonRejection(err error) bool {
	var statusErr *RPCStatusError
	return errors.As(err, &statusErr)
}
