// Package sntp corrects a monotonic.Clock from a single NTP query.
package sntp

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/go-i2p/go-obfs2/lib/util/time/monotonic"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

const (
	maxRTT            = 2 * time.Second
	maxClockOffset    = 10 * time.Minute
	maxRootDispersion = 1 * time.Second
	maxRootDelay      = 1 * time.Second

	DefaultTimeout = 5 * time.Second
)

// NTPClient abstracts the query so tests can supply canned responses.
type NTPClient interface {
	QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error)
}

// DefaultNTPClient queries real servers through beevik/ntp.
type DefaultNTPClient struct{}

// QueryWithOptions calls ntp.QueryWithOptions.
func (DefaultNTPClient) QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error) {
	return ntp.QueryWithOptions(host, options)
}

// Sync queries server once and applies the measured offset to clock. The
// clock is left untouched when the query fails or the response does not
// validate.
func Sync(ctx context.Context, client NTPClient, clock *monotonic.Clock, server string) error {
	if client == nil {
		client = DefaultNTPClient{}
	}
	timeout := DefaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return oops.Wrapf(context.DeadlineExceeded, "ntp sync with %s", server)
	}

	response, err := client.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return oops.Wrapf(err, "ntp query to %s failed", server)
	}
	if err := validateResponse(response); err != nil {
		return oops.Wrapf(err, "ntp response from %s rejected", server)
	}

	clock.SetOffset(response.ClockOffset)
	log.WithFields(logger.Fields{
		"server": server,
		"offset": response.ClockOffset.String(),
		"rtt":    response.RTT.String(),
	}).Debug("clock offset updated from NTP")
	return nil
}

func validateResponse(response *ntp.Response) error {
	switch {
	case response.Leap == ntp.LeapNotInSync:
		return oops.Errorf("server clock not synchronized")
	case response.Stratum == 0 || response.Stratum > 15:
		return oops.Errorf("stratum %d out of range", response.Stratum)
	case response.RTT < 0 || response.RTT > maxRTT:
		return oops.Errorf("round-trip delay %v out of bounds", response.RTT)
	case absDuration(response.ClockOffset) > maxClockOffset:
		return oops.Errorf("clock offset %v out of bounds", response.ClockOffset)
	case response.Time.IsZero():
		return oops.Errorf("zero time")
	case response.RootDispersion > maxRootDispersion:
		return oops.Errorf("root dispersion %v too high", response.RootDispersion)
	case response.RootDelay > maxRootDelay:
		return oops.Errorf("root delay %v too high", response.RootDelay)
	}
	return nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
