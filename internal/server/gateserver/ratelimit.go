package gateserver

import (
	"net"

	"golang.org/x/time/rate"

	"github.com/tehnewb/admingate/pkg/cmap"
)

// ipLimiter bounds connection attempts per remote address using a
// token bucket per IP. A zero rate admits everything.
type ipLimiter struct {
	perSecond float64
	burst     int
	buckets   *cmap.Map[*rate.Limiter]
}

func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	return &ipLimiter{
		perSecond: perSecond,
		burst:     burst,
		buckets:   cmap.New[*rate.Limiter](),
	}
}

func (l *ipLimiter) allow(addr net.Addr) bool {
	if l.perSecond <= 0 {
		return true
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}
	lim, loaded := l.buckets.Get(host)
	if !loaded {
		lim, _ = l.buckets.GetOrSet(host, rate.NewLimiter(rate.Limit(l.perSecond), l.burst))
	}
	return lim.Allow()
}
