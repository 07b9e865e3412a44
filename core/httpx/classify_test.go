package httpx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string       { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatusCode() int { return int(e) }

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{context.Canceled, "cancelled"},
		{fmt.Errorf("get: %w", context.DeadlineExceeded), "timeout"},
		{fmt.Errorf("catalog: %w", statusErr(503)), "http_5xx"},
		{statusErr(404), "http_4xx"},
		{&net.DNSError{Err: "no such host", Name: "x"}, "dns"},
		{&net.OpError{Op: "dial", Err: errors.New("refused")}, "dial"},
		{errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Classify(tc.err), "%v", tc.err)
	}
}
