package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cloud-bulldozer/globesort-perf/pkg/config"
	"github.com/cloud-bulldozer/globesort-perf/pkg/session"
	"github.com/cloud-bulldozer/globesort-perf/pkg/transport"
	"google.golang.org/grpc/codes"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{&config.ArgumentError{Arg: "server_port", Reason: "bad"}, exitArgument},
		{errors.New("unknown flag: --nope"), exitArgument},
		{&transport.ConnectionError{Err: errors.New("refused")}, exitRun},
		{fmt.Errorf("run: %w", &transport.RPCError{Op: "sort", Code: codes.Internal}), exitRun},
		{&session.VerifyError{Err: errors.New("unsorted")}, exitRun},
		{&session.MeasurementError{Reason: "zero"}, exitRun},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
