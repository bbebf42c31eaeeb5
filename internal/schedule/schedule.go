// Package schedule re-invokes the publish run on a fixed interval. Each
// run executes in its own child process so a crash or hang in one run can
// never leak into the next, and the dedup store is only ever touched by one
// process at a time.
package schedule

import (
	"context"
	"errors"
	"io"
	"log"
	"os/exec"
	"time"
)

// Runner executes one isolated run and reports its exit.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// SubprocessRunner re-executes this binary's "run" command as a child
// process with inherited output streams.
type SubprocessRunner struct {
	Binary string
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
}

// RunOnce starts the child and waits for it. Context cancellation (the
// hard per-run timeout) kills the process; teardown releases any browser
// or network resources the run held.
func (r *SubprocessRunner) RunOnce(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.Binary, r.Args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd.Run()
}

// Loop invokes runner every interval with a hard per-run timeout, forever,
// until ctx is canceled. A failed or timed-out run is logged and the loop
// continues; runs never overlap because each iteration waits for the
// previous process to exit.
func Loop(ctx context.Context, runner Runner, interval, runTimeout time.Duration) {
	log.Printf("Scheduler started - running every %s with a %s timeout", interval, runTimeout)

	for {
		runCtx, cancel := context.WithTimeout(ctx, runTimeout)
		err := runner.RunOnce(runCtx)
		cancel()

		switch {
		case err == nil:
			log.Println("Run completed successfully")
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			log.Printf("Run timed out after %s", runTimeout)
		default:
			log.Printf("Run exited with error: %v", err)
		}

		if ctx.Err() != nil {
			return
		}

		log.Printf("Sleeping for %s until next check...", interval)
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
