// Package testenv runs HTTP scenario suites against a gateway and manages the
// docker compose stack the integration tests depend on.
package testenv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"testing"
	"time"
)

// ComposeTestMainOptions controls the compose lifecycle around m.Run.
type ComposeTestMainOptions struct {
	ComposeFile string

	UpArgs   []string
	DownArgs []string

	PreDownBeforeUp    bool
	SkipDownAfterTests bool

	FailIfComposeMissing bool

	// WaitForReady runs after the stack is up; a failure aborts the run.
	WaitForReady func(ctx context.Context) error
	ReadyTimeout time.Duration
}

// RunComposeTestMain starts the compose stack, runs the tests and stops the
// stack again. Without docker or podman the tests run against whatever the
// environment provides, unless FailIfComposeMissing is set.
func RunComposeTestMain(m *testing.M, options ComposeTestMainOptions) int {
	opts := normalizeComposeOptions(options)

	engine, baseArgs, err := FindCompose()
	if err != nil {
		fmt.Println("compose engine not found:", err)
		if opts.FailIfComposeMissing {
			return 1
		}
		return m.Run()
	}

	run := func(args ...string) error {
		cmdArgs := append([]string{}, baseArgs...)
		cmdArgs = append(cmdArgs, "-f", opts.ComposeFile)
		cmdArgs = append(cmdArgs, args...)
		return RunCompose(context.Background(), engine, cmdArgs...)
	}
	down := func() {
		if opts.SkipDownAfterTests {
			return
		}
		fmt.Println("Stopping Docker Compose...")
		if err := run(opts.DownArgs...); err != nil {
			fmt.Printf("Failed to stop Docker Compose: %v\n", err)
		}
	}

	if opts.PreDownBeforeUp {
		_ = run(opts.DownArgs...)
	}

	fmt.Println("Starting Docker Compose...")
	if err := run(opts.UpArgs...); err != nil {
		fmt.Printf("Failed to start Docker Compose: %v\n", err)
		return 1
	}

	if opts.WaitForReady != nil {
		ctx, cancel := context.WithTimeout(context.Background(), opts.ReadyTimeout)
		err := opts.WaitForReady(ctx)
		cancel()
		if err != nil {
			fmt.Printf("Stack readiness check failed: %v\n", err)
			down()
			return 1
		}
	}

	code := m.Run()
	down()
	return code
}

func normalizeComposeOptions(options ComposeTestMainOptions) ComposeTestMainOptions {
	if options.ComposeFile == "" {
		options.ComposeFile = "docker_compose/docker_compose.yml"
	}
	if len(options.UpArgs) == 0 {
		options.UpArgs = []string{"up", "-d", "--wait"}
	}
	if len(options.DownArgs) == 0 {
		options.DownArgs = []string{"down", "-v"}
	}
	if options.ReadyTimeout <= 0 {
		options.ReadyTimeout = 2 * time.Minute
	}
	return options
}

// FindCompose returns the compose engine binary and its subcommand.
func FindCompose() (bin string, args []string, err error) {
	if _, e := exec.LookPath("docker"); e == nil {
		return "docker", []string{"compose"}, nil
	}
	if _, e := exec.LookPath("podman"); e == nil {
		return "podman", []string{"compose"}, nil
	}
	return "", nil, errors.New("neither docker nor podman found on PATH")
}

// RunCompose runs the engine with stdout and stderr attached.
func RunCompose(ctx context.Context, base string, args ...string) error {
	//nolint:gosec // base is docker or podman from FindCompose
	cmd := exec.CommandContext(ctx, base, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Retry calls probe with a growing backoff until it succeeds or ctx ends.
func Retry(ctx context.Context, probe func(ctx context.Context) error) error {
	backoff := 500 * time.Millisecond
	for {
		err := probe(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("TESTENV-RETRY-TIMEOUT: %w", err)
		case <-time.After(backoff):
		}
		if backoff < 5*time.Second {
			backoff += 500 * time.Millisecond
		}
	}
}

// WaitHealthy polls url until it answers 200.
func WaitHealthy(ctx context.Context, client *http.Client, url string) error {
	return Retry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d from %s", resp.StatusCode, url)
		}
		return nil
	})
}
