// Package main is a read load generator for a running gateway. It walks the
// entry point, one collection and the individual documents of that
// collection, and prints latency and throughput per phase.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	auth "github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common/security"
)

type benchmarkOptions struct {
	baseURL  string
	resource string
	requests int
	threads  int
	token    string
	secret   string
	roles    []string
	timeout  time.Duration
}

// PhaseStats accumulates the outcome of one phase.
type PhaseStats struct {
	mu         sync.Mutex
	total      int64
	successful int64
	failed     int64
	latency    time.Duration
	started    time.Time
	finished   time.Time
}

func (s *PhaseStats) record(d time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.latency += d
	if ok {
		s.successful++
	} else {
		s.failed++
	}
}

func (s *PhaseStats) print(w io.Writer, phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := s.finished.Sub(s.started)
	_, _ = fmt.Fprintf(w, "\nBenchmark Statistics After %s:\n", phase)
	_, _ = fmt.Fprintf(w, "Total Time: %v\n", elapsed)
	_, _ = fmt.Fprintf(w, "Total Requests: %d\n", s.total)
	_, _ = fmt.Fprintf(w, "Successful Requests: %d\n", s.successful)
	_, _ = fmt.Fprintf(w, "Failed Requests: %d\n", s.failed)
	if s.total > 0 && elapsed > 0 {
		_, _ = fmt.Fprintf(w, "Average Response Time: %v\n", s.latency/time.Duration(s.total))
		_, _ = fmt.Fprintf(w, "Throughput: %.2f requests/second\n", float64(s.total)/elapsed.Seconds())
	}
}

type loader struct {
	client *http.Client
	token  string
}

func (l *loader) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	if l.token != "" {
		req.Header.Set("Authorization", "Bearer "+l.token)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	return body, resp.StatusCode, err
}

// runPhase issues requests GETs spread over urls with threads workers.
func (l *loader) runPhase(ctx context.Context, urls []string, requests int, threads int) *PhaseStats {
	stats := &PhaseStats{started: time.Now()}
	if len(urls) == 0 {
		stats.finished = time.Now()
		return stats
	}

	var counter atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for w := 0; w < threads; w++ {
		g.Go(func() error {
			for {
				i := int(counter.Add(1) - 1)
				if i >= requests || gctx.Err() != nil {
					return nil
				}
				start := time.Now()
				_, status, err := l.get(gctx, urls[i%len(urls)])
				stats.record(time.Since(start), err == nil && status == http.StatusOK)
			}
		})
	}
	_ = g.Wait()
	stats.finished = time.Now()
	return stats
}

// collectionIDs reads the ids of the first page of a collection.
func (l *loader) collectionIDs(ctx context.Context, url string) ([]string, error) {
	body, status, err := l.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("BENCH-COLLECTION-REQUEST: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("BENCH-COLLECTION-STATUS: %d", status)
	}
	var doc struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := common.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("BENCH-COLLECTION-DECODE: %w", err)
	}
	ids := make([]string, 0, len(doc.Data))
	for _, d := range doc.Data {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func parseOptions(args []string) (benchmarkOptions, error) {
	opts := benchmarkOptions{}
	flags := pflag.NewFlagSet("benchmark", pflag.ContinueOnError)
	flags.StringVar(&opts.baseURL, "base-url", "http://localhost:5080/gateway", "gateway namespace url")
	flags.StringVar(&opts.resource, "resource", "node/article", "entity type and bundle of the collection")
	flags.IntVar(&opts.requests, "requests", 1000, "requests per phase")
	flags.IntVar(&opts.threads, "threads", 28, "concurrent workers")
	flags.StringVar(&opts.token, "token", "", "bearer token sent with every request")
	flags.StringVar(&opts.secret, "secret", "", "HS256 secret used to mint a token when --token is empty")
	flags.StringSliceVar(&opts.roles, "roles", nil, "roles of the minted token")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	if err := flags.Parse(args); err != nil {
		return opts, err
	}
	if opts.requests <= 0 || opts.threads <= 0 {
		return opts, fmt.Errorf("BENCH-PARSE-INVALID: requests and threads must be positive")
	}
	opts.baseURL = strings.TrimRight(opts.baseURL, "/")
	opts.resource = strings.Trim(opts.resource, "/")
	return opts, nil
}

func run(ctx context.Context, opts benchmarkOptions, out io.Writer) error {
	token := opts.token
	if token == "" && opts.secret != "" {
		minted, err := auth.GenerateToken([]byte(opts.secret), "", "benchmark", opts.roles, time.Hour)
		if err != nil {
			return err
		}
		token = minted
	}
	l := &loader{
		client: &http.Client{
			Timeout: opts.timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		token: token,
	}

	collection := opts.baseURL + "/" + opts.resource
	l.runPhase(ctx, []string{opts.baseURL}, opts.requests, opts.threads).print(out, "ENTRYPOINT")
	l.runPhase(ctx, []string{collection}, opts.requests, opts.threads).print(out, "COLLECTION")

	ids, err := l.collectionIDs(ctx, collection)
	if err != nil {
		return err
	}
	urls := make([]string, 0, len(ids))
	for _, id := range ids {
		urls = append(urls, collection+"/"+id)
	}
	if len(urls) == 0 {
		_, _ = fmt.Fprintln(out, "\nCollection is empty for this principal, INDIVIDUAL phase skipped")
		return nil
	}
	l.runPhase(ctx, urls, opts.requests, opts.threads).print(out, "INDIVIDUAL")
	return nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
