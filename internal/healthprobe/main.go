// Package main provides a static probe for distroless gateway images. It
// accepts the wget arguments container health checks usually pass and can
// additionally verify that the gateway entry point serves a JSON:API document.
package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
)

const (
	defaultPort     = "5080"
	defaultBasePath = "/gateway"
	defaultTimeout  = 5 * time.Second
	maxProbeBody    = 1 << 20
	jsonAPIMedia    = "application/vnd.api+json"
)

type probeOptions struct {
	url      string
	quiet    bool
	spider   bool
	document bool
	output   string
	debug    bool
	timeout  time.Duration
}

func main() {
	options, err := parseOptions(os.Args)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if options.url == "" {
		options.url = defaultProbeURL(options.document)
	}
	if options.debug {
		_, _ = fmt.Fprintf(os.Stderr, "healthprobe url=%s timeout=%s document=%t\n", options.url, options.timeout, options.document)
	}
	if err := runProbe(options); err != nil {
		if !options.quiet {
			_, _ = fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
}

func parseOptions(args []string) (probeOptions, error) {
	options := probeOptions{}
	name := filepath.Base(args[0])

	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.BoolVarP(&options.quiet, "quiet", "q", name == "healthprobe", "suppress error output")
	flags.BoolVar(&options.spider, "spider", false, "discard the response body")
	flags.BoolVar(&options.document, "document", false, "probe the gateway entry point instead of /health")
	flags.BoolVar(&options.debug, "debug", false, "print the probed url")
	flags.StringVarP(&options.output, "output-document", "O", "-", "write the body to this file, - for stdout")
	flags.Int("tries", 1, "accepted for wget compatibility")
	seconds := flags.Int("timeout", int(defaultTimeout/time.Second), "request timeout in seconds")

	if err := flags.Parse(args[1:]); err != nil {
		return options, fmt.Errorf("HEALTHPROBE-PARSE-FLAGS: %w", err)
	}
	if *seconds <= 0 {
		return options, errors.New("HEALTHPROBE-PARSE-INVALIDTIMEOUT")
	}
	options.timeout = time.Duration(*seconds) * time.Second
	if flags.NArg() > 1 {
		return options, errors.New("HEALTHPROBE-PARSE-TOOMANYURLS")
	}
	options.url = flags.Arg(0)
	if options.output == "" {
		options.output = "-"
	}
	return options, nil
}

// defaultProbeURL derives the local url from the environment overrides the
// gateway itself reads.
func defaultProbeURL(document bool) string {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = defaultPort
	}
	path := common.JoinPath(os.Getenv("SERVER_CONTEXTPATH"), "/health")
	if document {
		basePath := os.Getenv("GATEWAY_BASEPATH")
		if basePath == "" {
			basePath = defaultBasePath
		}
		path = common.JoinPath(os.Getenv("SERVER_CONTEXTPATH"), basePath)
	}
	return fmt.Sprintf("http://127.0.0.1:%s%s", port, path)
}

func runProbe(options probeOptions) error {
	client := &http.Client{Timeout: options.timeout}

	response, err := client.Get(options.url)
	if err != nil {
		return fmt.Errorf("HEALTHPROBE-RUN-REQUESTFAILED: %w", err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("HEALTHPROBE-RUN-UNHEALTHYSTATUS: %d", response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxProbeBody))
	if err != nil {
		return fmt.Errorf("HEALTHPROBE-RUN-READFAILED: %w", err)
	}
	if options.document {
		if err := checkEntryPoint(response.Header.Get("Content-Type"), body); err != nil {
			return err
		}
	} else if err := checkHealth(body); err != nil {
		return err
	}

	if options.spider {
		return nil
	}
	return writeOutput(options.output, body)
}

func checkHealth(body []byte) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := common.Unmarshal(body, &status); err != nil {
		return fmt.Errorf("HEALTHPROBE-RUN-INVALIDBODY: %w", err)
	}
	if status.Status != "UP" {
		return fmt.Errorf("HEALTHPROBE-RUN-NOTUP: %q", status.Status)
	}
	return nil
}

func checkEntryPoint(contentType string, body []byte) error {
	if !strings.HasPrefix(contentType, jsonAPIMedia) {
		return fmt.Errorf("HEALTHPROBE-RUN-MEDIATYPE: %q", contentType)
	}
	var doc struct {
		Links map[string]struct {
			Href string `json:"href"`
		} `json:"links"`
	}
	if err := common.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("HEALTHPROBE-RUN-INVALIDBODY: %w", err)
	}
	if doc.Links["self"].Href == "" {
		return errors.New("HEALTHPROBE-RUN-NOSELFLINK")
	}
	return nil
}

func writeOutput(output string, body []byte) error {
	if output == "-" {
		if _, err := os.Stdout.Write(body); err != nil {
			return fmt.Errorf("HEALTHPROBE-RUN-WRITESTDOUTFAILED: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(output, body, 0o600); err != nil {
		return fmt.Errorf("HEALTHPROBE-RUN-WRITEOUTPUTFAILED: %w", err)
	}
	return nil
}
