package testenv

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
)

// ActionCheckPolicyRows compares the row count of the settings table.
const ActionCheckPolicyRows = "CHECK_POLICY_ROWS"

// Step is one request of a scenario file. Endpoint is relative to the suite
// base URL; Roles, when present, are put into a bearer token.
type Step struct {
	Context        string            `json:"context,omitempty"`
	Method         string            `json:"method"`
	Endpoint       string            `json:"endpoint"`
	Body           json.RawMessage   `json:"body,omitempty"`
	Roles          []string          `json:"roles,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	ExpectedStatus int               `json:"expectedStatus,omitempty"`
	ExpectHeaders  map[string]string `json:"expectHeaders,omitempty"`
	ShouldMatch    string            `json:"shouldMatch,omitempty"`
	Action         string            `json:"action,omitempty"`
	Want           int               `json:"want,omitempty"`
}

// StepResult is what a step observed.
type StepResult struct {
	Status int
	Header http.Header
	Body   []byte
}

// StepAction handles a step that carries an Action instead of a request.
type StepAction func(t *testing.T, runner *SuiteRunner, step Step)

// TokenProvider mints bearer tokens for a role list.
type TokenProvider interface {
	Token(roles []string) (string, error)
}

// TokenFunc adapts a function to TokenProvider.
type TokenFunc func(roles []string) (string, error)

// Token calls f.
func (f TokenFunc) Token(roles []string) (string, error) { return f(roles) }

// SuiteOptions configures RunSuite.
type SuiteOptions struct {
	ConfigPath string
	BaseURL    string
	Client     *http.Client

	TokenProvider  TokenProvider
	ActionHandlers map[string]StepAction
	StepName       func(step Step, stepNumber int) string
}

// SuiteRunner executes steps against one base URL.
type SuiteRunner struct {
	options SuiteOptions
	dir     string
}

// BaseURL returns the url steps are resolved against.
func (r *SuiteRunner) BaseURL() string { return r.options.BaseURL }

// DefaultStepName names a subtest after its context or request line.
func DefaultStepName(step Step, stepNumber int) string {
	switch {
	case step.Action != "":
		return fmt.Sprintf("Step_%d_ACTION_%s", stepNumber, step.Action)
	case step.Context != "":
		return fmt.Sprintf("Step_%d_%s", stepNumber, step.Context)
	default:
		return fmt.Sprintf("Step_%d_%s_%s", stepNumber, strings.ToUpper(step.Method), step.Endpoint)
	}
}

// RunSuite loads the scenario file and runs every step as a subtest. Steps
// share state through the server, so a failing step does not stop the rest.
func RunSuite(t *testing.T, options SuiteOptions) {
	t.Helper()

	opts := normalizeSuiteOptions(options)
	steps, err := LoadSteps(opts.ConfigPath)
	require.NoError(t, err, "failed to load scenario")

	runner := &SuiteRunner{options: opts, dir: filepath.Dir(opts.ConfigPath)}
	for idx, step := range steps {
		stepNumber := idx + 1
		step := step
		t.Run(opts.StepName(step, stepNumber), func(t *testing.T) {
			if step.Action != "" {
				handler, ok := opts.ActionHandlers[step.Action]
				require.Truef(t, ok, "unknown action: %s", step.Action)
				handler(t, runner, step)
				return
			}
			runner.check(t, step)
		})
	}
}

func normalizeSuiteOptions(options SuiteOptions) SuiteOptions {
	if options.ConfigPath == "" {
		options.ConfigPath = "testdata/it_config.json"
	}
	if options.Client == nil {
		options.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if options.StepName == nil {
		options.StepName = DefaultStepName
	}
	if options.ActionHandlers == nil {
		options.ActionHandlers = map[string]StepAction{}
	}
	options.BaseURL = strings.TrimRight(options.BaseURL, "/")
	return options
}

// LoadSteps reads a scenario file.
func LoadSteps(path string) ([]Step, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- scenario files come from testdata
	if err != nil {
		return nil, fmt.Errorf("TESTENV-SUITE-READ: %w", err)
	}
	var steps []Step
	if err := common.UnmarshalAndDisallowUnknownFields(data, &steps); err != nil {
		return nil, fmt.Errorf("TESTENV-SUITE-DECODE: %w", err)
	}
	return steps, nil
}

func (r *SuiteRunner) check(t *testing.T, step Step) {
	t.Helper()
	res, err := r.Do(context.Background(), step)
	require.NoError(t, err, "request failed")

	expected := step.ExpectedStatus
	if expected == 0 {
		expected = http.StatusOK
	}
	require.Equalf(t, expected, res.Status, "%s %s: %s", step.Method, step.Endpoint, res.Body)

	for name, want := range step.ExpectHeaders {
		assert.Containsf(t, res.Header.Get(name), want, "header %s", name)
	}
	if step.ShouldMatch != "" {
		golden, err := os.ReadFile(filepath.Join(r.dir, step.ShouldMatch)) // #nosec G304 -- golden files sit next to the scenario file
		require.NoError(t, err, "failed to read expected response")
		expectedBody := strings.ReplaceAll(string(golden), "{{baseURL}}", r.options.BaseURL)
		assert.JSONEq(t, expectedBody, string(res.Body))
	}
}

// Do sends the request of a step.
func (r *SuiteRunner) Do(ctx context.Context, step Step) (*StepResult, error) {
	var body io.Reader
	if len(step.Body) > 0 {
		body = bytes.NewReader(step.Body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(step.Method), r.options.BaseURL+step.Endpoint, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range step.Headers {
		req.Header.Set(key, value)
	}
	if step.Roles != nil {
		if r.options.TokenProvider == nil {
			return nil, fmt.Errorf("TESTENV-SUITE-NOTOKENPROVIDER: step sends roles %v", step.Roles)
		}
		token, err := r.options.TokenProvider.Token(step.Roles)
		if err != nil {
			return nil, fmt.Errorf("TESTENV-SUITE-TOKEN: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.options.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &StepResult{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// NewCheckPolicyRowsAction counts the rows of the settings table and compares
// the result with the step's Want.
func NewCheckPolicyRowsAction(db *sql.DB, table string) StepAction {
	return func(t *testing.T, _ *SuiteRunner, step Step) {
		query, args, err := goqu.Dialect("postgres").From(table).Select(goqu.COUNT(goqu.Star())).ToSQL()
		require.NoError(t, err)

		var count int
		require.NoError(t, db.QueryRowContext(context.Background(), query, args...).Scan(&count), "TESTENV-CHECKDB-COUNTROWS")
		assert.Equal(t, step.Want, count)
	}
}
