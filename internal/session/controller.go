// Package session drives one instruction through the full pipeline: query the
// model, parse the reply into operations, validate the batch against the
// document, execute what was accepted, and report every outcome.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gridwright/engine/internal/errinfo"
	"gridwright/engine/internal/exec"
	"gridwright/engine/internal/grid"
	"gridwright/engine/internal/llm"
	"gridwright/engine/internal/logging"
	"gridwright/engine/internal/ops"
	"gridwright/engine/internal/parser"
	"gridwright/engine/internal/settings"
	"gridwright/engine/internal/validate"
)

// State tracks where the controller is in the instruction pipeline.
type State string

const (
	StateIdle         State = "idle"
	StateReceived     State = "received"
	StateModelQueried State = "model_queried"
	StateParsed       State = "parsed"
	StateValidated    State = "validated"
	StateExecuted     State = "executed"
	StateReported     State = "reported"
	StateFailed       State = "failed"
)

// LLMClient is the provider surface the controller needs.
type LLMClient interface {
	ValidateKey(ctx context.Context, apiKey string) error
	Chat(ctx context.Context, apiKey, model string, messages []llm.Message) (string, error)
}

// Error carries a structured payload for failures that end an instruction.
type Error struct {
	Info *errinfo.ErrorInfo
}

func (e *Error) Error() string {
	if e.Info.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Info.ErrorCode, e.Info.Detail)
	}
	return e.Info.ErrorCode
}

// ErrorInfoFrom extracts the structured payload from an instruction error,
// if it carries one.
func ErrorInfoFrom(err error) (*errinfo.ErrorInfo, bool) {
	var sessionErr *Error
	if errors.As(err, &sessionErr) {
		return sessionErr.Info, true
	}
	return nil, false
}

var apiKeyEnvVars = map[string]string{
	settings.ProviderDeepseek: "DEEPSEEK_API_KEY",
	settings.ProviderOpenAI:   "OPENAI_API_KEY",
}

type Controller struct {
	mu       sync.Mutex
	wb       *grid.Workbook
	clients  map[string]LLMClient
	apiKeys  map[string]string
	settings *settings.Settings
	logger   *slog.Logger
	state    State
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithClient(providerID string, client LLMClient) Option {
	return func(c *Controller) { c.clients[providerID] = client }
}

func WithAPIKey(providerID, apiKey string) Option {
	return func(c *Controller) { c.apiKeys[providerID] = apiKey }
}

func WithSettings(s *settings.Settings) Option {
	return func(c *Controller) {
		if s != nil {
			c.settings = s
		}
	}
}

func New(wb *grid.Workbook, opts ...Option) *Controller {
	c := &Controller{
		wb:       wb,
		clients:  make(map[string]LLMClient),
		apiKeys:  make(map[string]string),
		settings: settings.Default(),
		logger:   logging.Nop(),
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}


func (c *Controller) Workbook() *grid.Workbook {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wb
}

// SetWorkbook replaces the document the controller operates on.
func (c *Controller) SetWorkbook(wb *grid.Workbook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wb = wb
	c.state = StateIdle
}

// SetAPIKey stores a provider API key for later instructions.
func (c *Controller) SetAPIKey(providerID, apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKeys[providerID] = strings.TrimSpace(apiKey)
}

// Client returns the registered client for a provider.
func (c *Controller) Client(providerID string) (LLMClient, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	client, ok := c.clients[providerID]
	return client, ok
}

// SetSettings swaps the active settings, taking effect on the next
// instruction.
func (c *Controller) SetSettings(s *settings.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s != nil {
		c.settings = s
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Summary renders the compact document description sent to the model.
func (c *Controller) Summary() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wb.Summary()
}

// Apply runs one free-text instruction end to end. The returned report covers
// every operation the model proposed; an error means the instruction failed
// before any operation could be attempted.
func (c *Controller) Apply(ctx context.Context, instruction string) (*exec.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateReceived

	providerID, model := settings.SplitModelID(c.settings.DefaultModelID)
	client, ok := c.clients[providerID]
	if !ok {
		c.state = StateFailed
		return nil, &Error{Info: errinfo.ProviderNotConfigured(providerID)}
	}
	apiKey := c.apiKeys[providerID]
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(apiKeyEnvVars[providerID]))
	}
	if apiKey == "" {
		c.state = StateFailed
		info := errinfo.ProviderNotConfigured(providerID)
		info.Detail = fmt.Sprintf("no API key for provider %q", providerID)
		return nil, &Error{Info: info}
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: c.wb.Summary() + "\nInstruction: " + instruction},
	}
	c.logger.Debug("session.query", "provider", providerID, "model", model)
	raw, err := client.Chat(ctx, apiKey, model, messages)
	if err != nil {
		c.state = StateFailed
		return nil, &Error{Info: providerErrorInfo(ctx, providerID, err)}
	}
	c.state = StateModelQueried
	return c.applyTextLocked(ctx, raw)
}

// ApplyText runs pre-written operation text through parse, validate and
// execute, bypassing the model. Used by tests and the RPC surface.
func (c *Controller) ApplyText(ctx context.Context, raw string) (*exec.Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateReceived
	return c.applyTextLocked(ctx, raw)
}

func (c *Controller) applyTextLocked(ctx context.Context, raw string) (*exec.Report, error) {
	operations, parseErrors := parser.Parse(raw)
	c.state = StateParsed
	c.logger.Debug("session.parsed", "operations", len(operations), "parse_errors", len(parseErrors))
	if len(operations) == 0 {
		c.state = StateFailed
		detail := "model reply contained no recognizable operations"
		if len(parseErrors) > 0 {
			detail = fmt.Sprintf("%s (%d unparsed lines)", detail, len(parseErrors))
		}
		return nil, &Error{Info: errinfo.NoOperations(detail)}
	}
	// Operations past the batch cap are rejected, not silently dropped;
	// every operation the model proposed shows up in the report.
	var capped []validate.Result
	if max := c.settings.MaxBatchOps; max > 0 && len(operations) > max {
		for i, op := range operations[max:] {
			capped = append(capped, validate.Result{
				Index:  max + i,
				Op:     op,
				Reason: validate.ReasonBatchCapExceeded,
				Detail: fmt.Sprintf("operation %d exceeds the batch cap of %d", max+i, max),
			})
		}
		operations = operations[:max]
	}
	if c.settings.ForceDelete {
		for i, op := range operations {
			switch deleteOp := op.(type) {
			case ops.DeleteRow:
				deleteOp.Force = true
				operations[i] = deleteOp
			case ops.DeleteColumn:
				deleteOp.Force = true
				operations[i] = deleteOp
			}
		}
	}

	results := validate.Check(c.wb, operations)
	c.state = StateValidated

	report := exec.Apply(ctx, c.wb, results)
	report.Rejections = append(report.Rejections, capped...)
	report.ParseErrors = parseErrors
	c.state = StateExecuted

	c.logger.Debug("session.executed",
		"applied", report.AppliedCount(),
		"failed", report.FailedCount(),
		"rejected", len(report.Rejections),
	)
	c.state = StateReported
	return report, nil
}

func providerErrorInfo(ctx context.Context, providerID string, err error) *errinfo.ErrorInfo {
	switch {
	case ctx.Err() != nil:
		return errinfo.UserCanceled(err.Error())
	case errors.Is(err, llm.ErrUnauthorized):
		return errinfo.ProviderAuthFailed(providerID)
	case errors.Is(err, llm.ErrEgressBlocked):
		return errinfo.EgressBlocked(providerID, err.Error())
	case errors.Is(err, llm.ErrRateLimited), errors.Is(err, llm.ErrUnavailable):
		return errinfo.ProviderUnavailable(providerID, err.Error())
	default:
		return errinfo.ProviderUnavailable(providerID, err.Error())
	}
}
